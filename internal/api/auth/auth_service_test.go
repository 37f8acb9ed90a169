package auth

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MPEduardo98/nephyx-network/config"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface.
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockAuthRepo) CreateUser(ctx context.Context, params CreateUserParams) (int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthRepo) GetActiveUserByLogin(ctx context.Context, login string) (*User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:  "test-secret",
		Issuer:     "test-issuer",
		Audience:   "test-audience",
		SessionTTL: 7 * 24 * time.Hour,
	}
}

func newTestService(repo AuthRepo) *AuthServiceImpl {
	return NewAuthService(repo, testJWTConfig(), slog.Default())
}

func TestSubmitStep_Step1(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(nil, nil).Once()

		resp, err := service.SubmitStep(ctx, RegisterRequest{Step: 1, Username: "NephyxPlayer", Email: "a@b.com"})
		assert.NoError(t, err)
		assert.Equal(t, "OK", resp.Message)
		mockRepo.AssertExpectations(t)
	})

	t.Run("FormatFailureSkipsStore", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		_, err := service.SubmitStep(ctx, RegisterRequest{Step: 1, Username: "x!", Email: "a@b.com"})
		assert.ErrorIs(t, err, ErrInvalidUsername)
		mockRepo.AssertNotCalled(t, "FindByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UsernameTaken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		existing := &User{ID: 1, Username: "nephyxplayer", Email: "other@b.com"}
		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(existing, nil).Once()

		_, err := service.SubmitStep(ctx, RegisterRequest{Step: 1, Username: "NephyxPlayer", Email: "a@b.com"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		existing := &User{ID: 1, Username: "someoneelse", Email: "a@b.com"}
		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(existing, nil).Once()

		_, err := service.SubmitStep(ctx, RegisterRequest{Step: 1, Username: "NephyxPlayer", Email: "a@b.com"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("UsernamePrecedenceWhenBothCollide", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		existing := &User{ID: 1, Username: "NEPHYXPLAYER", Email: "a@b.com"}
		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(existing, nil).Once()

		_, err := service.SubmitStep(ctx, RegisterRequest{Step: 1, Username: "NephyxPlayer", Email: "a@b.com"})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("IdempotentResubmit", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(nil, nil).Twice()

		req := RegisterRequest{Step: 1, Username: "NephyxPlayer", Email: "a@b.com"}
		first, err := service.SubmitStep(ctx, req)
		require.NoError(t, err)
		second, err := service.SubmitStep(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		mockRepo.AssertExpectations(t)
	})
}

func TestSubmitStep_Step2(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAuthRepo)
	service := newTestService(mockRepo)

	t.Run("Success", func(t *testing.T) {
		resp, err := service.SubmitStep(ctx, RegisterRequest{
			Step: 2, FirstName: "Juan", LastName: "Perez", Country: "MX",
		})
		assert.NoError(t, err)
		assert.Equal(t, "OK", resp.Message)
	})

	t.Run("MissingFields", func(t *testing.T) {
		_, err := service.SubmitStep(ctx, RegisterRequest{Step: 2, FirstName: "Juan"})
		assert.ErrorIs(t, err, ErrMissingName)

		_, err = service.SubmitStep(ctx, RegisterRequest{Step: 2, FirstName: "Juan", LastName: "Perez"})
		assert.ErrorIs(t, err, ErrMissingCountry)
	})

	// Step 2 never touches the store.
	mockRepo.AssertNotCalled(t, "FindByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything)
}

func step3Request() RegisterRequest {
	return RegisterRequest{
		Step:            3,
		Username:        "NephyxPlayer",
		Email:           "a@b.com",
		FirstName:       "Juan",
		LastName:        "Perez",
		Country:         "MX",
		Password:        "Abcdef12",
		ConfirmPassword: "Abcdef12",
		Promos:          true,
		Terms:           true,
	}
}

func TestSubmitStep_Step3(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(nil, nil).Once()
		mockRepo.On("CreateUser", ctx, mock.MatchedBy(func(p CreateUserParams) bool {
			// The stored value must be a verifiable hash, never the plaintext.
			if p.PasswordHash == "Abcdef12" {
				return false
			}
			if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("Abcdef12")); err != nil {
				return false
			}
			return p.Username == "NephyxPlayer" && p.Email == "a@b.com" &&
				p.FirstName == "Juan" && p.LastName == "Perez" &&
				p.Country == "MX" && p.PromosOptIn
		})).Return(int64(42), nil).Once()

		resp, err := service.SubmitStep(ctx, step3Request())
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.UserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("ReValidatesIdentity", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		// The username was grabbed between step 1 and step 3.
		existing := &User{ID: 9, Username: "nephyxplayer", Email: "other@b.com"}
		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(existing, nil).Once()

		_, err := service.SubmitStep(ctx, step3Request())
		assert.ErrorIs(t, err, ErrUsernameTaken)
		mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("PasswordMismatch", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(nil, nil).Once()

		req := step3Request()
		req.ConfirmPassword = "Abcdef13"
		_, err := service.SubmitStep(ctx, req)
		assert.ErrorIs(t, err, ErrPasswordMismatch)
		mockRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("WeakPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(nil, nil).Once()

		req := step3Request()
		req.Password = "Abcdef1"
		req.ConfirmPassword = "Abcdef1"
		_, err := service.SubmitStep(ctx, req)
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("TermsNotAccepted", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(nil, nil).Once()

		req := step3Request()
		req.Terms = false
		_, err := service.SubmitStep(ctx, req)
		assert.ErrorIs(t, err, ErrTermsNotAccepted)
	})

	t.Run("StoreConstraintWinsRace", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		// Pre-check passes but the insert loses the race; the constraint
		// violation surfaces as the conflict error.
		mockRepo.On("FindByUsernameOrEmail", ctx, "NephyxPlayer", "a@b.com").Return(nil, nil).Once()
		mockRepo.On("CreateUser", ctx, mock.Anything).Return(int64(0), ErrUsernameTaken).Once()

		_, err := service.SubmitStep(ctx, step3Request())
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("InvalidStep", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		_, err := service.SubmitStep(ctx, RegisterRequest{Step: 4})
		assert.ErrorIs(t, err, ErrInvalidStep)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	password := "Abcdef12"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	activeUser := func() *User {
		summoner := "Juan"
		tag := "MX"
		return &User{
			ID:           42,
			Username:     "NephyxPlayer",
			Email:        "a@b.com",
			PasswordHash: string(hash),
			Role:         RoleUser,
			Level:        1,
			XP:           0,
			Status:       StatusActive,
			SummonerName: &summoner,
			Tag:          &tag,
		}
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		mockRepo.On("GetActiveUserByLogin", ctx, "NephyxPlayer").Return(activeUser(), nil).Once()

		token, claims, err := service.Login(ctx, "NephyxPlayer", password)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, RoleUser, claims.Role)
		assert.Equal(t, StatusActive, claims.Status)

		// The minted token must verify and round-trip its claims.
		parsed, err := ParseSessionToken(token, testJWTConfig())
		require.NoError(t, err)
		assert.Equal(t, int64(42), parsed.UserID)
		assert.Equal(t, "NephyxPlayer", parsed.Username)
		assert.Equal(t, 1, parsed.Level)

		// 7-day validity window.
		ttl := time.Until(parsed.ExpiresAt.Time)
		assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), ttl.Seconds(), 60)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		mockRepo.On("GetActiveUserByLogin", ctx, "NephyxPlayer").Return(activeUser(), nil).Once()

		_, _, err := service.Login(ctx, "NephyxPlayer", "Wrongpass1")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("SingleCharMutationFails", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		mutated := "Bbcdef12"
		require.NotEqual(t, password, mutated)
		mockRepo.On("GetActiveUserByLogin", ctx, "NephyxPlayer").Return(activeUser(), nil).Once()

		_, _, err := service.Login(ctx, "NephyxPlayer", mutated)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("UnknownUserSameError", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)
		mockRepo.On("GetActiveUserByLogin", ctx, "ghost").Return(nil, ErrUnauthenticated).Once()

		_, _, err := service.Login(ctx, "ghost", password)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("EmptyCredentialsSkipStore", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service := newTestService(mockRepo)

		_, _, err := service.Login(ctx, "  ", "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		mockRepo.AssertNotCalled(t, "GetActiveUserByLogin", mock.Anything, mock.Anything)
	})
}

// fakeAuthRepo is a map-backed store for end-to-end flow tests.
type fakeAuthRepo struct {
	nextID int64
	users  map[string]*User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{nextID: 1, users: map[string]*User{}}
}

func (f *fakeAuthRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) || strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeAuthRepo) CreateUser(_ context.Context, params CreateUserParams) (int64, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, params.Username) {
			return 0, ErrUsernameTaken
		}
		if strings.EqualFold(u.Email, params.Email) {
			return 0, ErrEmailTaken
		}
	}
	id := f.nextID
	f.nextID++
	f.users[params.Username] = &User{
		ID:           id,
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         RoleUser,
		Level:        1,
		Status:       StatusActive,
	}
	return id, nil
}

func (f *fakeAuthRepo) GetActiveUserByLogin(_ context.Context, login string) (*User, error) {
	for _, u := range f.users {
		if (strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login)) && u.Status == StatusActive {
			return u, nil
		}
	}
	return nil, ErrUnauthenticated
}

func TestRegistrationRoundTrip(t *testing.T) {
	ctx := context.Background()
	service := newTestService(newFakeAuthRepo())

	// Step 1
	resp, err := service.SubmitStep(ctx, RegisterRequest{Step: 1, Username: "NephyxPlayer", Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Message)

	// Step 2
	resp, err = service.SubmitStep(ctx, RegisterRequest{Step: 2, FirstName: "Juan", LastName: "Perez", Country: "MX"})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Message)

	// Step 3
	resp, err = service.SubmitStep(ctx, step3Request())
	require.NoError(t, err)
	assert.NotZero(t, resp.UserID)

	// A created user authenticates with the same credentials...
	token, claims, err := service.Login(ctx, "NephyxPlayer", "Abcdef12")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, resp.UserID, claims.UserID)

	// ...and fails with any other password.
	_, _, err = service.Login(ctx, "NephyxPlayer", "Abcdef13")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Duplicate username with a different email conflicts.
	_, err = service.SubmitStep(ctx, RegisterRequest{Step: 1, Username: "NephyxPlayer", Email: "new@b.com"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}
