package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/crypto/bcrypt"

	"github.com/MPEduardo98/nephyx-network/app/observability/metrics"
	"github.com/MPEduardo98/nephyx-network/config"
)

// bcryptCost matches the work factor the platform has always used for stored
// hashes.
const bcryptCost = 12

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService drives the registration flow and mints session tokens.
type AuthService interface {
	// SubmitStep runs one registration step. Steps 1 and 2 are pure
	// validation round-trips; step 3 re-validates everything and commits.
	SubmitStep(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)

	// Login verifies credentials and returns a signed session token plus the
	// claims snapshot embedded in it.
	Login(ctx context.Context, login, password string) (string, *Claims, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	jwtCfg config.JWTConfig
}

func NewAuthService(repo AuthRepo, jwtCfg config.JWTConfig, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

func (s *AuthServiceImpl) SubmitStep(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	start := time.Now()
	resp, err := s.submitStep(ctx, req)

	m := metrics.Get()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.Int("step", req.Step),
		attribute.String("outcome", outcome),
	)
	m.RegisterRequestsTotal.Add(ctx, 1, attrs)
	m.RegisterDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)

	return resp, err
}

func (s *AuthServiceImpl) submitStep(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	switch req.Step {
	case 1:
		if _, _, err := s.validateIdentity(ctx, req.Username, req.Email); err != nil {
			return nil, err
		}
		return &RegisterResponse{Message: "OK"}, nil

	case 2:
		if _, err := ValidateProfile(req.FirstName, req.LastName, req.Country); err != nil {
			return nil, err
		}
		return &RegisterResponse{Message: "OK"}, nil

	case 3:
		// Client-held draft state is never trusted: steps 1 and 2 are
		// re-validated in full before anything is written.
		username, email, err := s.validateIdentity(ctx, req.Username, req.Email)
		if err != nil {
			return nil, err
		}
		profile, err := ValidateProfile(req.FirstName, req.LastName, req.Country)
		if err != nil {
			return nil, err
		}
		if err := ValidateCredentials(req.Password, req.ConfirmPassword, req.Terms); err != nil {
			return nil, err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}

		userID, err := s.repo.CreateUser(ctx, CreateUserParams{
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    profile.FirstName,
			LastName:     profile.LastName,
			Country:      profile.Country,
			PromosOptIn:  req.Promos,
		})
		if err != nil {
			return nil, err
		}

		s.logger.InfoContext(ctx, "User registered",
			slog.Int64("user_id", userID),
			slog.String("username", username))
		return &RegisterResponse{Message: "Registration complete.", UserID: userID}, nil

	default:
		return nil, ErrInvalidStep
	}
}

// validateIdentity normalizes the identifiers, then checks uniqueness against
// the store. When both identifiers collide in one row, the username error
// takes priority.
func (s *AuthServiceImpl) validateIdentity(ctx context.Context, username, email string) (string, string, error) {
	username, email, err := NormalizeIdentity(username, email)
	if err != nil {
		return "", "", err
	}

	existing, err := s.repo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return "", "", err
	}
	if existing != nil {
		if strings.EqualFold(existing.Username, username) {
			return "", "", ErrUsernameTaken
		}
		return "", "", ErrEmailTaken
	}
	return username, email, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, login, password string) (string, *Claims, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		s.recordLogin(ctx, false)
		return "", nil, ErrUnauthenticated
	}

	user, err := s.repo.GetActiveUserByLogin(ctx, login)
	if err != nil {
		s.recordLogin(ctx, false)
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordLogin(ctx, false)
		return "", nil, ErrUnauthenticated
	}

	token, claims, err := s.generateSessionToken(user)
	if err != nil {
		s.recordLogin(ctx, false)
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	s.recordLogin(ctx, true)
	s.logger.InfoContext(ctx, "User authenticated", slog.Int64("user_id", user.ID))
	return token, claims, nil
}

// generateSessionToken snapshots the user row into a signed HS256 token valid
// for the configured session window.
func (s *AuthServiceImpl) generateSessionToken(user *User) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		Level:        user.Level,
		XP:           user.XP,
		Status:       user.Status,
		SummonerName: user.SummonerName,
		Tag:          user.Tag,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (s *AuthServiceImpl) recordLogin(ctx context.Context, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	metrics.Get().LoginRequestsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)))
}
