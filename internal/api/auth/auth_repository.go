package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// PGXPool is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type PGXPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuthRepo defines the contract for credential persistence.
type AuthRepo interface {
	// FindByUsernameOrEmail does a case-insensitive lookup for either
	// identifier. Returns (nil, nil) when both are free.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)

	// CreateUser atomically inserts the user row and its personal-details row
	// and returns the new user id. A unique-constraint violation from the
	// store comes back as ErrUsernameTaken or ErrEmailTaken.
	CreateUser(ctx context.Context, params CreateUserParams) (int64, error)

	// GetActiveUserByLogin matches a username OR email against Active
	// accounts only. No rows yields ErrUnauthenticated so callers cannot
	// distinguish a missing account from an inactive one.
	GetActiveUserByLogin(ctx context.Context, login string) (*User, error)
}

// CreateUserParams carries the full, validated registration draft into the
// single step-3 transaction.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Country      string
	PromosOptIn  bool
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool PGXPool
}

func NewPostgresAuthRepo(pgpool PGXPool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	var user User
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, username, email FROM users
         WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($2)
         LIMIT 1`,
		username, email).Scan(&user.ID, &user.Username, &user.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, params CreateUserParams) (int64, error) {
	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback(ctx)
	}()

	// summoner_name seeds from the first name; tag from the country code.
	var summonerName, tag *string
	if params.FirstName != "" {
		summonerName = &params.FirstName
	}
	if params.Country != "" {
		tag = &params.Country
	}

	var userID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO users
           (username, email, password_hash, role, level, xp, status, summoner_name, tag, promos_opt_in, email_verified)
         VALUES ($1, $2, $3, 'user', 1, 0, 'Active', $4, $5, $6, FALSE)
         RETURNING id`,
		params.Username, params.Email, params.PasswordHash,
		summonerName, tag, params.PromosOptIn).Scan(&userID)
	if err != nil {
		return 0, mapInsertError(err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_personal_details (user_id, first_name, last_name, country)
         VALUES ($1, $2, $3, $4)`,
		userID, params.FirstName, params.LastName, params.Country)
	if err != nil {
		return 0, fmt.Errorf("failed to insert personal details: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit user creation: %w", err)
	}
	return userID, nil
}

// mapInsertError turns the store's unique-constraint violation into the
// matching conflict error. The constraint is the authoritative arbiter of the
// uniqueness race; the pre-insert check is only a fast path.
func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_lower_key":
			return ErrUsernameTaken
		case "users_email_lower_key":
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	return fmt.Errorf("failed to insert user: %w", err)
}

func (r *PostgresAuthRepo) GetActiveUserByLogin(ctx context.Context, login string) (*User, error) {
	var user User
	err := r.pgpool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, role, level, xp, status, summoner_name, tag
         FROM users
         WHERE (LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1))
           AND status = 'Active'
         LIMIT 1`,
		login).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Role, &user.Level, &user.XP, &user.Status,
		&user.SummonerName, &user.Tag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("login lookup failed: %w", err)
	}
	return &user, nil
}
