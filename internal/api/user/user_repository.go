package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when the requested user does not exist.
var ErrNotFound = errors.New("user not found")

var _ UserRepo = (*PostgresUserRepo)(nil)

// PGXQuerier is the read-only slice of pgxpool.Pool this repository needs.
type PGXQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepo defines the contract for reading user profiles.
type UserRepo interface {
	GetUserProfile(ctx context.Context, userID int64) (*UserProfile, error)
}

type PostgresUserRepo struct {
	logger *slog.Logger
	pgpool PGXQuerier
}

func NewPostgresUserRepo(pgpool PGXQuerier, logger *slog.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresUserRepo) GetUserProfile(ctx context.Context, userID int64) (*UserProfile, error) {
	var p UserProfile
	err := r.pgpool.QueryRow(ctx,
		`SELECT u.id, u.username, u.email, u.role, u.level, u.xp, u.status,
                u.summoner_name, u.tag, u.created_at,
                COALESCE(d.first_name, ''), COALESCE(d.last_name, ''), d.country
         FROM users u
         LEFT JOIN user_personal_details d ON d.user_id = u.id
         WHERE u.id = $1`,
		userID).Scan(
		&p.ID, &p.Username, &p.Email, &p.Role, &p.Level, &p.XP, &p.Status,
		&p.SummonerName, &p.Tag, &p.CreatedAt,
		&p.FirstName, &p.LastName, &p.Country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profile lookup failed: %w", err)
	}
	return &p, nil
}
