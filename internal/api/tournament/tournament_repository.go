package tournament

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
)

var _ TournamentRepo = (*PostgresTournamentRepo)(nil)

// PGXQuerier is the read-only slice of pgxpool.Pool this repository needs.
type PGXQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TournamentRepo defines the contract for tournament reads.
type TournamentRepo interface {
	GetFeatured(ctx context.Context, limit int) ([]Tournament, error)
	List(ctx context.Context, filters ListFilters) ([]Tournament, error)
	GetBySlug(ctx context.Context, slug string) (*Tournament, error)

	CountActiveUsers(ctx context.Context) (int64, error)
	CountTournaments(ctx context.Context) (int64, error)
	CountRunningTournaments(ctx context.Context) (int64, error)
	SumFinishedPrizes(ctx context.Context) (float64, error)
}

type PostgresTournamentRepo struct {
	logger *slog.Logger
	pgpool PGXQuerier
}

func NewPostgresTournamentRepo(pgpool PGXQuerier, logger *slog.Logger) *PostgresTournamentRepo {
	return &PostgresTournamentRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

// baseSelect aggregates the prize pool per tournament; t.league is the legacy
// free-text league column kept as a fallback when league_id is unset.
const baseSelect = `
    SELECT
        t.id, t.name, t.information, t.cost::text, t.teams, t.league_id,
        COALESCE(l.name, t.league) AS league_name,
        t.season, t.starts_at, t.ends_at,
        t.registration_opens, t.registration_ends,
        t.status, t.slug, t.champion,
        COALESCE(SUM(p.amount), 0)::text AS prize_pool
    FROM tournaments t
    LEFT JOIN leagues l            ON l.id = t.league_id
    LEFT JOIN tournament_prizes p  ON p.tournament_id = t.id`

const baseGroup = ` GROUP BY t.id, l.name`

func scanTournaments(rows pgx.Rows) ([]Tournament, error) {
	defer rows.Close()

	var out []Tournament
	for rows.Next() {
		var t Tournament
		err := rows.Scan(
			&t.ID, &t.Name, &t.Information, &t.Cost, &t.Teams, &t.LeagueID,
			&t.LeagueName, &t.Season, &t.StartsAt, &t.EndsAt,
			&t.RegistrationOpens, &t.RegistrationEnds,
			&t.Status, &t.Slug, &t.Champion, &t.PrizePool)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tournament rows iteration failed: %w", err)
	}
	return out, nil
}

// GetFeatured returns upcoming and running tournaments for the home page,
// open-for-registration first.
func (r *PostgresTournamentRepo) GetFeatured(ctx context.Context, limit int) ([]Tournament, error) {
	rows, err := r.pgpool.Query(ctx, baseSelect+`
        WHERE t.status IN ('Preparing', 'Open', 'Active')`+baseGroup+`
        ORDER BY CASE t.status WHEN 'Open' THEN 1 WHEN 'Active' THEN 2 ELSE 3 END,
                 t.starts_at ASC
        LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("featured tournaments query failed: %w", err)
	}
	return scanTournaments(rows)
}

func (r *PostgresTournamentRepo) List(ctx context.Context, filters ListFilters) ([]Tournament, error) {
	var conditions []string
	var args []any

	if filters.Status != "" {
		args = append(args, filters.Status)
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", len(args)))
	}
	if filters.LeagueID != 0 {
		args = append(args, filters.LeagueID)
		conditions = append(conditions, fmt.Sprintf("t.league_id = $%d", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	limitClause := fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filters.Offset)
	offsetClause := fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pgpool.Query(ctx,
		baseSelect+where+baseGroup+` ORDER BY t.starts_at DESC`+limitClause+offsetClause,
		args...)
	if err != nil {
		return nil, fmt.Errorf("tournament list query failed: %w", err)
	}
	return scanTournaments(rows)
}

func (r *PostgresTournamentRepo) GetBySlug(ctx context.Context, slug string) (*Tournament, error) {
	rows, err := r.pgpool.Query(ctx, baseSelect+`
        WHERE t.slug = $1`+baseGroup+`
        LIMIT 1`, slug)
	if err != nil {
		return nil, fmt.Errorf("tournament lookup failed: %w", err)
	}
	tournaments, err := scanTournaments(rows)
	if err != nil {
		return nil, err
	}
	if len(tournaments) == 0 {
		return nil, ErrNotFound
	}
	return &tournaments[0], nil
}

func (r *PostgresTournamentRepo) CountActiveUsers(ctx context.Context) (int64, error) {
	var total int64
	err := r.pgpool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE status = 'Active'`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("active user count failed: %w", err)
	}
	return total, nil
}

func (r *PostgresTournamentRepo) CountTournaments(ctx context.Context) (int64, error) {
	var total int64
	err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM tournaments`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("tournament count failed: %w", err)
	}
	return total, nil
}

func (r *PostgresTournamentRepo) CountRunningTournaments(ctx context.Context) (int64, error) {
	var total int64
	err := r.pgpool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tournaments WHERE status IN ('Open', 'Active')`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("running tournament count failed: %w", err)
	}
	return total, nil
}

func (r *PostgresTournamentRepo) SumFinishedPrizes(ctx context.Context) (float64, error) {
	var total float64
	err := r.pgpool.QueryRow(ctx,
		`SELECT COALESCE(SUM(p.amount), 0)::float8
         FROM tournament_prizes p
         JOIN tournaments t ON t.id = p.tournament_id
         WHERE t.status = 'Closed'`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("prize sum failed: %w", err)
	}
	return total, nil
}
