package tournament

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const featuredCacheKey = "tournaments:featured"

var _ TournamentService = (*TournamentServiceImpl)(nil)

type TournamentService interface {
	GetFeatured(ctx context.Context, limit int) ([]Tournament, error)
	List(ctx context.Context, filters ListFilters) ([]Tournament, error)
	GetBySlug(ctx context.Context, slug string) (*Tournament, error)
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
}

type TournamentServiceImpl struct {
	logger *slog.Logger
	repo   TournamentRepo
	cache  *cache.Cache
}

func NewTournamentService(repo TournamentRepo, c *cache.Cache, logger *slog.Logger) *TournamentServiceImpl {
	return &TournamentServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  c,
	}
}

// GetFeatured serves the home-page listing through a short-lived read-through
// cache; the landing page is the hottest path on the site.
func (s *TournamentServiceImpl) GetFeatured(ctx context.Context, limit int) ([]Tournament, error) {
	if limit <= 0 {
		limit = 6
	}
	key := fmt.Sprintf("%s:%d", featuredCacheKey, limit)
	if cached, found := s.cache.Get(key); found {
		return cached.([]Tournament), nil
	}

	tournaments, err := s.repo.GetFeatured(ctx, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, tournaments, cache.DefaultExpiration)
	return tournaments, nil
}

func (s *TournamentServiceImpl) List(ctx context.Context, filters ListFilters) ([]Tournament, error) {
	return s.repo.List(ctx, filters)
}

func (s *TournamentServiceImpl) GetBySlug(ctx context.Context, slug string) (*Tournament, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// GetPlatformStats runs the four landing-page counters concurrently and
// formats them for display.
func (s *TournamentServiceImpl) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	var users, tournaments, running int64
	var prizes float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.repo.CountActiveUsers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tournaments, err = s.repo.CountTournaments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		running, err = s.repo.CountRunningTournaments(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		prizes, err = s.repo.SumFinishedPrizes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &PlatformStats{
		Users:       formatCount(users),
		Tournaments: formatCount(tournaments),
		Active:      fmt.Sprintf("%d", running),
		Prizes:      formatPrizes(prizes),
	}, nil
}

// formatCount abbreviates counters for display: 1200 -> "1.2K+", 2_000_000 -> "2.0M+".
func formatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM+", float64(n)/1_000_000)
	case n >= 1_000:
		if n%1_000 == 0 {
			return fmt.Sprintf("%dK+", n/1_000)
		}
		return fmt.Sprintf("%.1fK+", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func formatPrizes(n float64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("$%.1fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("$%dK", int64(math.Round(n/1_000)))
	default:
		return fmt.Sprintf("$%.0f", n)
	}
}
