package container

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"

	database "github.com/MPEduardo98/nephyx-network/app/db"
	"github.com/MPEduardo98/nephyx-network/config"
	"github.com/MPEduardo98/nephyx-network/internal/api/auth"
	"github.com/MPEduardo98/nephyx-network/internal/api/tournament"
	"github.com/MPEduardo98/nephyx-network/internal/api/user"
)

// Container holds all application dependencies.
type Container struct {
	Config            *config.Config
	Logger            *slog.Logger
	Pool              *pgxpool.Pool
	AuthHandler       *auth.AuthHandler
	UserHandler       *user.HandlerImpl
	TournamentHandler *tournament.HandlerImpl
}

// NewContainer initializes the dependency graph: pool, repositories,
// services, handlers.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, cfg.Repositories.Postgres.MaxConns, logger)
	if err != nil {
		return nil, err
	}

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	authService := auth.NewAuthService(authRepo, cfg.JWT, logger)
	authHandler := auth.NewAuthHandler(authService, cfg.JWT.SessionTTL, logger)

	userRepo := user.NewPostgresUserRepo(pool, logger)
	userService := user.NewUserService(userRepo, logger)
	userHandler := user.NewHandlerImpl(userService, logger)

	listingCache := gocache.New(2*time.Minute, 10*time.Minute)
	tournamentRepo := tournament.NewPostgresTournamentRepo(pool, logger)
	tournamentService := tournament.NewTournamentService(tournamentRepo, listingCache, logger)
	tournamentHandler := tournament.NewHandlerImpl(tournamentService, logger)

	return &Container{
		Config:            cfg,
		Logger:            logger,
		Pool:              pool,
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		TournamentHandler: tournamentHandler,
	}, nil
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready.
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations.
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
