package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/MPEduardo98/nephyx-network/internal/api/auth"
	"github.com/MPEduardo98/nephyx-network/internal/api/tournament"
	"github.com/MPEduardo98/nephyx-network/internal/api/user"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	AuthHandler       *auth.AuthHandler
	UserHandler       *user.HandlerImpl
	TournamentHandler *tournament.HandlerImpl

	// RequireSession guards JSON API routes with a 401; the page-level
	// SessionGate is applied by main before mounting this router.
	RequireSession func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://nephyx.network"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)

			r.Get("/tournaments", cfg.TournamentHandler.List)
			r.Get("/tournaments/featured", cfg.TournamentHandler.GetFeatured)
			r.Get("/tournaments/{slug}", cfg.TournamentHandler.GetBySlug)
			r.Get("/stats", cfg.TournamentHandler.GetPlatformStats)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireSession)

			r.Post("/auth/logout", cfg.AuthHandler.Logout)
			r.Get("/auth/session", cfg.AuthHandler.GetSession)
			r.Get("/users/me", cfg.UserHandler.GetUserProfile)
		})
	})

	return r
}
