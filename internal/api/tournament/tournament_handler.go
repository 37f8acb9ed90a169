package tournament

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MPEduardo98/nephyx-network/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetFeatured(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetBySlug(w http.ResponseWriter, r *http.Request)
	GetPlatformStats(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	tournamentService TournamentService
	logger            *slog.Logger
}

func NewHandlerImpl(tournamentService TournamentService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		tournamentService: tournamentService,
		logger:            logger,
	}
}

func (h *HandlerImpl) GetFeatured(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetFeatured"))

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tournaments, err := h.tournamentService.GetFeatured(ctx, limit)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch featured tournaments", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Could not load tournaments")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, tournaments)
}

func (h *HandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "List"))

	q := r.URL.Query()
	filters := ListFilters{Status: q.Get("status")}
	if v := q.Get("league_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "league_id must be numeric")
			return
		}
		filters.LeagueID = id
	}
	filters.Limit, _ = strconv.Atoi(q.Get("limit"))
	filters.Offset, _ = strconv.Atoi(q.Get("offset"))

	tournaments, err := h.tournamentService.List(ctx, filters)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list tournaments", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Could not load tournaments")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, tournaments)
}

func (h *HandlerImpl) GetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetBySlug"))

	slug := chi.URLParam(r, "slug")
	tournament, err := h.tournamentService.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Tournament not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch tournament",
			slog.String("slug", slug), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Could not load tournament")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, tournament)
}

func (h *HandlerImpl) GetPlatformStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetPlatformStats"))

	stats, err := h.tournamentService.GetPlatformStats(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to compute platform stats", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Could not load stats")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, stats)
}
