package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MPEduardo98/nephyx-network/internal/api"
	"github.com/MPEduardo98/nephyx-network/internal/api/auth"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	GetUserProfile(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	userService UserService
	logger      *slog.Logger
}

func NewHandlerImpl(userService UserService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		userService: userService,
		logger:      logger,
	}
}

// GetUserProfile returns the authenticated user's profile. The user id comes
// from the session claims placed on the context by the auth middleware.
func (h *HandlerImpl) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetUserProfile"))

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "User ID not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.userService.GetUserProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch user profile",
			slog.Int64("user_id", userID), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Could not load profile")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, profile)
}
