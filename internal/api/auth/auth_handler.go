package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MPEduardo98/nephyx-network/internal/api"
)

type AuthHandler struct {
	authService AuthService
	logger      *slog.Logger
	sessionTTL  time.Duration
}

func NewAuthHandler(authService AuthService, sessionTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
		sessionTTL:  sessionTTL,
	}
}

// Register dispatches one registration step. Steps 1 and 2 answer 200 with no
// side effects; step 3 creates the account and answers 201 with the new id.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid register request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.authService.SubmitStep(ctx, req)
	if err != nil {
		status := StatusForError(err)
		if status == http.StatusInternalServerError {
			// Store failures are logged with full context; the client only
			// sees a generic retry message.
			l.ErrorContext(ctx, "Registration step failed",
				slog.Int("step", req.Step), slog.Any("error", err))
			api.ErrorResponse(w, r, status, "Registration could not be completed.")
			return
		}
		api.ErrorResponse(w, r, status, err.Error())
		return
	}

	status := http.StatusOK
	if req.Step == 3 {
		status = http.StatusCreated
	}
	api.WriteJSONResponse(w, r, status, resp)
}

// Login verifies credentials and issues the session token as an HttpOnly
// cookie, additionally returning it in the body for non-browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid login request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, _, err := h.authService.Login(ctx, req.Login, req.Password)
	if err != nil {
		// One generic message for every failure mode.
		api.ErrorResponse(w, r, http.StatusUnauthorized, ErrUnauthenticated.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{
		AccessToken: token,
		Message:     "Login successful",
	})
}

// Logout clears the session cookie. The token itself stays valid until
// expiry; there is no server-side revocation list.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	api.WriteJSONResponse(w, r, http.StatusOK, Response{Success: true, Message: "Signed out"})
}

// GetSession echoes the claims snapshot from the token. Values are copied
// verbatim; the store is never consulted, so claims can be stale until the
// next sign-in.
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaimsFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, SessionView{
		UserID:       claims.UserID,
		Username:     claims.Username,
		Email:        claims.Email,
		Role:         claims.Role,
		Level:        claims.Level,
		XP:           claims.XP,
		Status:       claims.Status,
		SummonerName: claims.SummonerName,
		Tag:          claims.Tag,
	})
}
