package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MPEduardo98/nephyx-network/config"
	"github.com/MPEduardo98/nephyx-network/internal/api"
)

// SessionCookieName is the HttpOnly cookie carrying the session token.
const SessionCookieName = "nephyx_session"

// Route classification for the gate. Anything not listed is public.
var (
	ProtectedPrefixes = []string{"/dashboard", "/profile", "/admin", "/settings"}
	AuthOnlyPrefixes  = []string{"/auth/login", "/auth/register"}
)

type contextKey string

const ClaimsKey contextKey = "sessionClaims"

// GetClaimsFromContext returns the session claims placed by the gate.
func GetClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := GetClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	claims, ok := GetClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.Role, true
}

// ParseSessionToken verifies the token signature, expiry, issuer and audience
// and returns the embedded claims. It never touches the store.
func ParseSessionToken(tokenString string, jwtCfg config.JWTConfig) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtCfg.SecretKey), nil
	},
		jwt.WithIssuer(jwtCfg.Issuer),
		jwt.WithAudience(jwtCfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// sessionFromRequest extracts a token from the session cookie or a bearer
// Authorization header and parses it. A missing or invalid token is simply
// "no session", never an error.
func sessionFromRequest(r *http.Request, jwtCfg config.JWTConfig) *Claims {
	var tokenString string
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		tokenString = cookie.Value
	} else if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		return nil
	}

	claims, err := ParseSessionToken(tokenString, jwtCfg)
	if err != nil {
		return nil
	}
	return claims
}

func hasPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// SessionGate classifies every request as public, protected or auth-only and
// allows or redirects accordingly. Protected paths without a session redirect
// to the login page; auth-only paths with a session redirect home. The check
// is purely local token verification, so the gate is safe to run without any
// database access.
func SessionGate(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	if jwtCfg.SecretKey == "" {
		logger.Error("FATAL: JWT secret key is not configured")
		panic("JWT secret key cannot be empty")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := sessionFromRequest(r, jwtCfg)
			path := r.URL.Path

			if hasPrefix(path, ProtectedPrefixes) && claims == nil {
				logger.DebugContext(r.Context(), "No session on protected route, redirecting",
					slog.String("path", path))
				http.Redirect(w, r, "/auth/login", http.StatusFound)
				return
			}

			if hasPrefix(path, AuthOnlyPrefixes) && claims != nil {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}

			if claims != nil {
				r = r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession guards JSON API routes. Unlike SessionGate it answers 401
// instead of redirecting, since the callers are fetch requests rather than
// page navigations.
func RequireSession(logger *slog.Logger, jwtCfg config.JWTConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := sessionFromRequest(r, jwtCfg)
			if claims == nil {
				logger.WarnContext(r.Context(), "Missing or invalid session token",
					slog.String("path", r.URL.Path))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
