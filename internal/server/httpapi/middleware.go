package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// bearerToken extracts the token from the Authorization header.
// Returns "" when the header is missing or not a bearer credential.
func bearerToken(r *http.Request) string {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(h, common.BearerPrefix)
}

// Authenticate guards protected routes: it verifies the bearer token's
// signature and expiry, cross-checks the session store so revoked sessions
// fail immediately, and injects the authenticated user id into the request
// context. On failure the wrapped handler never runs.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}

		userID, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user id injected by
// Authenticate, or "" when the request did not pass through the guard.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}
