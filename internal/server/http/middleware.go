package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/recipevault/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "user"

// tokenAuthMiddleware resolves the "Authorization: Token <key>" header into
// the authenticated user and stores it on the request context. Requests
// without a resolvable token never reach the handler.
func (s *HTTPServer) tokenAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := tokenFromHeader(r.Header.Get("Authorization"))
		if !ok {
			RespondWithError(w, http.StatusUnauthorized, "invalid or missing authentication token")
			return
		}

		user, err := s.users.GetByToken(r.Context(), token)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFromHeader(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Token") || token == "" {
		return "", false
	}
	return token, true
}

// userFromContext returns the user placed by tokenAuthMiddleware.
func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}
