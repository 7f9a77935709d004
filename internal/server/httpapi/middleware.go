package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// userIDFromContext returns the authenticated user id set by
// accessTokenMiddleware.
func userIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// accessTokenMiddleware authenticates requests with a Bearer access token.
// An expired token yields a distinct error code so clients know to refresh
// instead of signing in again.
func (s *Server) accessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get(common.AccessTokenHeaderName)
		accessToken := strings.TrimPrefix(header, common.BearerPrefix)
		if accessToken == "" || accessToken == header {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "token expired")
			} else {
				writeError(w, http.StatusUnauthorized, "invalid token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
