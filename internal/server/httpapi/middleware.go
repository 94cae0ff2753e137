package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
)

type contextKey string

const claimsContextKey contextKey = "claims"

// authenticate checks the Bearer token and stores the parsed claims in the
// request context. An expired token is reported with the exact message
// common.ErrTokenExpired carries, so clients can tell it apart from a bad
// token and renew instead of signing in again.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := s.sessions.VerifyAccessToken(token)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				respondError(w, r, http.StatusUnauthorized, common.ErrTokenExpired.Error())
				return
			}
			respondError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

// canAccess reports whether the caller may act on the given account. Admins
// may act on anyone, everyone else only on themselves.
func canAccess(claims *auth.Claims, accountID string) bool {
	if claims.UserID == accountID {
		return true
	}
	for _, role := range claims.Roles {
		if role == "admin" {
			return true
		}
	}
	return false
}
