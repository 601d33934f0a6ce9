package auth

import (
	"context"
	"net/http"
	"strings"

	"synapse/pkg/logger"
	"synapse/pkg/utils"
)

type ctxSessionKey struct{}

// Session is the verified identity injected into the request context by
// RequireUser. Handlers read it via SessionFromContext; there is no
// ambient global session state.
type Session struct {
	UserID   string
	Email    string
	Username string
}

// RequireUser verifies the Bearer access token and injects the session
// into the request context. Requests without a valid token get a 401.
func RequireUser(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				utils.JSONError(w, http.StatusUnauthorized, msgNoAccessToken)
				return
			}
			claims, err := tokens.VerifyAccessToken(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				logger.Warn("bearer_token_rejected", "path", r.URL.Path, "remote", r.RemoteAddr)
				utils.JSONError(w, http.StatusUnauthorized, msgBadAccessToken)
				return
			}
			sess := Session{UserID: claims.UserID, Email: claims.Email, Username: claims.Username}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxSessionKey{}, sess)))
		})
	}
}

// SessionFromContext returns the verified session, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxSessionKey{}).(Session)
	return s, ok
}
