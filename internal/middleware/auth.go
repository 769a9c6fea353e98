package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/models"
)

// TokenHeader is the header the storefront client sends the session token in.
const TokenHeader = "auth-token"

// Authenticator resolves a session token to a stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// Authenticate rejects requests without a valid token for an existing user
// and attaches the caller's identity to the request context.
func Authenticate(a Authenticator, errs httpx.Errors) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := a.Authenticate(r.Context(), tokenFrom(r))
			if err != nil {
				errs.Write(w, r, err)
				return
			}
			ctx := WithUser(r.Context(), UserCtx{UserID: u.ID, Role: u.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFrom(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TokenHeader)); t != "" {
		return t
	}
	ah := r.Header.Get("Authorization")
	if len(ah) > 7 && strings.EqualFold(ah[:7], "bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return ""
}
