package middleware

import (
	"net/http"
	"slices"

	"github.com/baharkarakas/storefront-backend/internal/api/httpx"
	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/models"
)

// RequireRole allows only callers holding one of roles. It must run after
// Authenticate.
func RequireRole(errs httpx.Errors, roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := FromCtx(r.Context())
			if !u.Authenticated() {
				errs.Write(w, r, apperr.ErrUnauthenticated)
				return
			}
			if !slices.Contains(roles, u.Role) {
				errs.Write(w, r, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
