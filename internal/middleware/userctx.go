package middleware

import (
	"context"

	"github.com/baharkarakas/storefront-backend/internal/models"
)

type userKey struct{}

// UserCtx is the caller identity Authenticate attaches to a request.
type UserCtx struct {
	UserID string
	Role   models.Role
}

func (u UserCtx) Authenticated() bool { return u.UserID != "" }

func WithUser(ctx context.Context, u UserCtx) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// FromCtx returns the zero UserCtx for anonymous requests.
func FromCtx(ctx context.Context) UserCtx {
	u, _ := ctx.Value(userKey{}).(UserCtx)
	return u
}
