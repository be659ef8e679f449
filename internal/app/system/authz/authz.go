// internal/app/system/authz/authz.go
//
// Package authz carries the authenticated user through the request
// context. The auth middleware stores the user after verifying the bearer
// token; handlers read it back with UserCtx.
package authz

import (
	"context"

	"github.com/dalemusser/gatherhub/internal/domain/models"
)

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// WithUser returns a context carrying the authenticated user and the raw
// bearer token the request presented.
func WithUser(ctx context.Context, u *models.User, token string) context.Context {
	ctx = context.WithValue(ctx, userKey, u)
	return context.WithValue(ctx, tokenKey, token)
}

// UserCtx returns the authenticated user, or nil when the request carried
// no valid token.
func UserCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// TokenCtx returns the raw bearer token used to authenticate the request.
func TokenCtx(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}
