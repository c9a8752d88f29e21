package httpx

import (
	"context"

	domainauth "github.com/guildtools/rosterd/internal/domain/auth"
)

// userKey is an unexported context key type to avoid collisions across packages.
type userKey struct{}

// SetUserInContext returns a child context carrying the authenticated user.
// A nil user returns ctx unchanged.
func SetUserInContext(ctx context.Context, user *domainauth.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user and whether one is present.
func UserFromContext(ctx context.Context) (*domainauth.User, bool) {
	if user, ok := ctx.Value(userKey{}).(*domainauth.User); ok && user != nil {
		return user, true
	}
	return nil, false
}
