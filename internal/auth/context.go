package auth

import "context"

type contextKey struct{}

var userContextKey = contextKey{}

// ContextWithUser attaches the authenticated user to the request context.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or false when the request
// was not authenticated (public routes).
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
