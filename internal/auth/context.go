package auth

import "context"

// UserContext holds authenticated user information
type UserContext struct {
	UserID   string   `json:"user_id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	TenantID string   `json:"tenant_id"`
	Scopes   []string `json:"scopes"`
}

type userContextKey struct{}

// WithUserContext returns a copy of ctx carrying user
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the user stored by the auth middleware, if any
func UserFromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey{}).(*UserContext)
	return user, ok && user != nil
}
