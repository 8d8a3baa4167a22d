package auth

import (
	"context"

	appErrors "circulate-backend/pkg/errors"
)

// contextKey is a private type to avoid context key collisions
type contextKey string

const userContextKey contextKey = "user_context"

// UserContext carries the authenticated caller's identity through a request
type UserContext struct {
	UserID        string
	Email         string
	EmailVerified bool
}

// WithUser returns a context carrying the given user
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext extracts the authenticated user from the context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil || user.UserID == "" {
		return nil, appErrors.NewUnauthorizedError("no authenticated user in context")
	}
	return user, nil
}
