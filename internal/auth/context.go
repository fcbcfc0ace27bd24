package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID    primitive.ObjectID
	Username  string
	SessionID string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the caller stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
