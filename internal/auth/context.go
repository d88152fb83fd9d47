package auth

import (
	"context"

	"github.com/ereignis/ereignis-api/internal/domain"
)

type actorKey struct{}

// WithActor returns a context carrying the resolved actor. A nil user marks an anonymous request.
func WithActor(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, actorKey{}, user)
}

// ActorFromContext returns the actor bound to ctx, or nil.
func ActorFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(actorKey{}).(*domain.User)
	return user
}
