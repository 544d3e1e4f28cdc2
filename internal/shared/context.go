package shared

import "context"

// Actor identifies the authenticated user performing a request. It is
// resolved by the session middleware and consumed for audit stamps and
// access checks.
type Actor struct {
	ID    int64
	Name  string
	Email string
	Role  string
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The second return
// value is false when no authenticated actor is present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
