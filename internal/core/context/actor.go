// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// ActorContext identifies the acting user for a request. It is used only
// for attribution fields on documents and the audit trail, never inside
// the ledger logic itself.
type ActorContext struct {
	UserID    string
	Name      string
	SessionID string
}

type actorContextKey struct{}

// WithActor adds ActorContext to context.
func WithActor(ctx context.Context, actor *ActorContext) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// GetActor returns ActorContext from context.
func GetActor(ctx context.Context) *ActorContext {
	if v, ok := ctx.Value(actorContextKey{}).(*ActorContext); ok {
		return v
	}
	return nil
}

// GetActorID returns the acting user id from context or empty string.
func GetActorID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return ""
}
