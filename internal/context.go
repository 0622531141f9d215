package internal

import (
	"context"
	"time"

	"github.com/frahmantamala/timesheet-management/internal/core/domain"
)

type ctxKey string

const contextActorKey ctxKey = "actor"

// ActorFromContext returns the authenticated caller placed by the auth middleware.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	if ctx == nil {
		return domain.Actor{}, false
	}
	actor, ok := ctx.Value(contextActorKey).(domain.Actor)
	return actor, ok
}

func ContextWithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, contextActorKey, actor)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
