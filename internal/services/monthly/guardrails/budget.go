package guardrails

import (
	"context"
	"time"
)

// Detached returns a context that survives parent cancellation but keeps its
// values and is bounded by d. Used for fire-and-forget side effects
func Detached(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(parent)
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
