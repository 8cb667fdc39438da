package guardrails

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy bounds a read-modify-write retry loop
type Policy struct {
	// Attempts is the total number of tries; <=0 -> 1
	Attempts int

	// Base is the first backoff step; <=0 -> 50ms
	Base time.Duration

	// Cap bounds a single backoff; <=0 -> 2s
	Cap time.Duration
}

// Retry runs fn until it succeeds, retry reports false, attempts run out or
// ctx ends. The last fn error is returned
func Retry(ctx context.Context, p Policy, retry func(error) bool, fn func(attempt int) error) error {
	attempts := max(p.Attempts, 1)
	var last error
	for i := range attempts {
		err := fn(i)
		if err == nil {
			return nil
		}
		last = err
		if !retry(err) || i == attempts-1 {
			break
		}
		if se := sleepCtx(ctx, p.Backoff(i)); se != nil {
			return last
		}
	}
	return last
}

// Backoff is the jittered delay before attempt i+1: uniform in [d/2, d)
// where d doubles from Base up to Cap
func (p Policy) Backoff(i int) time.Duration {
	base := p.Base
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	ceiling := p.Cap
	if ceiling <= 0 {
		ceiling = 2 * time.Second
	}
	d := ceiling
	if i < 30 {
		d = min(base<<i, ceiling)
	}
	if d < 2 {
		return d
	}
	return d/2 + rand.N(d/2)
}

var sleepCtx = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
