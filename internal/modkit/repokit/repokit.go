// Package repokit is the toolkit SQL repos are built with: the query seams,
// a binder from a runner to typed queries, and per-transaction hooks
package repokit

import (
	"context"
	"fmt"
	"time"

	"immiwatch/internal/platform/store"
)

type (
	// Queryer is what queries run against, the pool or an open tx
	Queryer = store.RowQuerier

	// TxRunner is a Queryer that can open transactions
	TxRunner = store.TxRunner
)

// Binder turns a Queryer into a repo's typed query set
type Binder[T any] interface {
	Bind(Queryer) T
}

// MustBind binds q, panicking on a nil Queryer since that is a wiring bug
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: bind on a nil Queryer")
	}
	return b.Bind(q)
}

// BeginHook runs first inside every transaction opened by WithBeginHooks
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks wraps inner so each Tx runs hooks before fn; a failing hook
// rolls the transaction back. Statements outside Tx pass straight through
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	return hooked{TxRunner: inner, hooks: hooks}
}

type hooked struct {
	TxRunner
	hooks []BeginHook
}

func (h hooked) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hook := range h.hooks {
			if err := hook(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// LocalTimeouts sets statement_timeout and lock_timeout for the transaction
// only. A zero duration leaves that setting alone
func LocalTimeouts(statement, lock time.Duration) BeginHook {
	return func(ctx context.Context, q Queryer) error {
		for _, s := range []struct {
			name string
			d    time.Duration
		}{{"statement_timeout", statement}, {"lock_timeout", lock}} {
			if s.d <= 0 {
				continue
			}
			if _, err := q.Exec(ctx, fmt.Sprintf("SET LOCAL %s = %d", s.name, s.d.Milliseconds())); err != nil {
				return err
			}
		}
		return nil
	}
}

// Guarder is anything that can check its backends, e.g. *store.Store
type Guarder interface {
	Guard(context.Context) error
}

// MustGuard fails startup when a configured backend does not answer within
// 10s, or sooner if ctx already has a deadline
func MustGuard(ctx context.Context, g Guarder) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}
	if err := g.Guard(ctx); err != nil {
		panic(fmt.Errorf("dependency guard failed: %w", err))
	}
}
