// Package net holds the transport-neutral pieces shared by the HTTP layer:
// request scoped context values and the response envelope
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// key scopes a typed value on a context
type key[T comparable] struct{ name string }

func (k key[T]) with(ctx context.Context, v T) context.Context {
	var zero T
	if v == zero {
		return ctx
	}
	return context.WithValue(ctx, k, v)
}

func (k key[T]) from(ctx context.Context) T {
	v, _ := ctx.Value(k).(T)
	return v
}

var callerKey = key[string]{"caller"}

// WithRequest stores the request id where chi's RequestID middleware keeps
// it, so both sides read the same value. Blank ids are ignored
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithCaller records the authenticated caller, e.g. "webhook"
func WithCaller(ctx context.Context, caller string) context.Context {
	return callerKey.with(ctx, caller)
}

// Caller returns the authenticated caller on the context if present
func Caller(ctx context.Context) string { return callerKey.from(ctx) }
