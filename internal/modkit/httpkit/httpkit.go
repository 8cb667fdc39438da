// Package httpkit is the HTTP surface modules build on: routing sugar over
// the platform transport, the shared middleware stack and webhook auth.
// Modules import this instead of internal/platform/net/http
package httpkit

import (
	"net/http"

	phttp "immiwatch/internal/platform/net/http"
)

type (
	// Router is the platform router
	Router = phttp.Router

	// Handler is the platform handler shape
	Handler = phttp.Handler

	// Envelope is the JSON body of every response
	Envelope = phttp.Envelope

	// Response lets a handler pick a non-200 status
	Response = phttp.Response
)

// Created wraps data in a 201 response
func Created(data any) Response { return phttp.Created(data) }

// Get mounts a body-less handler under GET
func Get(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Get(path, phttp.Call(fn))
}

// Post mounts a handler under POST that reads the body itself, if at all
func Post(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Post(path, phttp.Call(fn))
}

// PutJSON mounts a handler under PUT that receives the validated body
func PutJSON[T any](r Router, path string, fn func(*http.Request, T) (any, error)) {
	r.Put(path, phttp.Bind(fn))
}

// PostJSON mounts a handler under POST that receives the validated body
func PostJSON[T any](r Router, path string, fn func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.Bind(fn))
}
