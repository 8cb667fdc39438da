// Package http is the JSON transport layer: a chi-backed Router, envelope
// responses, body binding and the server lifecycle
package http

import (
	"encoding/json"
	"net/http"

	pnet "immiwatch/internal/platform/net"
	"immiwatch/internal/platform/net/http/bind"
)

// Envelope is the body of every JSON response
type Envelope = pnet.Envelope

// JSON writes v with status as application/json
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondOK writes data in a 200 envelope
func RespondOK(w http.ResponseWriter, r *http.Request, data any) {
	JSON(w, http.StatusOK, pnet.Success(http.StatusOK, data, pnet.RequestID(r.Context())))
}

// RespondError writes err in a failure envelope with its mapped status
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status, env := pnet.Failure(err, pnet.RequestID(r.Context()))
	JSON(w, status, env)
}

// Response is what return-style handlers produce. A Body that is an error
// becomes a failure envelope and Status is ignored
type Response struct {
	Status int
	Body   any
	Header http.Header
}

// OK is a 200 response carrying data
func OK(data any) Response { return Response{Status: http.StatusOK, Body: data} }

// Created is a 201 response carrying data
func Created(data any) Response { return Response{Status: http.StatusCreated, Body: data} }

// Error is a failure response for err
func Error(err error) Response { return Response{Body: err} }

// Handle adapts a return-style handler to net/http
func Handle(fn func(*http.Request) Response) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := fn(r)
		for k, vv := range resp.Header {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
		if err, ok := resp.Body.(error); ok && err != nil {
			RespondError(w, r, err)
			return
		}
		status := resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		JSON(w, status, pnet.Success(status, resp.Body, pnet.RequestID(r.Context())))
	}
}

// Call adapts fn; a Response result is written as is, anything else is a 200
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		return result(out, err)
	})
}

// Bind decodes and validates a T from the request body before calling fn
func Bind[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		return result(out, err)
	})
}

func result(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}
