package middleware

import (
	"net/http"

	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/logger"
	pnet "immiwatch/internal/platform/net"
)

// AuthPort authenticates a request and names the caller
type AuthPort interface {
	Parse(r *http.Request) (caller string, err error)
}

// AuthFunc adapts a function to AuthPort
type AuthFunc func(r *http.Request) (string, error)

// Parse calls f
func (f AuthFunc) Parse(r *http.Request) (string, error) { return f(r) }

// AnyOf accepts a request when one of ports does, trying them in order. The
// last rejection is returned when all refuse. Nil ports are skipped and an
// empty set yields nil
func AnyOf(ports ...AuthPort) AuthPort {
	var live []AuthPort
	for _, p := range ports {
		if p != nil {
			live = append(live, p)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return AuthFunc(func(r *http.Request) (string, error) {
		var err error
		for _, p := range live {
			var caller string
			if caller, err = p.Parse(r); err == nil {
				return caller, nil
			}
		}
		return "", err
	})
}

// Auth rejects requests the port refuses, rendering the failure with write.
// Accepted requests carry the caller name on their context; a nil port lets
// everything through
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	if p == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller, err := p.Parse(r)
			if err != nil {
				logger.C(ctx).Debug().
					Str("path", r.URL.Path).
					Str("code", perr.CodeOf(err).String()).
					Err(err).
					Msg("auth rejected")
				status, body := pnet.Failure(err, pnet.RequestID(ctx))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithCaller(ctx, caller)))
		})
	}
}
