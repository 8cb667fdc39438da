package httpkit

import (
	"net/http"

	perrs "immiwatch/internal/platform/errors"
	pnet "immiwatch/internal/platform/net"
)

// Caller returns the authenticated caller from the request context
func Caller(r *http.Request) (string, error) {
	c := pnet.Caller(r.Context())
	if c == "" {
		return "", perrs.Unauthorizedf("unauthenticated request")
	}
	return c, nil
}

// CallerOr returns the authenticated caller or def on open routes
func CallerOr(r *http.Request, def string) string {
	if c := pnet.Caller(r.Context()); c != "" {
		return c
	}
	return def
}
