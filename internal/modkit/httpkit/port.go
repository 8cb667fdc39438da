package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perrs "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/net/middleware"
)

// SecretHeader carries the shared webhook secret
const SecretHeader = "X-Webhook-Secret"

// SecretQuery is the query parameter fallback for senders that cannot set headers
const SecretQuery = "secret"

// SecretPort implements middleware.AuthPort with a shared secret
type SecretPort struct {
	secret []byte
	caller string
}

// NewSecretPort returns a port that accepts requests carrying secret and names
// them caller. An empty secret disables the check and returns a nil port
func NewSecretPort(secret, caller string) middleware.AuthPort {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil
	}
	return &SecretPort{secret: []byte(secret), caller: caller}
}

// Parse reads the secret from the header, then the query string
func (p *SecretPort) Parse(r *http.Request) (string, error) {
	got := strings.TrimSpace(r.Header.Get(SecretHeader))
	if got == "" {
		got = strings.TrimSpace(r.URL.Query().Get(SecretQuery))
	}
	if got == "" {
		return "", perrs.Unauthorizedf("missing webhook secret")
	}
	if subtle.ConstantTimeCompare([]byte(got), p.secret) != 1 {
		return "", perrs.Unauthorizedf("invalid webhook secret")
	}
	return p.caller, nil
}
