package httpkit

import (
	"errors"
	"net/http"
	"testing"

	perrs "immiwatch/internal/platform/errors"
)

func TestNewSecretPort_EmptyDisables(t *testing.T) {
	t.Parallel()

	if p := NewSecretPort("  ", "webhook"); p != nil {
		t.Fatalf("expected nil port for empty secret, got %#v", p)
	}
}

func TestSecretPort_Parse(t *testing.T) {
	t.Parallel()

	p := NewSecretPort("s3cret", "webhook")

	cases := []struct {
		name   string
		header string
		url    string
		ok     bool
	}{
		{"header", "s3cret", "/", true},
		{"header trimmed", "  s3cret ", "/", true},
		{"query", "", "/?secret=s3cret", true},
		{"header wins over query", "s3cret", "/?secret=nope", true},
		{"missing", "", "/", false},
		{"wrong header", "nope", "/", false},
		{"wrong query", "", "/?secret=nope", false},
		{"prefix only", "s3c", "/", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, tc.url, nil)
			if tc.header != "" {
				req.Header.Set(SecretHeader, tc.header)
			}
			caller, err := p.Parse(req)
			if tc.ok {
				if err != nil || caller != "webhook" {
					t.Fatalf("Parse = %q, %v, want webhook", caller, err)
				}
				return
			}
			var pe *perrs.Error
			if !errors.As(err, &pe) || pe.Code() != perrs.ErrorCodeUnauthorized {
				t.Fatalf("expected unauthorized perrs error, got %#v", err)
			}
		})
	}
}
