package modkit

import (
	"net/http"

	"immiwatch/internal/modkit/httpkit"
	str "immiwatch/internal/platform/strings"
)

// Option adjusts a module before it is built
type Option func(*Built)

// WithName sets the registry and log name
func WithName(name string) Option { return func(b *Built) { b.name = name } }

// WithPrefix sets the route prefix under /api/v1
func WithPrefix(prefix string) Option { return func(b *Built) { b.prefix = prefix } }

// WithMiddlewares appends middleware that runs only on this module's routes
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.mw = append(b.mw, mw...) }
}

// WithPorts hands a module the ports it consumes from another module. The
// importing module owns the concrete type and reads it back with Injected
func WithPorts[T any](p T) Option { return func(b *Built) { b.ports = p } }

// Built is the resolved option set. Modules embed it
type Built struct {
	name   string
	prefix string
	mw     []func(http.Handler) http.Handler
	ports  any
}

// Build applies opts in order, so later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Name is the module name; building without one panics on first use
func (b Built) Name() string { return str.Required(b.name, "module name") }

// Prefix is the normalized route prefix, e.g. /monthly
func (b Built) Prefix() string { return str.RoutePrefix(b.prefix) }

// Injected returns what WithPorts supplied, if anything
func (b Built) Injected() any { return b.ports }

// Mount registers routes under the module prefix behind its own middleware
func (b Built) Mount(r httpkit.Router, routes func(httpkit.Router)) {
	r.Route(b.Prefix(), func(sub httpkit.Router) {
		if len(b.mw) > 0 {
			sub.Use(b.mw...)
		}
		routes(sub)
	})
}
