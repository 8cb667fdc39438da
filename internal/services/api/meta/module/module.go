// Package module mounts the meta endpoints: liveness, readiness, build info
// and the program catalogue
package module

import (
	"time"

	modkit "immiwatch/internal/modkit"
	"immiwatch/internal/modkit/httpkit"

	metahttp "immiwatch/internal/services/api/meta/http"
)

// ServiceName is reported by /meta/service and /meta/version
const ServiceName = "immiwatch-api"

// Module serves /meta
type Module struct {
	modkit.Built
	deps metahttp.Deps
}

// New builds the meta module; readiness probes whichever backends deps carries
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	return &Module{
		Built: b,
		deps: metahttp.Deps{
			ServiceName: ServiceName,
			StartedAt:   time.Now(),
			Backends: []metahttp.Backend{
				{Name: "pg", Conn: deps.PG},
				{Name: "ch", Conn: deps.CH},
			},
		},
	}
}

// MountRoutes mounts the meta routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.Mount(r, func(sub httpkit.Router) { metahttp.Register(sub, m.deps) })
}

// Ports is empty; nothing consumes meta
func (m *Module) Ports() any { return nil }
