// Package api provides the HTTP API for the application
package api

import (
	"net/http"

	"immiwatch/internal/core/version"
	"immiwatch/internal/platform/config"
	"immiwatch/internal/platform/logger"
	"immiwatch/internal/platform/metrics"
	phttp "immiwatch/internal/platform/net/http"
	"immiwatch/internal/platform/net/middleware"
	"immiwatch/internal/platform/store"

	"immiwatch/internal/modkit"
	"immiwatch/internal/modkit/httpkit"
	"immiwatch/internal/modkit/module"
	"immiwatch/internal/modkit/swaggerkit"

	metamod "immiwatch/internal/services/api/meta/module"
	drawcheckmod "immiwatch/internal/services/drawcheck/module"
	monthlymod "immiwatch/internal/services/monthly/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf // root view; modules add their own prefixes
	Store          *store.Store
	Logger         *logger.Logger
	Metrics        *metrics.Metrics // nil leaves /metrics unmounted
	EnableSwagger  bool
	EnableProfiler bool
}

// Mounted is what the caller drains on shutdown
type Mounted struct {
	monthly *monthlymod.Module
}

// Wait blocks until background notifications finish
func (m Mounted) Wait() {
	if m.monthly != nil {
		m.monthly.Service().Wait()
	}
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) Mounted {
	st := opt.Store
	if st == nil {
		st = &store.Store{}
	}
	deps := modkit.Deps{
		Cfg:     opt.Config,
		PG:      st.PG,
		CH:      st.CH,
		Metrics: opt.Metrics,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// monthly owns the Ingest port that drawcheck forwards feed rounds to
	monthly := monthlymod.New(deps)
	ingest := module.MustPortsOf[monthlymod.Ports](monthly).Ingest

	drawcheck := drawcheckmod.New(deps, modkit.WithPorts(drawcheckmod.Ports{Ingest: ingest}))

	mods := []module.Module{
		metamod.New(deps),
		monthly,
		drawcheck,
	}

	r.Use(middleware.Heartbeat("/health"))
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		info := version.Info()
		info.Service = metamod.ServiceName
		phttp.RespondOK(w, req, map[string]any{
			"build": info,
			"api":   "/api/v1",
			"docs":  opt.EnableSwagger,
		})
	})
	if opt.Metrics != nil {
		r.Handle("/metrics", opt.Metrics.Handler())
	}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackFromConfig(opt.Config.Prefix("CORE_API_"))), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name for cross-module lookups
			module.Register(m.Name(), m.Ports())
			m.MountRoutes(api)
		}
	})

	out := Mounted{}
	if mm, ok := monthly.(*monthlymod.Module); ok {
		out.monthly = mm
	}
	return out
}
