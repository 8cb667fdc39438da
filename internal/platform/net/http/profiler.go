package http

import (
	"github.com/go-chi/chi/v5/middleware"
)

// MountProfiler serves net/http/pprof under prefix, for example /debug/pprof/
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	r.Mount(prefix, middleware.Profiler())
}
