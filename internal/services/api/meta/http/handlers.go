// Package http serves /meta: liveness, readiness, build info and the program
// catalogue
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"immiwatch/internal/core/programs"
	"immiwatch/internal/core/version"
	"immiwatch/internal/modkit/httpkit"
)

const probeTimeout = 2 * time.Second

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(context.Context) error
}

// Backend is one readiness probe target. A nil Conn means the backend is
// disabled and reports skipped
type Backend struct {
	Name string
	Conn any
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Backends    []Backend
	// nil means programs.Default()
	Programs *programs.Catalogue
	Now      func() time.Time
}

type handlers struct {
	Deps
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Programs == nil {
		d.Programs = programs.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handlers{Deps: d}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/programs", h.programs)
}

// HealthResponse is the liveness payload
// swagger:model
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"immiwatch-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Now     string `json:"now"     example:"2025-09-03T13:05:00Z"`
}

// Probe statuses
const (
	ProbeOK      = "ok"
	ProbeFail    = "fail"
	ProbeSkipped = "skipped"
	ProbeUnknown = "unknown"
)

// ReadyCheck is one backend probe
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
}

// ReadyResponse is ok, degraded (a backend cannot be probed) or fail
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2025-09-03T13:05:00Z"`
}

// ServiceResponse reports uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name"    example:"immiwatch-api"`
	Started string `json:"started" example:"2025-09-03T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

// ProgramResponse is one catalogue entry
type ProgramResponse struct {
	Code  string `json:"code"  example:"healthcare"`
	Class string `json:"class" example:"category"`
	Name  string `json:"name"  example:"Healthcare and social services occupations"`
	Short string `json:"short" example:"Healthcare"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// swagger:route GET /meta/health Meta metaHealth
// @Summary Health check
// @Tags Meta
// @Produce json
// @Success 200 type HealthResponse "ok"
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.ServiceName, Started: stamp(h.StartedAt), Now: stamp(h.Now())}, nil
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Readiness probe with dependency checks
// @Tags Meta
// @Produce json
// @Success 200 type ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	checks := make([]ReadyCheck, len(h.Backends))
	var wg sync.WaitGroup
	for i, b := range h.Backends {
		wg.Go(func() { checks[i] = probe(ctx, b) })
	}
	wg.Wait()

	return ReadyResponse{Status: overall(checks), Checks: checks, Now: stamp(h.Now())}, nil
}

func probe(ctx context.Context, b Backend) ReadyCheck {
	c := ReadyCheck{Name: b.Name, Status: ProbeUnknown}
	switch conn := b.Conn.(type) {
	case nil:
		c.Status = ProbeSkipped
	case Pinger:
		c.Status = ProbeOK
		if err := conn.Ping(ctx); err != nil {
			c.Status, c.Error = ProbeFail, err.Error()
		}
	}
	return c
}

// overall ranks fail over degraded over ok; skipped backends count as ok
func overall(checks []ReadyCheck) string {
	out := ProbeOK
	for _, c := range checks {
		switch c.Status {
		case ProbeFail:
			return ProbeFail
		case ProbeUnknown:
			out = "degraded"
		}
	}
	return out
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 type version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	info := version.Info()
	if h.ServiceName != "" {
		info.Service = h.ServiceName
	}
	return info, nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 type ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.ServiceName,
		Started: stamp(h.StartedAt),
		Uptime:  int64(h.Now().Sub(h.StartedAt) / time.Second),
	}, nil
}

// swagger:route GET /meta/programs Meta metaPrograms
// @Summary Program catalogue used to classify draws
// @Tags Meta
// @Produce json
// @Success 200 type []ProgramResponse ok
// @Router /meta/programs [get]
func (h *handlers) programs(_ *http.Request) (any, error) {
	entries := h.Programs.Entries()
	out := make([]ProgramResponse, len(entries))
	for i, e := range entries {
		out[i] = ProgramResponse{Code: string(e.Code), Class: string(e.Class), Name: e.Name, Short: e.Short}
	}
	return out, nil
}
