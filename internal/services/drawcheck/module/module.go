// Package module wires the rounds feed poller and exposes its check route
package module

import (
	"context"

	"immiwatch/internal/adapters/ingest/ircc"
	modkit "immiwatch/internal/modkit"
	"immiwatch/internal/modkit/httpkit"
	perr "immiwatch/internal/platform/errors"

	"immiwatch/internal/services/drawcheck/domain"
	dhttp "immiwatch/internal/services/drawcheck/http"
	"immiwatch/internal/services/drawcheck/repo"
	"immiwatch/internal/services/drawcheck/service"
	monthly "immiwatch/internal/services/monthly/domain"
	monthlymod "immiwatch/internal/services/monthly/module"
)

// Store backends follow the monthly module
const (
	StoreFile = monthlymod.StoreFile
	StorePG   = monthlymod.StorePG
)

// Module implements the drawcheck API module
type Module struct {
	modkit.Built
	svc    *service.Svc
	routes func(httpkit.Router)
}

// Ports declares the injected monthly port this module forwards draws to
type Ports struct {
	Ingest monthly.IngestPort
}

// New constructs the drawcheck module; the Ingest port must be injected
// with modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("drawcheck"),
		modkit.WithPrefix("/drawcheck"),
	}, opts...)...)

	injected, _ := b.Injected().(Ports)
	if injected.Ingest == nil {
		panic("drawcheck module requires the Ingest port (from services/monthly)")
	}

	o := FromConfig(deps.Cfg)
	svc, err := Build(context.Background(), deps, o, injected.Ingest)
	if err != nil {
		panic("drawcheck module: " + err.Error())
	}

	auth := httpkit.NewSecretPort(o.WebhookSecret, monthly.SourceFeed)
	return &Module{
		Built: b,
		svc:   svc,
		routes: func(r httpkit.Router) {
			dhttp.Register(r, dhttp.Deps{Checker: svc, State: svc.State, Auth: auth})
		},
	}
}

// Build assembles the checker over the IRCC feed and the configured state store
func Build(ctx context.Context, deps modkit.Deps, o Options, ingest monthly.IngestPort) (*service.Svc, error) {
	var state domain.StateRepo
	switch o.Store {
	case StorePG:
		if deps.PG == nil {
			return nil, perr.Newf(perr.ErrorCodeUnavailable, "drawcheck store is pg but SERVICE_PGSQL is disabled")
		}
		pg := repo.NewPG(deps.PG)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		state = pg
	default:
		fs, err := repo.NewFileState(o.DataDir)
		if err != nil {
			return nil, err
		}
		state = fs
	}

	feed := feedAdapter{f: ircc.New(ircc.Options{
		FeedURL:   o.FeedURL,
		Timeout:   o.FetchTimeout,
		UserAgent: o.UserAgent,
	})}
	return service.New(feed, state, ingest), nil
}

// feedAdapter maps the wire round to the domain round
type feedAdapter struct{ f *ircc.Fetcher }

func (a feedAdapter) Latest(ctx context.Context) (domain.Round, error) {
	r, err := a.f.Latest(ctx)
	if err != nil {
		return domain.Round{}, err
	}
	return domain.Round{
		Number:   r.Number,
		DateFull: r.DateFull,
		Name:     r.Name,
		Size:     r.Size,
		CRS:      r.CRS,
	}, nil
}

// MountRoutes mounts the check and state routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) { m.Mount(r, m.routes) }

// Ports exposes the checker
func (m *Module) Ports() any { return m.svc }

// Checker returns the concrete service for the polling command
func (m *Module) Checker() *service.Svc { return m.svc }
