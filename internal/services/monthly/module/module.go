// Package module wires the monthly report service into the API using modkit
package module

import (
	"context"

	"immiwatch/internal/adapters/notify/slack"
	"immiwatch/internal/core/programs"
	modkit "immiwatch/internal/modkit"
	"immiwatch/internal/modkit/httpkit"
	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/logger"

	"immiwatch/internal/services/monthly/domain"
	"immiwatch/internal/services/monthly/engine"
	mhttp "immiwatch/internal/services/monthly/http"
	"immiwatch/internal/services/monthly/repo"
	"immiwatch/internal/services/monthly/service"
)

// Module implements the monthly API module
type Module struct {
	modkit.Built
	svc    *service.Service
	routes func(httpkit.Router)
}

// Ports is what other modules and commands consume
type Ports struct {
	Service domain.ServicePort
	Ingest  domain.IngestPort
}

// New constructs the monthly module from deps.Cfg; construction failures panic
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("monthly"),
		modkit.WithPrefix("/monthly"),
	}, opts...)...)

	o := FromConfig(deps.Cfg)
	svc, err := Build(context.Background(), deps, o)
	if err != nil {
		panic("monthly module: " + err.Error())
	}

	auth := httpkit.NewSecretPort(o.WebhookSecret, domain.SourceWebhook)
	return &Module{
		Built: b,
		svc:   svc,
		routes: func(r httpkit.Router) {
			mhttp.Register(r, mhttp.Deps{Svc: svc, Auth: auth})
		},
	}
}

// Build assembles the service: the file or Postgres store, the report
// dispatcher, the ClickHouse ledger when deps.CH is set and Slack when a
// webhook URL is configured
func Build(ctx context.Context, deps modkit.Deps, o Options) (*service.Service, error) {
	log := logger.Named("monthly")
	cat := programs.Default()
	eng := engine.New(cat, engine.WithSequenceGuard(o.SequenceGuard))

	var (
		buckets domain.BucketRepo
		pointer domain.PointerRepo
	)
	switch o.Store {
	case StorePG:
		if deps.PG == nil {
			return nil, perr.Newf(perr.ErrorCodeUnavailable, "monthly store is pg but SERVICE_PGSQL is disabled")
		}
		if err := repo.EnsureSchema(ctx, deps.PG); err != nil {
			return nil, err
		}
		pg := repo.NewPG(deps.PG)
		buckets, pointer = pg, pg
	default:
		fs, err := repo.NewFileStore(o.DataDir)
		if err != nil {
			return nil, err
		}
		buckets, pointer = fs, fs
	}

	svcOpts := []service.Option{service.WithMetrics(deps.Metrics)}
	if deps.CH != nil {
		l := repo.NewLedgerCH(deps.CH)
		if err := l.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		svcOpts = append(svcOpts, service.WithLedger(l))
	}
	if c := slack.New(slack.Options{WebhookURL: o.SlackWebhookURL, Timeout: o.NotifyTimeout}); c != nil {
		svcOpts = append(svcOpts, service.WithNotifier(slackNotifier{c: c}))
	}

	log.Info().
		Str("store", o.Store).
		Str("output_dir", o.OutputDir).
		Str("location", o.Location.String()).
		Bool("sequence_guard", o.SequenceGuard).
		Bool("ledger", deps.CH != nil).
		Bool("slack", o.SlackWebhookURL != "").
		Msg("monthly service ready")

	return service.New(buckets, pointer, eng, service.NewDispatcher(o.OutputDir, o.SiteURL, cat), service.Config{
		SaveRetries:    o.SaveRetries,
		TransitionHour: o.TransitionHour,
		Location:       o.Location,
		SiteURL:        o.SiteURL,
		OutputDir:      o.OutputDir,
		NotifyTimeout:  o.NotifyTimeout,
	}, svcOpts...), nil
}

// slackNotifier adapts the Slack client to domain.Notifier
type slackNotifier struct{ c *slack.Client }

func (s slackNotifier) Notify(ctx context.Context, sum domain.MergeSummary) error {
	return s.c.Post(ctx, slack.Draw{
		DrawType:    sum.Event.Label,
		Invitations: sum.Event.Invitations,
		CRS:         sum.Event.MinimumScore,
		Sequence:    sum.Event.Sequence,
		Month:       sum.DisplayName,
		MonthTotal:  sum.TotalInvitations,
		DrawCount:   sum.EventCount,
		ReportURL:   sum.ReportURL,
	})
}

// MountRoutes mounts the monthly routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) { m.Mount(r, m.routes) }

// Ports returns the service ports for cross-module wiring
func (m *Module) Ports() any { return Ports{Service: m.svc, Ingest: m.svc} }

// Service exposes the concrete service for commands that drain it on shutdown
func (m *Module) Service() *service.Service { return m.svc }
