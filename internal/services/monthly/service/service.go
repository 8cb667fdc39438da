// Package service orchestrates the monthly aggregate: it designates the
// current bucket, merges draw events into it and regenerates the report
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/logger"
	"immiwatch/internal/platform/metrics"
	"immiwatch/internal/services/monthly/domain"
	"immiwatch/internal/services/monthly/engine"
	"immiwatch/internal/services/monthly/guardrails"
	"immiwatch/internal/services/monthly/normalize"
	"immiwatch/internal/services/monthly/period"
)

// Config holds the tunables of the monthly service
type Config struct {
	// Read-modify-write retry
	SaveRetries int           // attempts per merge; <=0 -> 1
	RetryBase   time.Duration // first backoff step; <=0 -> 50ms

	// TransitionHour closes the day-one window; <=0 -> 6
	TransitionHour int

	// Location is the wall clock months are resolved in; nil -> UTC
	Location *time.Location

	// Pointer derived locations
	SiteURL   string
	OutputDir string

	// NotifyTimeout bounds the fire-and-forget notification; <=0 -> 30s
	NotifyTimeout time.Duration
}

// pointerKey serializes merges against pointer moves
const pointerKey = "pointer"

// Service implements domain.ServicePort
type Service struct {
	Buckets  domain.BucketRepo
	Pointer  domain.PointerRepo
	Engine   *engine.Engine
	Norm     *normalize.Normalizer
	Render   domain.Renderer
	Notify   domain.Notifier
	Ledger   domain.Ledger
	Metrics  *metrics.Metrics
	Cfg      Config
	Now      func() time.Time
	NewID    func() string
	locks    guardrails.KeyedMutex
	designer singleflight.Group
	inflight sync.WaitGroup
}

var _ domain.ServicePort = (*Service)(nil)

// Option customizes a Service
type Option func(*Service)

// WithNotifier sets the post-merge notifier
func WithNotifier(n domain.Notifier) Option { return func(s *Service) { s.Notify = n } }

// WithLedger sets the event archive
func WithLedger(l domain.Ledger) Option { return func(s *Service) { s.Ledger = l } }

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.Metrics = m } }

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option { return func(s *Service) { s.Now = now } }

// New constructs the monthly service
func New(
	buckets domain.BucketRepo,
	pointer domain.PointerRepo,
	eng *engine.Engine,
	render domain.Renderer,
	cfg Config,
	opts ...Option,
) *Service {
	if buckets == nil || pointer == nil {
		panic("monthly.Service requires bucket and pointer repos")
	}
	if eng == nil {
		panic("monthly.Service requires an engine")
	}
	if cfg.TransitionHour <= 0 {
		cfg.TransitionHour = 6
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 30 * time.Second
	}
	s := &Service{
		Buckets: buckets,
		Pointer: pointer,
		Engine:  eng,
		Norm:    normalize.New(eng.Catalogue()),
		Render:  render,
		Notify:  nopNotifier{},
		Ledger:  nopLedger{},
		Cfg:     cfg,
		Now:     time.Now,
		NewID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ingest normalizes raw and merges it into the current bucket
func (s *Service) Ingest(ctx context.Context, raw domain.RawPayload, source string) (domain.Outcome, error) {
	ev, err := s.Norm.Normalize(raw)
	if err != nil {
		s.Metrics.IngestFailed("normalize")
		logger.C(ctx).Warn().Str("mod", "monthly").Str("shape", domain.ShapeOf(raw)).
			Str("source", source).Err(err).Msg("monthly: normalize failed")
		return domain.Outcome{}, err
	}
	ev.ID = s.NewID()
	ev.Source = source
	return s.apply(logger.WithEvent(ctx, ev.ID), []domain.DrawEvent{ev})
}

// UpdateCurrent applies an operator update as one event per non-zero field.
// All events land in a single save
func (s *Service) UpdateCurrent(ctx context.Context, u domain.ManualUpdate) (domain.Outcome, error) {
	date := period.Resolve(s.local()).Start
	if u.Date != "" {
		d, err := normalize.ParseDate(u.Date)
		if err != nil {
			return domain.Outcome{}, err
		}
		date = d
	}
	evs := s.Engine.Expand(u, date)
	if len(evs) == 0 {
		return domain.Outcome{}, perr.WithField(
			perr.Wrapf(domain.ErrMissingField, perr.ErrorCodeValidation, "manual update has no non-zero fields"),
			"fields",
		)
	}
	for i := range evs {
		evs[i].ID = s.NewID()
		evs[i].Source = domain.SourceManual
	}
	return s.apply(ctx, evs)
}

// Status lists every bucket and marks the current one
func (s *Service) Status(ctx context.Context) (domain.StatusSummary, error) {
	cur, ok, err := s.Pointer.Get(ctx)
	if err != nil {
		return domain.StatusSummary{}, err
	}
	list, err := s.Buckets.ListAll(ctx)
	if err != nil {
		return domain.StatusSummary{}, err
	}
	out := domain.StatusSummary{Buckets: list}
	if ok {
		out.Current = &cur
		for i := range out.Buckets {
			out.Buckets[i].IsCurrent = out.Buckets[i].ID == cur.BucketID
		}
	}
	return out, nil
}

// Bucket loads one bucket by id
func (s *Service) Bucket(ctx context.Context, id string) (domain.MonthBucket, error) {
	if _, err := period.ParseBucketID(id); err != nil {
		return domain.MonthBucket{}, err
	}
	return s.Buckets.Load(ctx, id)
}

// Wait blocks until in-flight notifications finish
func (s *Service) Wait() { s.inflight.Wait() }

// apply runs the locked read-modify-write for evs against the pointed bucket
func (s *Service) apply(ctx context.Context, evs []domain.DrawEvent) (domain.Outcome, error) {
	last := evs[len(evs)-1]
	l := logger.C(ctx).With().Str("mod", "monthly").Str("label", last.Label).Logger()

	if _, err := s.GetCurrent(ctx); err != nil {
		s.Metrics.IngestFailed("designate")
		l.Error().Err(err).Msg("monthly: resolve current bucket failed")
		return domain.Outcome{Event: last}, err
	}

	unlock := s.locks.Lock(pointerKey)
	defer unlock()

	// read under the lock so a transition cannot land between the read and the save
	ptr, ok, err := s.Pointer.Get(ctx)
	if err == nil && !ok {
		err = perr.Wrap(domain.ErrPersistence, perr.ErrorCodeUnavailable, "current bucket pointer vanished")
	}
	if err != nil {
		s.Metrics.IngestFailed("designate")
		l.Error().Err(err).Msg("monthly: resolve current bucket failed")
		return domain.Outcome{Event: last}, err
	}
	l = l.With().Str("bucket", ptr.BucketID).Logger()
	for _, ev := range evs {
		if got := period.Resolve(ev.OccurredOn).BucketID; got != ptr.BucketID {
			l.Warn().Str("event_month", got).Str("reason", "month_mismatch").
				Msg("monthly: event month differs from current bucket, merging into current")
		}
	}

	start := s.Now()
	var saved domain.MonthBucket
	policy := guardrails.Policy{Attempts: s.Cfg.SaveRetries, Base: s.Cfg.RetryBase}
	err = guardrails.Retry(ctx, policy, retryable, func(attempt int) error {
		b, err := s.loadOrCreate(ctx, ptr)
		if err != nil {
			return err
		}
		for _, ev := range evs {
			if b, err = s.Engine.Merge(b, ev, s.Now()); err != nil {
				return err
			}
		}
		saved, err = s.Buckets.Save(ctx, b)
		if err != nil && attempt < policy.Attempts-1 && retryable(err) {
			l.Debug().Int("attempt", attempt+1).Err(err).Msg("monthly: save lost, retrying")
		}
		return err
	})
	if err != nil {
		s.Metrics.IngestFailed(failureReason(err))
		l.Error().Str("event", last.ID).Str("program", string(last.Program)).Err(err).Msg("monthly: merge failed")
		return domain.Outcome{Event: last}, err
	}
	took := s.Now().Sub(start)
	for _, ev := range evs {
		s.Metrics.Merged(string(s.Engine.Catalogue().Resolve(ev.Program)), took)
		l.Info().Str("event", ev.ID).Str("program", string(ev.Program)).Int("invitations", ev.Invitations).
			Int("total", saved.TotalInvitations).Msg("monthly: merged")
	}

	out := domain.Outcome{Event: last, Bucket: saved}
	if art, rerr := s.Render.Regenerate(ctx, saved); rerr != nil {
		out.Degraded = true
		out.RenderError = rerr.Error()
		s.Metrics.RenderFailed()
		l.Warn().Err(rerr).Msg("monthly: render failed, aggregate kept")
	} else {
		out.Artifact = &art
	}

	for _, ev := range evs {
		if aerr := s.Ledger.Archive(ctx, saved.ID, ev); aerr != nil {
			l.Warn().Str("event", ev.ID).Err(aerr).Msg("monthly: ledger archive failed")
		}
	}

	s.notifyAsync(ctx, domain.MergeSummary{
		Event:                 last,
		BucketID:              saved.ID,
		DisplayName:           saved.Month.DisplayName,
		TotalInvitations:      saved.TotalInvitations,
		CategoryBasedSubtotal: saved.CategoryBasedSubtotal,
		EventCount:            saved.EventCount,
		ReportURL:             ptr.ReportURL,
	})
	return out, nil
}

// loadOrCreate returns the pointed bucket, creating it lazily and refusing
// documents whose sums do not add up
func (s *Service) loadOrCreate(ctx context.Context, ptr domain.Pointer) (domain.MonthBucket, error) {
	b, err := s.Buckets.Load(ctx, ptr.BucketID)
	if errors.Is(err, domain.ErrBucketNotFound) {
		p, pErr := period.ParseBucketID(ptr.BucketID)
		if pErr != nil {
			return domain.MonthBucket{}, pErr
		}
		b, _, err = s.ensureBucket(ctx, p)
	}
	if err != nil {
		return domain.MonthBucket{}, err
	}
	if verr := s.Engine.Verify(b); verr != nil {
		return domain.MonthBucket{}, perr.WithOp(
			perr.Wrap(fmt.Errorf("%w: %w", domain.ErrPersistence, verr), perr.ErrorCodeDB, "corrupt bucket "+b.ID),
			"monthly.load",
		)
	}
	return b, nil
}

func (s *Service) notifyAsync(ctx context.Context, sum domain.MergeSummary) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		nctx, cancel := guardrails.Detached(ctx, s.Cfg.NotifyTimeout)
		defer cancel()
		if err := s.Notify.Notify(nctx, sum); err != nil {
			logger.C(nctx).Warn().Str("mod", "monthly").Str("bucket", sum.BucketID).Err(err).Msg("monthly: notify failed")
		}
	}()
}

func (s *Service) local() time.Time { return s.Now().In(s.Cfg.Location) }

// retryable is true for lost optimistic saves and transient storage errors
func retryable(err error) bool {
	if errors.Is(err, domain.ErrVersionConflict) {
		return true
	}
	return errors.Is(err, domain.ErrPersistence) && perr.Retryable(err)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidEvent):
		return "invalid_event"
	case errors.Is(err, domain.ErrDuplicateEvent):
		return "duplicate"
	case errors.Is(err, domain.ErrVersionConflict):
		return "conflict"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "other"
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.MergeSummary) error { return nil }

type nopLedger struct{}

func (nopLedger) Archive(context.Context, string, domain.DrawEvent) error { return nil }
