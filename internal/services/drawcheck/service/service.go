// Package service polls the rounds feed and forwards new draws to the
// monthly aggregate
package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"immiwatch/internal/platform/logger"
	"immiwatch/internal/services/drawcheck/domain"
	monthly "immiwatch/internal/services/monthly/domain"
)

// Svc checks the feed against the persisted high-water mark
type Svc struct {
	Feed   domain.Feed
	State  domain.StateRepo
	Ingest monthly.IngestPort
	Now    func() time.Time
}

// New wires a checker; every dependency is required
func New(feed domain.Feed, state domain.StateRepo, ingest monthly.IngestPort) *Svc {
	if feed == nil || state == nil || ingest == nil {
		panic("drawcheck: feed, state and ingest are required")
	}
	return &Svc{Feed: feed, State: state, Ingest: ingest, Now: time.Now}
}

// Check fetches the latest round and ingests it when it is newer than the
// last one seen. The mark only advances after the monthly merge succeeds
func (s *Svc) Check(ctx context.Context) (domain.Result, error) {
	var (
		round domain.Round
		last  domain.LastSeen
		seen  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		round, err = s.Feed.Latest(gctx)
		return err
	})
	g.Go(func() (err error) {
		last, seen, err = s.State.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Result{}, err
	}

	l := logger.C(ctx).With().Str("mod", "drawcheck").Int("draw", round.Number).Int("previous", last.DrawNumber).Logger()
	res := domain.Result{Round: round, Previous: last.DrawNumber}
	if seen && round.Number <= last.DrawNumber {
		l.Debug().Msg("no new draw")
		res.Kind = domain.NoNewDraw
		return res, nil
	}

	out, err := s.Ingest.Ingest(ctx, Payload(round), monthly.SourceFeed)
	switch {
	case errors.Is(err, monthly.ErrDuplicateEvent):
		l.Info().Msg("draw already merged, advancing mark")
		res.Kind = domain.AlreadyMerged
	case err != nil:
		l.Error().Err(err).Msg("ingest failed, mark unchanged")
		return res, err
	default:
		l.Info().Str("bucket", out.Bucket.ID).Int("invitations", out.Event.Invitations).Msg("draw ingested")
		res.Kind = domain.Ingested
		res.Outcome = &out
	}

	if err := s.State.Put(ctx, domain.LastSeen{
		DrawNumber: round.Number,
		DrawDate:   round.DateFull,
		DrawName:   round.Name,
		CheckedAt:  s.Now().UTC(),
	}); err != nil {
		return res, err
	}
	return res, nil
}

// Run calls Check every interval until ctx ends; failures are logged and the
// next tick tries again
func (s *Svc) Run(ctx context.Context, every time.Duration) error {
	log := logger.Named("drawcheck")
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		if res, err := s.Check(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn().Err(err).Msg("draw check failed")
		} else {
			log.Info().Str("kind", string(res.Kind)).Int("draw", res.Round.Number).Msg("draw check done")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Payload maps a feed round onto the flat webhook shape
func Payload(r domain.Round) monthly.RawPayload {
	return monthly.FlatPayload{Fields: map[string]any{
		"date":        r.DateFull,
		"invitations": r.Size,
		"crs_score":   r.CRS,
		"program":     r.Name,
		"draw_number": r.Number,
	}}
}
