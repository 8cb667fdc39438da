package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"immiwatch/internal/platform/logger"
	"immiwatch/internal/services/monthly/domain"
	"immiwatch/internal/services/monthly/period"
)

// GetCurrent returns the designated bucket, creating and designating the
// month of now when nothing is designated yet. A set pointer is returned as is
func (s *Service) GetCurrent(ctx context.Context) (domain.Pointer, error) {
	if p, ok, err := s.Pointer.Get(ctx); err != nil || ok {
		return p, err
	}
	v, err, _ := s.designer.Do("designate", func() (any, error) {
		if p, ok, err := s.Pointer.Get(ctx); err != nil || ok {
			return p, err
		}
		now := s.local()
		per := period.Resolve(now)
		if _, _, err := s.ensureBucket(ctx, per); err != nil {
			return domain.Pointer{}, err
		}
		p, won, err := s.designate(ctx, 0, per, now)
		if won {
			logger.C(ctx).Info().Str("mod", "monthly").Str("bucket", p.BucketID).Msg("monthly: designated current bucket")
		}
		return p, err
	})
	p, _ := v.(domain.Pointer)
	return p, err
}

// CreateCurrent makes sure the month of now exists and is designated
func (s *Service) CreateCurrent(ctx context.Context) (domain.CreateResult, error) {
	now := s.local()
	per := period.Resolve(now)
	cur, ok, err := s.Pointer.Get(ctx)
	if err != nil {
		return domain.CreateResult{}, err
	}
	_, created, err := s.ensureBucket(ctx, per)
	if err != nil {
		return domain.CreateResult{}, err
	}
	if ok && cur.BucketID == per.BucketID {
		return domain.CreateResult{Pointer: cur, Created: created, AlreadyCurrent: !created}, nil
	}
	var expected int64
	if ok {
		expected = cur.Version
	}
	p, won, err := s.designate(ctx, expected, per, now)
	if err != nil {
		return domain.CreateResult{}, err
	}
	return domain.CreateResult{Pointer: p, Created: created, AlreadyCurrent: !won && !created}, nil
}

// CheckTransition moves the pointer to the upcoming month during the first
// TransitionHour hours of day one. Every outcome is a result, not an error
func (s *Service) CheckTransition(ctx context.Context, now time.Time) (domain.TransitionResult, error) {
	now = now.In(s.Cfg.Location)
	l := logger.C(ctx).With().Str("mod", "monthly").Time("at", now).Logger()
	if now.Day() != 1 || now.Hour() >= s.Cfg.TransitionHour {
		s.Metrics.Transition(string(domain.TransitionNotInWindow))
		return domain.TransitionResult{Kind: domain.TransitionNotInWindow}, nil
	}

	up := period.ResolveUpcoming(now)
	cur, ok, err := s.Pointer.Get(ctx)
	if err != nil {
		return domain.TransitionResult{}, err
	}
	if ok && cur.BucketID == up.BucketID {
		s.Metrics.Transition(string(domain.TransitionNotNeeded))
		return domain.TransitionResult{Kind: domain.TransitionNotNeeded, From: cur.BucketID, To: up.BucketID, Pointer: &cur}, nil
	}

	if _, _, err := s.ensureBucket(ctx, up); err != nil {
		return domain.TransitionResult{}, err
	}
	var expected int64
	if ok {
		expected = cur.Version
	}
	p, won, err := s.designate(ctx, expected, up, now)
	if err != nil {
		return domain.TransitionResult{}, err
	}
	if won {
		s.Metrics.Transition(string(domain.TransitionApplied))
		l.Info().Str("from", cur.BucketID).Str("to", up.BucketID).Msg("monthly: month transition applied")
		return domain.TransitionResult{Kind: domain.TransitionApplied, From: cur.BucketID, To: up.BucketID, Pointer: &p}, nil
	}
	// another caller moved the pointer first
	s.Metrics.Transition(string(domain.TransitionNotNeeded))
	return domain.TransitionResult{Kind: domain.TransitionNotNeeded, From: p.BucketID, To: up.BucketID, Pointer: &p}, nil
}

// ensureBucket creates the period's bucket when absent and renders it once
func (s *Service) ensureBucket(ctx context.Context, per domain.Period) (domain.MonthBucket, bool, error) {
	b, created, err := s.Buckets.Create(ctx, s.Engine.NewBucket(per, s.Now()))
	if err != nil {
		return domain.MonthBucket{}, false, err
	}
	if created {
		logger.C(ctx).Info().Str("mod", "monthly").Str("bucket", b.ID).Msg("monthly: bucket created")
		if _, rerr := s.Render.Regenerate(ctx, b); rerr != nil {
			s.Metrics.RenderFailed()
			logger.C(ctx).Warn().Str("mod", "monthly").Str("bucket", b.ID).Err(rerr).Msg("monthly: initial render failed")
		}
	}
	return b, created, nil
}

// designate swaps the pointer to per. Losing the race to a caller that
// designated the same bucket returns the winner's pointer with won=false
func (s *Service) designate(ctx context.Context, expected int64, per domain.Period, at time.Time) (p domain.Pointer, won bool, err error) {
	unlock := s.locks.Lock(pointerKey)
	p, err = s.Pointer.CompareAndSet(ctx, expected, s.pointerFor(per, at))
	unlock()
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, domain.ErrVersionConflict) {
		return domain.Pointer{}, false, err
	}
	cur, ok, gerr := s.Pointer.Get(ctx)
	if gerr != nil {
		return domain.Pointer{}, false, gerr
	}
	if ok && cur.BucketID == per.BucketID {
		return cur, false, nil
	}
	return domain.Pointer{}, false, err
}

func (s *Service) pointerFor(per domain.Period, at time.Time) domain.Pointer {
	return domain.Pointer{
		BucketID:     per.BucketID,
		DesignatedAt: at,
		Month:        per.Month,
		ReportURL:    strings.TrimRight(s.Cfg.SiteURL, "/") + "/" + per.Month.URLPath,
		LocalPath:    filepath.Join(s.Cfg.OutputDir, per.Month.Directory, "index.html"),
	}
}
