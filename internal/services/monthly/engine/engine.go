// Package engine folds draw events into month buckets. It is pure: no I/O,
// no clock, inputs are never mutated
package engine

import (
	"maps"
	"slices"
	"time"

	"immiwatch/internal/core/insights"
	"immiwatch/internal/core/programs"
	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/services/monthly/domain"
)

// Option configures an Engine
type Option func(*Engine)

// WithSequenceGuard toggles rejection of replayed draw numbers
func WithSequenceGuard(on bool) Option { return func(e *Engine) { e.guard = on } }

// Engine merges events according to a program catalogue
type Engine struct {
	cat   *programs.Catalogue
	guard bool
}

// New returns an Engine; a nil catalogue means programs.Default(). The
// sequence guard is on unless disabled
func New(cat *programs.Catalogue, opts ...Option) *Engine {
	if cat == nil {
		cat = programs.Default()
	}
	e := &Engine{cat: cat, guard: true}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Catalogue returns the catalogue in use
func (e *Engine) Catalogue() *programs.Catalogue { return e.cat }

// NewBucket returns an empty initialized bucket for p with every known field zeroed
func (e *Engine) NewBucket(p domain.Period, at time.Time) domain.MonthBucket {
	b := domain.MonthBucket{
		ID:            p.BucketID,
		Month:         p.Month,
		Fields:        make(map[domain.ProgramCode]int),
		Status:        domain.StatusInitialized,
		CreatedAt:     at,
		LastUpdatedAt: at,
	}
	for _, en := range e.cat.Entries() {
		b.Fields[en.Code] = 0
	}
	b.Report = e.Report(b)
	return b
}

// Merge returns b with ev folded in. On error the returned bucket is the
// zero value and b is untouched
func (e *Engine) Merge(b domain.MonthBucket, ev domain.DrawEvent, at time.Time) (domain.MonthBucket, error) {
	if ev.Invitations < 0 {
		return domain.MonthBucket{}, perr.WithField(perr.Wrapf(domain.ErrInvalidEvent, perr.ErrorCodeInvalidArgument,
			"negative invitations %d", ev.Invitations), "invitations")
	}
	if e.guard && ev.Sequence != nil && b.LastMerged != nil && b.LastMerged.Sequence != nil &&
		*ev.Sequence <= *b.LastMerged.Sequence {
		return domain.MonthBucket{}, perr.Wrapf(domain.ErrDuplicateEvent, perr.ErrorCodeConflict,
			"draw %d already merged (last %d)", *ev.Sequence, *b.LastMerged.Sequence)
	}

	out := b.Clone()
	code := e.cat.Resolve(ev.Program)

	out.Fields[code] += ev.Invitations
	out.TotalInvitations += ev.Invitations
	if e.cat.ClassOf(code) == programs.ClassCategory {
		out.CategoryBasedSubtotal += ev.Invitations
	}
	out.EventCount++

	lm := domain.LastMerged{Date: ev.OccurredOn, Score: ev.MinimumScore}
	if ev.Sequence != nil {
		s := *ev.Sequence
		lm.Sequence = &s
	}
	out.LastMerged = &lm
	out.LastUpdatedAt = at
	if out.Status == domain.StatusInitialized || out.Status == "" {
		out.Status = domain.StatusActive
	}
	out.Report = e.Report(out)
	return out, nil
}

// Verify checks the sum invariants: every field adds up to the total and the
// category fields add up to the category subtotal
func (e *Engine) Verify(b domain.MonthBucket) error {
	var all, cat int
	for code, n := range b.Fields {
		if n < 0 {
			return perr.Wrapf(domain.ErrCorrupt, perr.ErrorCodeDB, "%s: field %s is negative", b.ID, code)
		}
		all += n
		if e.cat.ClassOf(code) == programs.ClassCategory {
			cat += n
		}
	}
	if all != b.TotalInvitations {
		return perr.Wrapf(domain.ErrCorrupt, perr.ErrorCodeDB, "%s: fields sum %d, total %d", b.ID, all, b.TotalInvitations)
	}
	if cat != b.CategoryBasedSubtotal {
		return perr.Wrapf(domain.ErrCorrupt, perr.ErrorCodeDB, "%s: category fields sum %d, subtotal %d", b.ID, cat, b.CategoryBasedSubtotal)
	}
	return nil
}

// Report regenerates the narrative from b's totals
func (e *Engine) Report(b domain.MonthBucket) domain.Report {
	r := insights.Build(Totals(b))
	return domain.Report{
		ExecutiveSummary:  r.ExecutiveSummary,
		StrategicInsights: r.StrategicInsights,
		KeyHighlights:     r.KeyHighlights,
	}
}

// Totals projects a bucket onto the inputs of the insights package
func Totals(b domain.MonthBucket) insights.Totals {
	t := insights.Totals{
		Year:     b.Month.Year,
		Month:    time.Month(b.Month.Month),
		Total:    b.TotalInvitations,
		CEC:      b.Fields[programs.CEC],
		PNP:      b.Fields[programs.PNP],
		Category: b.CategoryBasedSubtotal,
		Events:   b.EventCount,
	}
	if b.LastMerged != nil {
		t.LatestScore = b.LastMerged.Score
	}
	return t
}

// Expand turns a manual per-field update into one event per non-zero field,
// in catalogue order
func (e *Engine) Expand(u domain.ManualUpdate, date time.Time) []domain.DrawEvent {
	var out []domain.DrawEvent
	for _, en := range e.cat.Entries() {
		n, ok := u.Fields[en.Code]
		if !ok || n == 0 {
			continue
		}
		out = append(out, domain.DrawEvent{
			OccurredOn:   date,
			Program:      en.Code,
			Label:        en.Name,
			Invitations:  n,
			MinimumScore: u.MinimumScore,
		})
	}
	for _, code := range slices.Sorted(maps.Keys(u.Fields)) {
		n := u.Fields[code]
		if _, known := e.cat.Lookup(code); known || n == 0 {
			continue
		}
		out = append(out, domain.DrawEvent{
			OccurredOn:   date,
			Program:      e.cat.Fallback(),
			Label:        string(code),
			Invitations:  n,
			MinimumScore: u.MinimumScore,
		})
	}
	return out
}
