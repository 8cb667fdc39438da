package service

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"immiwatch/internal/platform/testkit"
	"immiwatch/internal/services/monthly/domain"
	"immiwatch/internal/services/monthly/engine"
	"immiwatch/internal/services/monthly/period"
	"immiwatch/internal/services/monthly/repo"
)

const site = "https://immiwatch.ca"

type harness struct {
	svc   *Service
	fs    *repo.FileStore
	clock *testkit.Clock
	out   string
	notes *recNotifier
}

func newHarness(t *testing.T, now string, opts ...Option) *harness {
	t.Helper()
	fs, err := repo.NewFileStore(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("NewFileStore err = %v", err)
	}
	h := &harness{
		fs:    fs,
		clock: testkit.NewClock(testkit.At(t, now)),
		out:   filepath.Join(t.TempDir(), "reports"),
		notes: &recNotifier{},
	}
	eng := engine.New(nil)
	base := []Option{WithClock(h.clock.Now), WithNotifier(h.notes)}
	h.svc = New(fs, fs, eng, NewDispatcher(h.out, site, eng.Catalogue()), Config{
		SaveRetries: 3,
		RetryBase:   time.Millisecond,
		SiteURL:     site,
		OutputDir:   h.out,
	}, append(base, opts...)...)
	t.Cleanup(h.svc.Wait)
	return h
}

func flat(m map[string]any) domain.RawPayload { return domain.FlatPayload{Fields: m} }

func pnpAug5() domain.RawPayload {
	return flat(map[string]any{
		"date": "2025-08-05", "invitations": "3,000", "crs_score": 475, "program": "Provincial Nominee Program",
	})
}

func healthAug10() domain.RawPayload {
	return domain.EnvelopedPayload{Body: map[string]any{
		"Program": "EE-Health", "Invitation": 4500, "Score": 470,
		"draw.date.most.recent": "2025-08-10", "Draw Number": "361",
	}}
}

type recNotifier struct {
	mu  sync.Mutex
	got []domain.MergeSummary
	err error
}

func (r *recNotifier) Notify(_ context.Context, s domain.MergeSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, s)
	return r.err
}

func (r *recNotifier) summaries() []domain.MergeSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.MergeSummary(nil), r.got...)
}

// flakyBuckets fails the first len(fails) saves with the given errors
type flakyBuckets struct {
	domain.BucketRepo
	fails []error
	saves int32
}

func (f *flakyBuckets) Save(ctx context.Context, b domain.MonthBucket) (domain.MonthBucket, error) {
	n := int(atomic.AddInt32(&f.saves, 1))
	if n <= len(f.fails) {
		return domain.MonthBucket{}, f.fails[n-1]
	}
	return f.BucketRepo.Save(ctx, b)
}

type failingRenderer struct{ err error }

func (f failingRenderer) Regenerate(context.Context, domain.MonthBucket) (domain.Artifact, error) {
	return domain.Artifact{}, f.err
}

type recLedger struct {
	mu  sync.Mutex
	ids []string
}

func (r *recLedger) Archive(_ context.Context, bucketID string, e domain.DrawEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, bucketID+"/"+e.ID)
	return nil
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	return loc
}

func mustPeriod(t *testing.T, id string) domain.Period {
	t.Helper()
	p, err := period.ParseBucketID(id)
	if err != nil {
		t.Fatalf("ParseBucketID(%s) err = %v", id, err)
	}
	return p
}

// movingPointer runs move once, right after the first Get has been served
type movingPointer struct {
	domain.PointerRepo
	once sync.Once
	move func()
}

func (m *movingPointer) Get(ctx context.Context) (domain.Pointer, bool, error) {
	p, ok, err := m.PointerRepo.Get(ctx)
	m.once.Do(m.move)
	return p, ok, err
}
