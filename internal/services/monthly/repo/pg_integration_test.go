//go:build integration_pg

package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"immiwatch/internal/platform/store/pgtest"
	"immiwatch/internal/services/monthly/domain"
)

func newPGStore(t *testing.T) *PGStore {
	t.Helper()
	s := pgtest.Open(t)
	if err := EnsureSchema(context.Background(), s.PG); err != nil {
		t.Fatalf("EnsureSchema err = %v", err)
	}
	// idempotent
	if err := EnsureSchema(context.Background(), s.PG); err != nil {
		t.Fatalf("second EnsureSchema err = %v", err)
	}
	return NewPG(s.PG)
}

func TestPGStore_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s := newPGStore(t)

	if _, err := s.Load(ctx, "2025-08"); !errors.Is(err, domain.ErrBucketNotFound) {
		t.Fatalf("Load missing err = %v", err)
	}

	// concurrent creates: exactly one wins
	b := newBucket(t, "2025-08")
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		creates int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := s.Create(ctx, b)
			if err != nil {
				t.Errorf("Create err = %v", err)
				return
			}
			if created {
				mu.Lock()
				creates++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if creates != 1 {
		t.Fatalf("creates = %d, want 1", creates)
	}

	cur, err := s.Load(ctx, "2025-08")
	if err != nil || cur.Version != 1 {
		t.Fatalf("Load = v%d, %v", cur.Version, err)
	}
	cur.TotalInvitations, cur.Fields["pnp"] = 3000, 3000
	saved, err := s.Save(ctx, cur)
	if err != nil || saved.Version != 2 {
		t.Fatalf("Save = v%d, %v", saved.Version, err)
	}
	if _, err := s.Save(ctx, cur); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("stale Save err = %v", err)
	}
	if _, err := s.Save(ctx, newBucket(t, "2030-01")); !errors.Is(err, domain.ErrBucketNotFound) {
		t.Fatalf("Save missing err = %v", err)
	}

	if _, _, err := s.Create(ctx, newBucket(t, "2025-07")); err != nil {
		t.Fatalf("Create 2025-07 err = %v", err)
	}
	list, err := s.ListAll(ctx)
	if err != nil || len(list) != 2 || list[0].ID != "2025-07" || list[1].TotalInvitations != 3000 {
		t.Fatalf("ListAll = %+v, %v", list, err)
	}

	// pointer
	if _, ok, err := s.Get(ctx); ok || err != nil {
		t.Fatalf("Get empty = %v, %v", ok, err)
	}
	p, err := s.CompareAndSet(ctx, 0, domain.Pointer{BucketID: "2025-07", DesignatedAt: time.Now().UTC()})
	if err != nil || p.Version != 1 {
		t.Fatalf("CAS 0 = %+v, %v", p, err)
	}
	if _, err := s.CompareAndSet(ctx, 0, domain.Pointer{BucketID: "2025-08", DesignatedAt: time.Now().UTC()}); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("CAS 0 again err = %v", err)
	}
	if _, err := s.CompareAndSet(ctx, 1, domain.Pointer{BucketID: "2025-08", DesignatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CAS 1 err = %v", err)
	}
	got, ok, err := s.Get(ctx)
	if err != nil || !ok || got.BucketID != "2025-08" || got.Version != 2 {
		t.Fatalf("Get = %+v, %v, %v", got, ok, err)
	}

	// the pointer may lead the bucket it names
	if _, err := s.CompareAndSet(ctx, 2, domain.Pointer{BucketID: "2031-01", DesignatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("CAS to missing bucket err = %v", err)
	}
	if _, err := s.Load(ctx, "2031-01"); !errors.Is(err, domain.ErrBucketNotFound) {
		t.Fatalf("Load 2031-01 err = %v, want ErrBucketNotFound", err)
	}
}
