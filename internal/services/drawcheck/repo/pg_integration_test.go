//go:build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	"immiwatch/internal/platform/store/pgtest"
	"immiwatch/internal/services/drawcheck/domain"
)

func TestPGState_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s := NewPG(pgtest.Open(t).PG)
	for range 2 {
		if err := s.EnsureSchema(ctx); err != nil {
			t.Fatalf("EnsureSchema err = %v", err)
		}
	}

	if _, ok, err := s.Get(ctx); err != nil || ok {
		t.Fatalf("Get empty = ok %v err %v", ok, err)
	}

	at := time.Date(2025, 8, 10, 15, 0, 0, 0, time.UTC)
	for _, n := range []int{361, 362} {
		if err := s.Put(ctx, domain.LastSeen{DrawNumber: n, DrawName: "CEC", CheckedAt: at}); err != nil {
			t.Fatalf("Put %d err = %v", n, err)
		}
	}
	got, ok, err := s.Get(ctx)
	if err != nil || !ok {
		t.Fatalf("Get = ok %v err %v", ok, err)
	}
	if got.DrawNumber != 362 || got.DrawName != "CEC" || !got.CheckedAt.Equal(at) {
		t.Fatalf("Get = %+v", got)
	}
}
