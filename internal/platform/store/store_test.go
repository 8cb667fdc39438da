package store

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	perr "immiwatch/internal/platform/errors"

	"github.com/rs/zerolog"
)

// fakeTx satisfies TxRunner, and Pinger through ping
type fakeTx struct{ pingErr error }

func (f *fakeTx) Tx(ctx context.Context, fn func(q RowQuerier) error) error { return fn(f) }
func (f *fakeTx) Exec(context.Context, string, ...any) (CommandTag, error)  { return nil, nil }
func (f *fakeTx) Query(context.Context, string, ...any) (Rows, error)       { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) Row              { return nil }

type pingTx struct{ fakeTx }

func (p *pingTx) Ping(context.Context) error { return p.pingErr }

func TestOpen(t *testing.T) {
	t.Parallel()

	s, err := Open(context.Background(), Config{AppName: "api"}, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("Open err = %v", err)
	}
	if s.PG != nil || s.CH != nil {
		t.Fatalf("backends set: PG=%T CH=%T", s.PG, s.CH)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close err = %v", err)
	}

	if s, err := Open(context.Background(), Config{PG: PGConfig{Enabled: true, URL: "://bad"}}); err == nil || s != nil {
		t.Fatalf("bad pg url: store=%v err=%v", s, err)
	}
	if _, err := Open(context.Background(), Config{CH: CHConfig{Enabled: true}}); err == nil {
		t.Fatal("empty ch url should fail")
	}

	boom := errors.New("boom")
	if _, err := Open(context.Background(), Config{}, func(*Store) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("option err = %v, want boom", err)
	}
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.New(&buf)))
	if err != nil {
		t.Fatal(err)
	}
	s.Log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("log output = %q", buf.String())
	}
}

func TestGuard(t *testing.T) {
	t.Parallel()

	var nilStore *Store
	if perr.CodeOf(nilStore.Guard(context.Background())) != perr.ErrorCodeUnavailable {
		t.Fatal("nil store should be unavailable")
	}

	cases := []struct {
		name string
		s    *Store
		want []string
	}{
		{"no backends", &Store{}, nil},
		{"pg without ping", &Store{PG: &fakeTx{}}, nil},
		{"pg ok", &Store{PG: &pingTx{}}, nil},
		{"pg down", &Store{PG: &pingTx{fakeTx{pingErr: errors.New("refused")}}}, []string{"pg", "refused"}},
		{"both down", &Store{
			PG: &pingTx{fakeTx{pingErr: errors.New("pg down")}},
			CH: chStore{&fakeCH{pingErr: errors.New("ch down")}},
		}, []string{"pg down", "ch down"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.Guard(context.Background())
			if len(tc.want) == 0 {
				if err != nil {
					t.Fatalf("Guard = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected an error")
			}
			for _, w := range tc.want {
				if !strings.Contains(err.Error(), w) {
					t.Fatalf("Guard = %q, missing %q", err, w)
				}
			}
		})
	}
}

func TestClose_JoinsBackendErrors(t *testing.T) {
	t.Parallel()

	chErr := errors.New("ch close")
	s := &Store{CH: chStore{&fakeCH{closeErr: chErr}}, PG: &fakeTx{}}
	if err := s.Close(context.Background()); !errors.Is(err, chErr) {
		t.Fatalf("Close err = %v, want ch close", err)
	}
}
