package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type cmdTag int64

func (c cmdTag) String() string      { return "UPDATE" }
func (c cmdTag) RowsAffected() int64 { return int64(c) }

type fakeRows struct {
	data   [][]any
	i      int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	for i := range dest {
		ok := false
		switch d := dest[i].(type) {
		case *string:
			*d, ok = row[i].(string)
		case *int64:
			*d, ok = row[i].(int64)
		}
		if !ok {
			return errors.New("unsupported dest")
		}
	}
	return nil
}
func (r *fakeRows) Err() error        { return r.err }
func (r *fakeRows) Close()            { r.closed = true }
func (r *fakeRows) Columns() []string { return nil }

type fakeQuerier struct {
	tag  cmdTag
	rows *fakeRows
	err  error
}

func (f *fakeQuerier) Exec(context.Context, string, ...any) (CommandTag, error) {
	return f.tag, f.err
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (Rows, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) Row {
	f.rows.Next()
	return f.rows
}

type pair struct {
	ID string
	N  int64
}

func scanPair(r Row) (pair, error) {
	var p pair
	err := r.Scan(&p.ID, &p.N)
	return p, err
}

func TestAffected(t *testing.T) {
	t.Parallel()

	n, err := Affected(context.Background(), &fakeQuerier{tag: 0}, "UPDATE x SET y = 1 WHERE version = 3")
	if err != nil || n != 0 {
		t.Fatalf("Affected = %d, %v; want 0, nil", n, err)
	}

	boom := errors.New("boom")
	if _, err := Affected(context.Background(), &fakeQuerier{err: boom}, "UPDATE"); !errors.Is(err, boom) {
		t.Fatalf("Affected err = %v, want boom", err)
	}
}

func TestScalar(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: &fakeRows{data: [][]any{{int64(42)}}}}
	got, err := Scalar[int64](context.Background(), q, "SELECT 42")
	if err != nil || got != 42 {
		t.Fatalf("Scalar = %d, %v; want 42", got, err)
	}
}

func TestOne(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	rows := &fakeRows{data: [][]any{{"2025-08", int64(3)}}}
	got, err := One(ctx, &fakeQuerier{rows: rows}, scanPair, "SELECT")
	if err != nil {
		t.Fatalf("One err = %v", err)
	}
	if diff := cmp.Diff(pair{"2025-08", 3}, got); diff != "" {
		t.Fatalf("One mismatch (-want +got):\n%s", diff)
	}
	if !rows.closed {
		t.Fatalf("rows not closed")
	}

	if _, err := One(ctx, &fakeQuerier{rows: &fakeRows{}}, scanPair, "SELECT"); !errors.Is(err, ErrNoRows) {
		t.Fatalf("empty err = %v, want ErrNoRows", err)
	}

	two := &fakeRows{data: [][]any{{"a", int64(1)}, {"b", int64(2)}}}
	if _, err := One(ctx, &fakeQuerier{rows: two}, scanPair, "SELECT"); !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("two rows err = %v, want ErrTooManyRows", err)
	}

	iterErr := errors.New("iter")
	if _, err := One(ctx, &fakeQuerier{rows: &fakeRows{err: iterErr}}, scanPair, "SELECT"); !errors.Is(err, iterErr) {
		t.Fatalf("iter err = %v, want iter", err)
	}
}

func TestMany(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rows := &fakeRows{data: [][]any{{"2025-07", int64(1)}, {"2025-08", int64(2)}}}
	got, err := Many(ctx, &fakeQuerier{rows: rows}, scanPair, "SELECT")
	if err != nil {
		t.Fatalf("Many err = %v", err)
	}
	want := []pair{{"2025-07", 1}, {"2025-08", 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Many mismatch (-want +got):\n%s", diff)
	}

	got, err = Many(ctx, &fakeQuerier{rows: &fakeRows{}}, scanPair, "SELECT")
	if err != nil || len(got) != 0 {
		t.Fatalf("empty Many = %v, %v", got, err)
	}

	bad := &fakeRows{data: [][]any{{"x", 1}}} // int, not int64
	if _, err := Many(ctx, &fakeQuerier{rows: bad}, scanPair, "SELECT"); err == nil {
		t.Fatalf("scan error swallowed")
	}
}
