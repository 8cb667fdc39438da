package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"immiwatch/internal/platform/store"
	kit "immiwatch/internal/platform/testkit"
)

type recorder struct {
	sqls []string
	fail string // an Exec containing this fails
	txs  int
}

func (r *recorder) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	r.sqls = append(r.sqls, sql)
	if r.fail != "" && strings.Contains(sql, r.fail) {
		return nil, errors.New("exec failed")
	}
	return nil, nil
}
func (r *recorder) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (r *recorder) QueryRow(context.Context, string, ...any) store.Row        { return nil }
func (r *recorder) Tx(_ context.Context, fn func(Queryer) error) error {
	r.txs++
	return fn(r)
}

type counter struct{ q Queryer }

type counterBinder struct{}

func (counterBinder) Bind(q Queryer) counter { return counter{q: q} }

func TestMustBind(t *testing.T) {
	r := &recorder{}
	if got := MustBind[counter](counterBinder{}, r); got.q != r {
		t.Fatal("bound to the wrong queryer")
	}
	kit.MustPanic(t, func() { _ = MustBind[counter](counterBinder{}, nil) })
}

func TestWithBeginHooks_RunsHooksFirst(t *testing.T) {
	r := &recorder{}
	tx := WithBeginHooks(r, LocalTimeouts(5*time.Second, 2*time.Second))

	err := tx.Tx(context.Background(), func(q Queryer) error {
		_, err := q.Exec(context.Background(), "UPDATE monthly_pointer SET version = version + 1")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"SET LOCAL statement_timeout = 5000",
		"SET LOCAL lock_timeout = 2000",
		"UPDATE monthly_pointer SET version = version + 1",
	}
	if strings.Join(r.sqls, "|") != strings.Join(want, "|") {
		t.Fatalf("statements = %q", r.sqls)
	}

	r.sqls = nil
	if _, err := tx.Exec(context.Background(), "SELECT 1"); err != nil || len(r.sqls) != 1 {
		t.Fatalf("plain Exec should skip hooks: %q %v", r.sqls, err)
	}
}

func TestWithBeginHooks_HookErrorSkipsFn(t *testing.T) {
	r := &recorder{fail: "lock_timeout"}
	called := false
	err := WithBeginHooks(r, LocalTimeouts(0, time.Second)).Tx(context.Background(), func(Queryer) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("err = %v, fn called = %v", err, called)
	}
	if len(r.sqls) != 1 {
		t.Fatalf("zero statement timeout should be skipped, got %q", r.sqls)
	}
}

type guard struct {
	err         error
	hadDeadline bool
}

func (g *guard) Guard(ctx context.Context) error {
	_, g.hadDeadline = ctx.Deadline()
	return g.err
}

func TestMustGuard(t *testing.T) {
	ok := &guard{}
	MustGuard(context.Background(), ok)
	if !ok.hadDeadline {
		t.Fatal("MustGuard should bound the check")
	}
	kit.MustPanic(t, func() { MustGuard(context.Background(), &guard{err: errors.New("pg down")}) })
}
