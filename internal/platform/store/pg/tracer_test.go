package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type traceLine struct {
	Level     string  `json:"level"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Slow      bool    `json:"slow"`
	SQL       string  `json:"sql"`
	Args      int     `json:"args"`
	Error     string  `json:"error"`
	Component string  `json:"component"`
	Message   string  `json:"message"`
}

func TestTracer(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		ev    QueryEvent
		level string
	}{
		{"ok", QueryEvent{SQL: "SELECT doc\n\t FROM monthly_buckets", Elapsed: 2500 * time.Microsecond}, "info"},
		{"slow", QueryEvent{SQL: "SELECT 1", Elapsed: time.Second, Slow: true}, "warn"},
		{"failed", QueryEvent{SQL: "SELECT 1", Err: errors.New("boom"), Slow: true}, "error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			// a root above debug still traces
			Tracer(zerolog.New(&buf).Level(zerolog.ErrorLevel)).OnQuery(context.Background(), c.ev)

			var l traceLine
			if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &l); err != nil {
				t.Fatalf("decode %q: %v", buf.String(), err)
			}
			if l.Level != c.level || l.Component != "pg" || l.Message != "pg query" || l.Slow != c.ev.Slow {
				t.Fatalf("line = %+v", l)
			}
		})
	}
}

func TestTracerFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Tracer(zerolog.New(&buf)).OnQuery(context.Background(), QueryEvent{
		SQL:     "  UPDATE monthly_buckets\r\n SET doc = $2  WHERE id = $1 ",
		Args:    []any{"2025-08", []byte("{}")},
		Elapsed: 2500 * time.Microsecond,
		Err:     errors.New("boom"),
	})
	var l traceLine
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if l.SQL != "UPDATE monthly_buckets SET doc = $2 WHERE id = $1" {
		t.Fatalf("sql = %q", l.SQL)
	}
	if l.ElapsedMS != 2.5 || l.Args != 2 || l.Error != "boom" {
		t.Fatalf("fields = %+v", l)
	}
}
