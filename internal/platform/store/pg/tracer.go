package pg

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"immiwatch/internal/platform/logger"
)

// QueryEvent is one traced statement
type QueryEvent struct {
	SQL     string
	Args    []any
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// TracerFunc adapts a function to QueryTracer
type TracerFunc func(ctx context.Context, ev QueryEvent)

// OnQuery calls f
func (f TracerFunc) OnQuery(ctx context.Context, ev QueryEvent) { f(ctx, ev) }

// Tracer logs every statement when SERVICE_PGSQL_LOG_SQL is on, whatever the
// root level. Failed statements log at error, slow ones at warn
func Tracer(root logger.Logger) QueryTracer {
	log := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return TracerFunc(func(_ context.Context, ev QueryEvent) {
		lvl := zerolog.InfoLevel
		switch {
		case ev.Err != nil:
			lvl = zerolog.ErrorLevel
		case ev.Slow:
			lvl = zerolog.WarnLevel
		}
		e := log.WithLevel(lvl).
			Float64("elapsed_ms", float64(ev.Elapsed.Microseconds())/1000).
			Bool("slow", ev.Slow).
			Str("sql", strings.Join(strings.Fields(ev.SQL), " "))
		if len(ev.Args) > 0 {
			e = e.Int("args", len(ev.Args))
		}
		e.Err(ev.Err).Msg("pg query")
	})
}
