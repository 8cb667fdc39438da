package repo

import (
	"context"
	_ "embed"
	"time"

	"github.com/google/uuid"

	"immiwatch/internal/platform/store"
	"immiwatch/internal/services/monthly/domain"
)

//go:embed ledger.sql
var ledgerSQL string

// LedgerTable is the ClickHouse table merged events are appended to
const LedgerTable = "draw_events"

// LedgerCH appends every merged event to ClickHouse for analytics
type LedgerCH struct {
	ch  store.Clickhouse
	now func() time.Time
}

var _ domain.Ledger = (*LedgerCH)(nil)

// NewLedgerCH wraps a clickhouse seam
func NewLedgerCH(ch store.Clickhouse) *LedgerCH {
	return &LedgerCH{ch: ch, now: time.Now}
}

// EnsureSchema creates the ledger table when missing
func (l *LedgerCH) EnsureSchema(ctx context.Context) error {
	if err := l.ch.Exec(ctx, ledgerSQL); err != nil {
		return persistence("ch.schema", err)
	}
	return nil
}

// Archive implements domain.Ledger. Events without a parseable id get a fresh one
func (l *LedgerCH) Archive(ctx context.Context, bucketID string, e domain.DrawEvent) error {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		id = uuid.New()
	}
	var seq *int64
	if e.Sequence != nil {
		v := int64(*e.Sequence)
		seq = &v
	}
	row := []any{
		id,
		bucketID,
		e.OccurredOn,
		string(e.Program),
		e.Label,
		int64(e.Invitations),
		int64(e.MinimumScore),
		seq,
		e.Source,
		l.now().UTC(),
	}
	if err := l.ch.Insert(ctx, LedgerTable, [][]any{row}); err != nil {
		return persistence("ch.archive", err)
	}
	return nil
}

// NopLedger discards events; used when ClickHouse is disabled
type NopLedger struct{}

// Archive implements domain.Ledger
func (NopLedger) Archive(context.Context, string, domain.DrawEvent) error { return nil }
