package repo

import (
	"context"
	_ "embed"
	"errors"

	"immiwatch/internal/modkit/repokit"
	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/platform/store"
	"immiwatch/internal/services/drawcheck/domain"
)

//go:embed schema.sql
var schemaSQL string

// PGState keeps LastSeen in a single-row table
type PGState struct {
	db repokit.Queryer
}

var (
	_ domain.StateRepo = (*PGState)(nil)
	_ domain.StateRepo = (*FileState)(nil)
)

// NewPG binds the state to a query runner
func NewPG(db repokit.Queryer) *PGState { return &PGState{db: db} }

// EnsureSchema creates draw_checks when missing
func (s *PGState) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return perr.FromPostgres(err, "drawcheck schema")
	}
	return nil
}

// Get implements domain.StateRepo
func (s *PGState) Get(ctx context.Context) (domain.LastSeen, bool, error) {
	ls, err := store.One(ctx, s.db, func(r store.Row) (domain.LastSeen, error) {
		var ls domain.LastSeen
		err := r.Scan(&ls.DrawNumber, &ls.DrawDate, &ls.DrawName, &ls.CheckedAt)
		return ls, err
	}, `SELECT draw_number, draw_date, draw_name, checked_at FROM draw_checks WHERE singleton`)
	if errors.Is(err, store.ErrNoRows) {
		return domain.LastSeen{}, false, nil
	}
	if err != nil {
		return domain.LastSeen{}, false, perr.FromPostgres(err, "drawcheck get")
	}
	return ls, true, nil
}

// Put implements domain.StateRepo
func (s *PGState) Put(ctx context.Context, ls domain.LastSeen) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO draw_checks (singleton, draw_number, draw_date, draw_name, checked_at)
		VALUES (true, $1, $2, $3, $4)
		ON CONFLICT (singleton) DO UPDATE
		   SET draw_number = EXCLUDED.draw_number,
		       draw_date   = EXCLUDED.draw_date,
		       draw_name   = EXCLUDED.draw_name,
		       checked_at  = EXCLUDED.checked_at`,
		ls.DrawNumber, ls.DrawDate, ls.DrawName, ls.CheckedAt)
	if err != nil {
		return perr.FromPostgres(err, "drawcheck put")
	}
	return nil
}
