package store

import (
	"context"

	"immiwatch/internal/platform/store/ch"
)

// chConn is the part of *ch.CH the store needs
type chConn interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

// chStore lifts a chConn to Clickhouse; only result sets need reshaping
type chStore struct{ chConn }

var (
	_ Clickhouse = chStore{}
	_ Pinger     = chStore{}
)

func (s chStore) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := s.chConn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
