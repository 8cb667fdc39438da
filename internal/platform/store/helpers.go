package store

import (
	"context"

	perr "immiwatch/internal/platform/errors"
)

var (
	// ErrNoRows is returned by One when the query matched nothing
	ErrNoRows = perr.New(perr.ErrorCodeNotFound, "no rows")
	// ErrTooManyRows is returned by One when the query matched more than one row
	ErrTooManyRows = perr.New(perr.ErrorCodeDB, "expected 1 row, got more")
)

// Affected runs a write and returns the number of rows it touched
func Affected(ctx context.Context, q RowQuerier, sql string, args ...any) (int64, error) {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Scalar scans the first column of the first row into T
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (v T, err error) {
	if err = q.QueryRow(ctx, sql, args...).Scan(&v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// One maps exactly one row into T with scan
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	items, more, err := collect(ctx, q, scan, 1, sql, args)
	var zero T
	switch {
	case err != nil:
		return zero, err
	case len(items) == 0:
		return zero, ErrNoRows
	case more:
		return zero, ErrTooManyRows
	}
	return items[0], nil
}

// Many maps every row into []T with scan
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	items, _, err := collect(ctx, q, scan, 0, sql, args)
	return items, err
}

// collect scans up to limit rows, all of them when limit is 0, and reports
// whether the result set had more
func collect[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), limit int, sql string, args []any) ([]T, bool, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		if limit > 0 && len(out) == limit {
			return out, true, nil
		}
		item, err := scan(rows)
		if err != nil {
			return nil, false, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return out, false, nil
}
