// Package repo persists month buckets and the current-bucket pointer, on the
// filesystem or in Postgres, and archives merged events to ClickHouse
package repo

import (
	"fmt"

	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/services/monthly/domain"
)

// persistence wraps a backend failure as domain.ErrPersistence. Transient
// conditions keep the Unavailable code so callers retry them; other Postgres
// failures carry their mapped code
func persistence(op string, err error) error {
	code := perr.ErrorCodeUnavailable
	if c, ok := perr.DBErrorCode(err); ok && !perr.IsRetryable(err) {
		code = c
	}
	return perr.WithOp(perr.Wrapf(fmt.Errorf("%w: %w", domain.ErrPersistence, err), code, "%s", op), op)
}

func notFound(id string) error {
	return perr.WithField(perr.Wrapf(domain.ErrBucketNotFound, perr.ErrorCodeNotFound, "bucket %s", id), "bucket_id")
}

func conflict(what string, want, have int64) error {
	return perr.Wrapf(domain.ErrVersionConflict, perr.ErrorCodeConflict, "%s: version %d, stored %d", what, want, have)
}
