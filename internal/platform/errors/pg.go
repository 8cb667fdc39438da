package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlState is how a SQLSTATE surfaces: the code callers see and whether a
// retry of the same statement can succeed
type sqlState struct {
	code  ErrorCode
	retry bool
}

var sqlStates = map[string]sqlState{
	"23505": {code: ErrorCodeDuplicateKey},
	"23503": {code: ErrorCodeInvalidArgument},
	"22P02": {code: ErrorCodeInvalidArgument},
	"23502": {code: ErrorCodeValidation},
	"23514": {code: ErrorCodeValidation},
	"25006": {code: ErrorCodeUnavailable},
	"40001": {code: ErrorCodeUnavailable, retry: true},
	"40P01": {code: ErrorCodeUnavailable, retry: true},
	"55P03": {code: ErrorCodeUnavailable, retry: true},
	"57P03": {code: ErrorCodeUnavailable, retry: true},
}

// transient driver messages that arrive without a PgError
var transientText = []string{
	"commit unexpectedly resulted in rollback",
	"deadlock detected",
	"could not serialize access",
	"canceling statement due to lock timeout",
	"terminating connection due to administrator command",
	"connection reset by peer",
}

func pgError(err error) *pgconn.PgError {
	var pg *pgconn.PgError
	if stderrs.As(err, &pg) {
		return pg
	}
	return nil
}

// IsDuplicateKey reports a unique constraint violation
func IsDuplicateKey(err error) bool {
	pg := pgError(err)
	return pg != nil && pg.Code == "23505"
}

// DBErrorCode maps a Postgres error to an ErrorCode; ok is false for non-pg errors
func DBErrorCode(err error) (ErrorCode, bool) {
	pg := pgError(err)
	if pg == nil {
		return ErrorCodeUnknown, false
	}
	if s, ok := sqlStates[pg.Code]; ok {
		return s.code, true
	}
	return ErrorCodeDB, true
}

// FromPostgres wraps err with its mapped code, ErrorCodeDB when unmapped; nil stays nil
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	code, _ := DBErrorCode(err)
	if code == ErrorCodeUnknown {
		code = ErrorCodeDB
	}
	return Wrap(err, code, msg)
}

// IsRetryable reports transient database conditions. Local cancellation is
// never retryable
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case stderrs.Is(err, context.Canceled), stderrs.Is(err, context.DeadlineExceeded):
		return false
	}
	if pg := pgError(err); pg != nil {
		return sqlStates[pg.Code].retry
	}
	msg := strings.ToLower(Root(err).Error())
	for _, t := range transientText {
		if strings.Contains(msg, t) {
			return true
		}
	}
	return false
}
