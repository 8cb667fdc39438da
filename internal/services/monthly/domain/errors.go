package domain

import perr "immiwatch/internal/platform/errors"

// Normalization errors
var (
	ErrInvalidDate    = perr.New(perr.ErrorCodeValidation, "invalid date")
	ErrInvalidNumeric = perr.New(perr.ErrorCodeValidation, "invalid numeric")
	ErrMissingField   = perr.New(perr.ErrorCodeValidation, "missing required field")
)

// Aggregation and persistence errors
var (
	ErrInvalidEvent    = perr.New(perr.ErrorCodeInvalidArgument, "invalid event")
	ErrDuplicateEvent  = perr.New(perr.ErrorCodeConflict, "duplicate or replayed event")
	ErrBucketNotFound  = perr.New(perr.ErrorCodeNotFound, "bucket not found")
	ErrVersionConflict = perr.New(perr.ErrorCodeConflict, "version conflict")
	ErrPersistence     = perr.New(perr.ErrorCodeUnavailable, "persistence failure")
	ErrCorrupt         = perr.New(perr.ErrorCodeDB, "bucket invariants violated")
	ErrRender          = perr.New(perr.ErrorCodeUnknown, "render failure")
)
