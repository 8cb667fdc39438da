package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeConflict, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeDB, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%d) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestWrapKeepsSentinelIdentity(t *testing.T) {
	t.Parallel()

	sentinel := New(ErrorCodeValidation, "invalid date")
	wrapped := WithField(Wrapf(sentinel, ErrorCodeValidation, "normalize: date %q", "31/31/2025"), "date")
	outer := fmt.Errorf("ingest: %w", wrapped)

	if !stderrs.Is(outer, sentinel) {
		t.Fatalf("errors.Is lost the sentinel through Wrapf/WithField")
	}
	if got := CodeOf(outer); got != ErrorCodeValidation {
		t.Fatalf("CodeOf = %d, want Validation", got)
	}
	if got := FieldOf(outer); got != "date" {
		t.Fatalf("FieldOf = %q, want date", got)
	}
	if got := HTTPStatus(outer); got != http.StatusBadRequest {
		t.Fatalf("HTTPStatus = %d, want 400", got)
	}
	if Root(outer) != sentinel {
		t.Fatalf("Root = %v, want sentinel", Root(outer))
	}
}

func TestErrorRendering(t *testing.T) {
	t.Parallel()

	var nilErr *Error
	if nilErr.Error() != "<nil>" {
		t.Fatalf("nil render = %q", nilErr.Error())
	}
	e := Wrap(stderrs.New("disk full"), ErrorCodeUnavailable, "save bucket 2025-08")
	if got := e.Error(); got != "save bucket 2025-08: disk full" {
		t.Fatalf("Error() = %q", got)
	}
	w := WireFrom(WithOp(e, "save"))
	if w.Code != ErrorCodeUnavailable || w.Message != "save bucket 2025-08: disk full" {
		t.Fatalf("WireFrom = %+v", w)
	}
	if got := WireFrom(stderrs.New("plain")); got.Code != ErrorCodeUnknown {
		t.Fatalf("foreign WireFrom code = %d", got.Code)
	}
	if got := WireFrom(nil); got != (Wire{}) {
		t.Fatalf("WireFrom(nil) = %+v", got)
	}
	if op := WithOp(e, "save").(*Error).Op(); op != "save" {
		t.Fatalf("Op = %q", op)
	}
}

func TestSugarCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want ErrorCode
	}{
		{New(ErrorCodeNotFound, "bucket 2025-08"), ErrorCodeNotFound},
		{JSONErrf("bad json"), ErrorCodeJSON},
		{PanicErrf("boom"), ErrorCodePanic},
		{Unauthorizedf("secret"), ErrorCodeUnauthorized},
		{Unavailablef("io"), ErrorCodeUnavailable},
		{stderrs.New("plain"), ErrorCodeUnknown},
	}
	for _, c := range cases {
		if got := CodeOf(c.err); got != c.want {
			t.Fatalf("CodeOf(%v) = %d, want %d", c.err, got, c.want)
		}
		if !IsCode(c.err, c.want) {
			t.Fatalf("IsCode(%v, %s) = false", c.err, c.want)
		}
	}
}

func TestCodeString(t *testing.T) {
	t.Parallel()

	if got := ErrorCodeInvalidArgument.String(); got != "invalid_argument" {
		t.Fatalf("String = %q", got)
	}
	if got := ErrorCode(9999).String(); got != "code(9999)" {
		t.Fatalf("out of range String = %q", got)
	}
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	unavailable := Wrap(stderrs.New("rename: device busy"), ErrorCodeUnavailable, "persist")
	if !Retryable(fmt.Errorf("save: %w", unavailable)) {
		t.Fatalf("Unavailable in chain should be retryable")
	}
	// an inner Unavailable still counts even when wrapped by another code
	if !Retryable(Wrap(unavailable, ErrorCodeConflict, "outer")) {
		t.Fatalf("inner Unavailable should be retryable")
	}
	if Retryable(New(ErrorCodeInvalidArgument, "negative count")) {
		t.Fatalf("InvalidArgument should not be retryable")
	}
	if Retryable(nil) {
		t.Fatalf("nil should not be retryable")
	}
}
