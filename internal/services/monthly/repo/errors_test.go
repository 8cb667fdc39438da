package repo

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/services/monthly/domain"
)

func TestPersistence_Classification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		err       error
		code      perr.ErrorCode
		retryable bool
	}{
		{"io", fs.ErrPermission, perr.ErrorCodeUnavailable, true},
		{"serialization", &pgconn.PgError{Code: "40001"}, perr.ErrorCodeUnavailable, true},
		{"check violation", &pgconn.PgError{Code: "23514"}, perr.ErrorCodeValidation, false},
		{"other pg", &pgconn.PgError{Code: "42P01"}, perr.ErrorCodeDB, false},
	}
	for _, c := range cases {
		err := persistence("pg.save", c.err)
		if !errors.Is(err, domain.ErrPersistence) {
			t.Fatalf("%s: not ErrPersistence: %v", c.name, err)
		}
		if !errors.Is(err, c.err) {
			t.Fatalf("%s: cause lost: %v", c.name, err)
		}
		if got := perr.CodeOf(err); got != c.code {
			t.Fatalf("%s: code = %v, want %v", c.name, got, c.code)
		}
		if got := perr.Retryable(err); got != c.retryable {
			t.Fatalf("%s: Retryable = %v, want %v", c.name, got, c.retryable)
		}
	}
}
