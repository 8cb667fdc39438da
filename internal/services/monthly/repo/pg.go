package repo

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"immiwatch/internal/modkit/repokit"
	"immiwatch/internal/platform/store"
	"immiwatch/internal/services/monthly/domain"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the bucket and pointer tables when missing
func EnsureSchema(ctx context.Context, db repokit.Queryer) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(ctx, stmt); err != nil {
			return persistence("pg.schema", err)
		}
	}
	return nil
}

type (
	queries struct{ q repokit.Queryer }
	binder  struct{}
)

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) *queries { return &queries{q: q} }

// PGStore keeps buckets and the pointer as jsonb documents with a version column
type PGStore struct {
	db repokit.TxRunner
	b  repokit.Binder[*queries]
}

var (
	_ domain.BucketRepo  = (*PGStore)(nil)
	_ domain.PointerRepo = (*PGStore)(nil)
)

// Transaction budgets applied to every store transaction
const (
	statementTimeout = 5 * time.Second
	lockTimeout      = 2 * time.Second
)

// NewPG binds the store to a transaction runner
func NewPG(db repokit.TxRunner) *PGStore {
	return &PGStore{
		db: repokit.WithBeginHooks(db, repokit.LocalTimeouts(statementTimeout, lockTimeout)),
		b:  binder{},
	}
}

// Load implements domain.BucketRepo
func (s *PGStore) Load(ctx context.Context, id string) (domain.MonthBucket, error) {
	b, err := repokit.MustBind(s.b, s.db).bucket(ctx, id)
	if errors.Is(err, store.ErrNoRows) {
		return domain.MonthBucket{}, notFound(id)
	}
	if err != nil {
		return domain.MonthBucket{}, persistence("pg.load", err)
	}
	return b, nil
}

// Create implements domain.BucketRepo
func (s *PGStore) Create(ctx context.Context, b domain.MonthBucket) (domain.MonthBucket, bool, error) {
	var (
		out     domain.MonthBucket
		created bool
	)
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.b.Bind(q)
		b.Version = 1
		doc, err := json.Marshal(b)
		if err != nil {
			return err
		}
		n, err := store.Affected(ctx, q, `
			INSERT INTO monthly_buckets (id, version, status, doc, created_at, updated_at)
			VALUES ($1, $2, $3, $4::jsonb, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			b.ID, b.Version, string(b.Status), string(doc), b.CreatedAt, b.LastUpdatedAt)
		if err != nil {
			return err
		}
		if n == 1 {
			out, created = b, true
			return nil
		}
		out, err = r.bucket(ctx, b.ID)
		return err
	})
	if err != nil {
		return domain.MonthBucket{}, false, persistence("pg.create", err)
	}
	return out, created, nil
}

// Save implements domain.BucketRepo
func (s *PGStore) Save(ctx context.Context, b domain.MonthBucket) (domain.MonthBucket, error) {
	expected := b.Version
	b.Version++
	doc, err := json.Marshal(b)
	if err != nil {
		return domain.MonthBucket{}, persistence("pg.save", err)
	}

	var stored int64
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		n, err := store.Affected(ctx, q, `
			UPDATE monthly_buckets
			   SET version = $3, status = $4, doc = $5::jsonb, updated_at = $6
			 WHERE id = $1 AND version = $2`,
			b.ID, expected, b.Version, string(b.Status), string(doc), b.LastUpdatedAt)
		if err != nil || n == 1 {
			return err
		}
		stored, err = store.Scalar[int64](ctx, q, `SELECT version FROM monthly_buckets WHERE id = $1`, b.ID)
		if err != nil {
			return err
		}
		return errStale
	})
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, errStale):
		return domain.MonthBucket{}, conflict("bucket "+b.ID, expected, stored)
	case isNoRows(err):
		return domain.MonthBucket{}, notFound(b.ID)
	default:
		return domain.MonthBucket{}, persistence("pg.save", err)
	}
}

// ListAll implements domain.BucketRepo
func (s *PGStore) ListAll(ctx context.Context) ([]domain.BucketSummary, error) {
	bs, err := store.Many(ctx, s.db, scanBucket, `SELECT doc, version FROM monthly_buckets ORDER BY id`)
	if err != nil {
		return nil, persistence("pg.list", err)
	}
	out := make([]domain.BucketSummary, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Summary())
	}
	return out, nil
}

// Get implements domain.PointerRepo
func (s *PGStore) Get(ctx context.Context) (domain.Pointer, bool, error) {
	p, err := repokit.MustBind(s.b, s.db).pointer(ctx)
	if errors.Is(err, store.ErrNoRows) {
		return domain.Pointer{}, false, nil
	}
	if err != nil {
		return domain.Pointer{}, false, persistence("pg.pointer.get", err)
	}
	return p, true, nil
}

// CompareAndSet implements domain.PointerRepo
func (s *PGStore) CompareAndSet(ctx context.Context, expected int64, p domain.Pointer) (domain.Pointer, error) {
	p.Version = expected + 1
	doc, err := json.Marshal(p)
	if err != nil {
		return domain.Pointer{}, persistence("pg.pointer.cas", err)
	}

	var stored int64
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		var n int64
		var err error
		if expected == 0 {
			n, err = store.Affected(ctx, q, `
				INSERT INTO monthly_pointer (singleton, bucket_id, version, doc, designated_at)
				VALUES (true, $1, $2, $3::jsonb, $4)
				ON CONFLICT (singleton) DO NOTHING`,
				p.BucketID, p.Version, string(doc), p.DesignatedAt)
		} else {
			n, err = store.Affected(ctx, q, `
				UPDATE monthly_pointer
				   SET bucket_id = $2, version = $3, doc = $4::jsonb, designated_at = $5
				 WHERE singleton AND version = $1`,
				expected, p.BucketID, p.Version, string(doc), p.DesignatedAt)
		}
		if err != nil || n == 1 {
			return err
		}
		stored, err = store.Scalar[int64](ctx, q, `SELECT version FROM monthly_pointer WHERE singleton`)
		if isNoRows(err) {
			stored, err = 0, nil
		}
		if err != nil {
			return err
		}
		return errStale
	})
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, errStale):
		return domain.Pointer{}, conflict("pointer", expected, stored)
	default:
		return domain.Pointer{}, persistence("pg.pointer.cas", err)
	}
}

var errStale = errors.New("stale version")

func (r *queries) bucket(ctx context.Context, id string) (domain.MonthBucket, error) {
	return store.One(ctx, r.q, scanBucket, `SELECT doc, version FROM monthly_buckets WHERE id = $1`, id)
}

func (r *queries) pointer(ctx context.Context) (domain.Pointer, error) {
	return store.One(ctx, r.q, func(row store.Row) (domain.Pointer, error) {
		var (
			doc []byte
			p   domain.Pointer
		)
		if err := row.Scan(&doc, &p.Version); err != nil {
			return p, err
		}
		v := p.Version
		if err := json.Unmarshal(doc, &p); err != nil {
			return p, err
		}
		p.Version = v
		return p, nil
	}, `SELECT doc, version FROM monthly_pointer WHERE singleton`)
}

// scanBucket decodes the document and trusts the version column over the doc
func scanBucket(row store.Row) (domain.MonthBucket, error) {
	var (
		doc     []byte
		version int64
		b       domain.MonthBucket
	)
	if err := row.Scan(&doc, &version); err != nil {
		return b, err
	}
	if err := json.Unmarshal(doc, &b); err != nil {
		return b, err
	}
	b.Version = version
	return b, nil
}

// isNoRows matches both store.One misses and pgx QueryRow misses
func isNoRows(err error) bool {
	return errors.Is(err, store.ErrNoRows) || errors.Is(err, pgx.ErrNoRows)
}
