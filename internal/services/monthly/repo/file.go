package repo

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"immiwatch/internal/services/monthly/domain"
	"immiwatch/internal/services/monthly/period"
)

const (
	// PointerFile is the pointer document name inside the data dir
	PointerFile = "current_month.json"
	// LockFile is held exclusively around every read-compare-write
	LockFile = ".lock"
)

// FileStore keeps one JSON document per bucket plus the pointer document in a
// single directory. Writes go through a temp file, fsync and rename, so a
// reader never sees a partial document. Version checks run under LockFile,
// so stores in separate processes sharing the dir never lose an update
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var (
	_ domain.BucketRepo  = (*FileStore)(nil)
	_ domain.PointerRepo = (*FileStore)(nil)
)

// NewFileStore creates dir if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, persistence("file.mkdir", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) bucketPath(id string) string { return filepath.Join(s.dir, id+".json") }

// exclusive holds the in-process mutex and the dir lock until release
func (s *FileStore) exclusive(op string) (release func(), err error) {
	s.mu.Lock()
	unlock, err := lockFile(filepath.Join(s.dir, LockFile))
	if err != nil {
		s.mu.Unlock()
		return nil, persistence(op, err)
	}
	return func() {
		unlock()
		s.mu.Unlock()
	}, nil
}

// Load implements domain.BucketRepo
func (s *FileStore) Load(_ context.Context, id string) (domain.MonthBucket, error) {
	var b domain.MonthBucket
	ok, err := readJSON(s.bucketPath(id), &b)
	if err != nil {
		return domain.MonthBucket{}, persistence("file.load", err)
	}
	if !ok {
		return domain.MonthBucket{}, notFound(id)
	}
	return b, nil
}

// Create implements domain.BucketRepo
func (s *FileStore) Create(_ context.Context, b domain.MonthBucket) (domain.MonthBucket, bool, error) {
	release, err := s.exclusive("file.create")
	if err != nil {
		return domain.MonthBucket{}, false, err
	}
	defer release()

	var cur domain.MonthBucket
	ok, err := readJSON(s.bucketPath(b.ID), &cur)
	if err != nil {
		return domain.MonthBucket{}, false, persistence("file.create", err)
	}
	if ok {
		return cur, false, nil
	}
	b.Version = 1
	if err := writeJSON(s.dir, s.bucketPath(b.ID), b); err != nil {
		return domain.MonthBucket{}, false, persistence("file.create", err)
	}
	return b, true, nil
}

// Save implements domain.BucketRepo
func (s *FileStore) Save(_ context.Context, b domain.MonthBucket) (domain.MonthBucket, error) {
	release, err := s.exclusive("file.save")
	if err != nil {
		return domain.MonthBucket{}, err
	}
	defer release()

	var cur domain.MonthBucket
	ok, err := readJSON(s.bucketPath(b.ID), &cur)
	if err != nil {
		return domain.MonthBucket{}, persistence("file.save", err)
	}
	if !ok {
		return domain.MonthBucket{}, notFound(b.ID)
	}
	if cur.Version != b.Version {
		return domain.MonthBucket{}, conflict("bucket "+b.ID, b.Version, cur.Version)
	}
	b.Version++
	if err := writeJSON(s.dir, s.bucketPath(b.ID), b); err != nil {
		return domain.MonthBucket{}, persistence("file.save", err)
	}
	return b, nil
}

// ListAll implements domain.BucketRepo
func (s *FileStore) ListAll(ctx context.Context) ([]domain.BucketSummary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, persistence("file.list", err)
	}
	var ids []string
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || e.IsDir() {
			continue
		}
		if _, err := period.ParseBucketID(id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.BucketSummary, 0, len(ids))
	for _, id := range ids {
		b, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, b.Summary())
	}
	return out, nil
}

// Get implements domain.PointerRepo
func (s *FileStore) Get(context.Context) (domain.Pointer, bool, error) {
	var p domain.Pointer
	ok, err := readJSON(filepath.Join(s.dir, PointerFile), &p)
	if err != nil {
		return domain.Pointer{}, false, persistence("file.pointer.get", err)
	}
	return p, ok, nil
}

// CompareAndSet implements domain.PointerRepo
func (s *FileStore) CompareAndSet(_ context.Context, expected int64, p domain.Pointer) (domain.Pointer, error) {
	release, err := s.exclusive("file.pointer.cas")
	if err != nil {
		return domain.Pointer{}, err
	}
	defer release()

	path := filepath.Join(s.dir, PointerFile)
	var cur domain.Pointer
	if _, err := readJSON(path, &cur); err != nil {
		return domain.Pointer{}, persistence("file.pointer.cas", err)
	}
	if cur.Version != expected {
		return domain.Pointer{}, conflict("pointer", expected, cur.Version)
	}
	p.Version = expected + 1
	if err := writeJSON(s.dir, path, p); err != nil {
		return domain.Pointer{}, persistence("file.pointer.cas", err)
	}
	return p, nil
}

// readJSON decodes path into v; a missing file is (false, nil)
func readJSON(path string, v any) (bool, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, err
	}
	return true, nil
}

// writeJSON replaces path atomically
func writeJSON(dir, path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return WriteAtomic(dir, path, append(b, '\n'))
}

// WriteAtomic writes data to a temp file in dir, syncs it and renames it over path
func WriteAtomic(dir, path string, data []byte) error {
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	cleanup := func(err error) error {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if _, err := f.Write(data); err != nil {
		return cleanup(err)
	}
	if err := f.Sync(); err != nil {
		return cleanup(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
