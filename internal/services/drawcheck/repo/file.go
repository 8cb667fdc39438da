// Package repo persists the drawcheck high-water mark
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	perr "immiwatch/internal/platform/errors"
	"immiwatch/internal/services/drawcheck/domain"
	mrepo "immiwatch/internal/services/monthly/repo"
)

// StateFile is the document name under the data dir
const StateFile = "last_draw.json"

// FileState keeps LastSeen in one JSON document
type FileState struct {
	dir string
}

// NewFileState creates dir when missing
func NewFileState(dir string) (*FileState, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "create state dir %s", dir)
	}
	return &FileState{dir: dir}, nil
}

// Get implements domain.StateRepo
func (s *FileState) Get(context.Context) (domain.LastSeen, bool, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, StateFile))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.LastSeen{}, false, nil
	}
	if err != nil {
		return domain.LastSeen{}, false, perr.Wrap(err, perr.ErrorCodeUnavailable, "read "+StateFile)
	}
	var ls domain.LastSeen
	if err := json.Unmarshal(b, &ls); err != nil {
		return domain.LastSeen{}, false, perr.Wrap(err, perr.ErrorCodeDB, "decode "+StateFile)
	}
	return ls, true, nil
}

// Put implements domain.StateRepo
func (s *FileState) Put(_ context.Context, ls domain.LastSeen) error {
	b, err := json.MarshalIndent(ls, "", "  ")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode "+StateFile)
	}
	if err := mrepo.WriteAtomic(s.dir, filepath.Join(s.dir, StateFile), b); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "write "+StateFile)
	}
	return nil
}
