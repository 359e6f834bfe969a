package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/npillmayer/cowtree/digest"
)

// DirStore keeps one file per blob below a root directory, fanned out by
// the first byte of the digest.
type DirStore struct {
	root string
}

var _ Blobs = (*DirStore)(nil)

// NewDirStore opens a directory store, creating the directory if needed.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store: cannot create %s: %w", root, err)
	}
	return &DirStore{root: root}, nil
}

func (s *DirStore) path(key digest.Digest) string {
	name := key.String()
	return filepath.Join(s.root, name[:2], name)
}

// Put writes data to a temporary file and renames it into place, so that
// readers never see partial blobs.
func (s *DirStore) Put(ctx context.Context, key digest.Digest, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.path(key)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		tracer().Errorf("store: cannot write blob %s: %v", key.Short(), err)
		return err
	}
	return nil
}

func (s *DirStore) Get(ctx context.Context, key digest.Digest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, err
}

func (s *DirStore) Close() error { return nil }
