package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/npillmayer/cowtree/digest"
)

// blobPrefix separates snapshot blobs from other keys in the database.
const blobPrefix = "S"

// PebbleStore keeps blobs in a pebble database.
type PebbleStore struct {
	db *pebble.DB
}

var _ Blobs = (*PebbleStore)(nil)

// OpenPebble opens or creates a pebble database at path.
func OpenPebble(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble database: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

func pebbleKey(key digest.Digest) []byte {
	return append([]byte(blobPrefix), key[:]...)
}

func (s *PebbleStore) Put(ctx context.Context, key digest.Digest, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Set(pebbleKey(key), data, pebble.Sync); err != nil {
		tracer().Errorf("store: cannot write blob %s: %v", key.Short(), err)
		return err
	}
	return nil
}

func (s *PebbleStore) Get(ctx context.Context, key digest.Digest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, closer, err := s.db.Get(pebbleKey(key))
	if closer != nil {
		defer closer.Close()
	}
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	// val is only valid until closer is closed
	return append([]byte(nil), val...), nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
