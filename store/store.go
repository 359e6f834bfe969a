package store

import (
	"bytes"
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/npillmayer/cowtree/digest"
	"github.com/npillmayer/cowtree/merkle"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of decoded snapshots a Store keeps.
const DefaultCacheSize = 64

// maxBlobSize bounds the decompressed size of a blob.
const maxBlobSize = 1 << 30

// Store saves and loads map snapshots by root digest.
//
// Loaded snapshots are cached. Concurrent loads of the same digest share a
// single backend read.
type Store struct {
	blobs Blobs
	enc   *zstd.Encoder
	dec   *zstd.Decoder
	cache *lru.Cache[digest.Digest, merkle.Snapshot]
	group singleflight.Group
}

// Option configures a Store.
type Option func(*config)

type config struct {
	cacheSize int
	level     zstd.EncoderLevel
}

// WithCacheSize sets the number of cached snapshots.
func WithCacheSize(n int) Option {
	return func(c *config) {
		c.cacheSize = n
	}
}

// WithCompressionLevel sets the zstd level, as in the zstd command line
// tool (1 = fastest, 19 = best).
func WithCompressionLevel(level int) Option {
	return func(c *config) {
		c.level = zstd.EncoderLevelFromZstd(level)
	}
}

// New creates a store on top of blobs. The store takes ownership of blobs
// and closes it on Close.
func New(blobs Blobs, opts ...Option) (*Store, error) {
	cfg := config{cacheSize: DefaultCacheSize, level: zstd.SpeedDefault}
	for _, opt := range opts {
		opt(&cfg)
	}
	cache, err := lru.New[digest.Digest, merkle.Snapshot](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(cfg.level))
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxBlobSize))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	return &Store{blobs: blobs, enc: enc, dec: dec, cache: cache}, nil
}

// Save persists a snapshot and returns its root digest.
func (s *Store) Save(ctx context.Context, snap merkle.Snapshot) (digest.Digest, error) {
	root := snap.RootHash()
	var buf bytes.Buffer
	if _, err := snap.WriteTo(&buf); err != nil {
		return root, err
	}
	data := s.enc.EncodeAll(buf.Bytes(), make([]byte, 0, buf.Len()/2))
	if err := s.blobs.Put(ctx, root, data); err != nil {
		return root, err
	}
	s.cache.Add(root, snap)
	tracer().Debugf("store: saved %s, %d entries, %d → %d bytes", root.Short(), snap.Len(), buf.Len(), len(data))
	return root, nil
}

// Load returns the snapshot with the given root digest.
//
// A load shared between concurrent callers runs to completion even if the
// caller which started it gives up; each caller returns early with its own
// ctx.Err().
func (s *Store) Load(ctx context.Context, root digest.Digest) (merkle.Snapshot, error) {
	if snap, ok := s.cache.Get(root); ok {
		return snap, nil
	}
	if err := ctx.Err(); err != nil {
		return merkle.Snapshot{}, err
	}
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(root.String(), func() (any, error) {
		return s.load(shared, root)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return merkle.Snapshot{}, res.Err
		}
		if res.Shared {
			tracer().Debugf("store: shared load of %s", root.Short())
		}
		return res.Val.(merkle.Snapshot), nil
	case <-ctx.Done():
		return merkle.Snapshot{}, ctx.Err()
	}
}

func (s *Store) load(ctx context.Context, root digest.Digest) (merkle.Snapshot, error) {
	data, err := s.blobs.Get(ctx, root)
	if err != nil {
		return merkle.Snapshot{}, err
	}
	raw, err := s.dec.DecodeAll(data, nil)
	if err != nil {
		return merkle.Snapshot{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, root.Short(), err)
	}
	m, err := merkle.ReadMap(bytes.NewReader(raw))
	if err != nil {
		return merkle.Snapshot{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, root.Short(), err)
	}
	snap := m.Snapshot()
	if got := snap.RootHash(); got != root {
		tracer().Errorf("store: blob %s decodes to %s", root.Short(), got.Short())
		return merkle.Snapshot{}, fmt.Errorf("%w: want %s, have %s", ErrDigestMismatch, root, got)
	}
	s.cache.Add(root, snap)
	return snap, nil
}

// Close releases the codecs and closes the backend.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	s.cache.Purge()
	return s.blobs.Close()
}
