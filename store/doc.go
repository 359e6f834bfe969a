/*
Package store persists snapshots of authenticated maps, addressed by their
root digest.

A Store sits on top of a Blobs backend, a plain key/value store keyed by
digests. Two backends are provided: DirStore keeps one file per snapshot,
PebbleStore keeps snapshots in a pebble database. Snapshots are serialized,
compressed with zstd and verified against their digest when loaded.

I/O failures are reported to the caller; there are no retries.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package store

import (
	"context"
	"errors"

	"github.com/npillmayer/cowtree/digest"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the global core-tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}

var (
	// ErrNotFound signals that no blob is stored for a digest.
	ErrNotFound = errors.New("store: not found")
	// ErrDigestMismatch signals a blob whose content does not hash to its key.
	ErrDigestMismatch = errors.New("store: digest mismatch")
	// ErrCorrupt signals a blob which cannot be decompressed.
	ErrCorrupt = errors.New("store: corrupt blob")
)

// Blobs is a key/value store for serialized snapshots.
type Blobs interface {
	Put(ctx context.Context, key digest.Digest, data []byte) error
	Get(ctx context.Context, key digest.Digest) ([]byte, error)
	Close() error
}
