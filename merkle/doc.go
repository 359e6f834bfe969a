/*
Package merkle implements an authenticated map from strings to strings.

The map is a copy-on-write B-tree whose aggregate is a SHA-256 digest. A leaf
entry is hashed as

	SHA-256( u32be(len(key)) ‖ key ‖ value )

and every node carries the digest of the concatenated hashes of its entries
(entry hashes for leaves, child totals for internal nodes). The root digest
covers every entry and the node boundaries of the tree. Node boundaries
depend on the order of updates, so maps with equal entries but different
update histories may differ in their root hashes. Equal histories, and a
map and its decoded copy, always agree.

Maps are persistent: Put and Delete publish a new version, and snapshots or
cursors obtained earlier keep seeing the version they were created from.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package merkle

import (
	"errors"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the global core-tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}

var (
	// ErrTooLong signals a key or value exceeding MaxFieldSize.
	ErrTooLong = errors.New("merkle: field too long")
	// ErrHashMismatch signals an entry whose hash does not match its content.
	ErrHashMismatch = errors.New("merkle: hash mismatch")
)
