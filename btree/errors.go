package btree

import "errors"

var (
	// ErrInvalidConfig signals an invalid tree configuration or policy.
	ErrInvalidConfig = errors.New("btree: invalid configuration")
	// ErrInvariant signals a structural invariant violation found by Check.
	ErrInvariant = errors.New("btree: invariant violated")
	// ErrShortRead signals that a serialized tree ended prematurely.
	ErrShortRead = errors.New("btree: short read")
	// ErrRead signals a failure of the underlying reader during decoding.
	ErrRead = errors.New("btree: read failed")
	// ErrWrite signals a failure of the underlying writer during encoding.
	ErrWrite = errors.New("btree: write failed")
	// ErrMalformed signals a serialized tree which does not describe a valid tree.
	ErrMalformed = errors.New("btree: malformed encoding")
)
