package btree

import (
	"fmt"
	"io"
)

// MaxFanout is the largest node size the tree supports. The serialized
// format stores node sizes and the tree height in a single byte.
const MaxFanout = 255

// Policy is the extension point of a tree instantiation.
//
// MinSize and MaxSize bound the occupancy of every non-root node. They have
// to satisfy
//
//	2 <= MinSize,  2*MinSize <= MaxSize+1,  MaxSize <= MaxFanout
//
// MinSize 1 is not supported, although a B-tree in general permits it: an
// erase from a one-entry node would leave an empty non-root node. New
// rejects it with ErrInvalidConfig.
//
// Less has to be a strict weak order over keys.
//
// Total computes the aggregate of a node's values. For a leaf these are the
// user values, for an internal node the totals of its children. Total must
// be pure; the tree caches its result per node.
//
// Encode and Decode serialize a single leaf entry.
type Policy[K, V any] interface {
	MinSize() int
	MaxSize() int
	Less(a, b K) bool
	Total(values []V) V
	Encode(w io.Writer, key K, value V) error
	Decode(r io.Reader) (K, V, error)
}

// Option configures a tree.
type Option func(*options)

type options struct {
	observer func(o Outcome, level int)
}

// WithObserver installs a callback which is invoked for every per-level
// outcome of an update, from the leaf level upwards. Level 0 is the leaf
// level; the root reports at level height-1.
func WithObserver(fn func(o Outcome, level int)) Option {
	return func(opts *options) {
		opts.observer = fn
	}
}

func validatePolicy[K, V any](p Policy[K, V]) error {
	if p == nil {
		return fmt.Errorf("%w: policy is required", ErrInvalidConfig)
	}
	minSize, maxSize := p.MinSize(), p.MaxSize()
	if minSize < 2 {
		return fmt.Errorf("%w: min size must be >= 2, is %d", ErrInvalidConfig, minSize)
	}
	if 2*minSize > maxSize+1 {
		return fmt.Errorf("%w: max size %d too small for min size %d", ErrInvalidConfig, maxSize, minSize)
	}
	if maxSize > MaxFanout {
		return fmt.Errorf("%w: max size must be <= %d, is %d", ErrInvalidConfig, MaxFanout, maxSize)
	}
	return nil
}
