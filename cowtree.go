package cowtree

/*
BSD 3-Clause License

Copyright (c) 2020–21, Norbert Pillmayer

Please refer to the License file in the repository root.

*/

import (
	"cmp"
	"fmt"
	"io"
	"iter"

	"github.com/npillmayer/cowtree/btree"
)

// Default fan-out bounds of a map's nodes.
const (
	DefaultMinSize = 8
	DefaultMaxSize = 16
)

// Map is a persistent ordered map.
//
// A map created by New is empty. Put and Delete publish a new version of the
// map; snapshots taken earlier are not affected. Reads may run concurrently
// with a single writer; writers have to be serialized by the client.
//
// Every node caches the number of entries below it, so the root total always
// equals Len.
type Map[K cmp.Ordered, V any] struct {
	tree *btree.Tree[K, item[V]]
}

// item is the value type of the underlying tree. For leaves it carries the
// user value and a count of 1, for internal nodes the zero value and the
// number of entries in the child.
type item[V any] struct {
	Value V
	Count int
}

// New creates an empty map with default fan-out.
func New[K cmp.Ordered, V any]() *Map[K, V] {
	m, err := NewWithFanout[K, V](DefaultMinSize, DefaultMaxSize)
	if err != nil {
		panic(err) // defaults are valid
	}
	return m
}

// NewWithFanout creates an empty map whose non-root nodes hold between
// minSize and maxSize entries.
func NewWithFanout[K cmp.Ordered, V any](minSize, maxSize int, opts ...btree.Option) (*Map[K, V], error) {
	policy, err := newCountPolicy[K, V](minSize, maxSize)
	if err != nil {
		return nil, err
	}
	tree, err := btree.New[K, item[V]](policy, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIllegalArguments, err)
	}
	return &Map[K, V]{tree: tree}, nil
}

// Put sets the value for key. It returns the previous value, if any.
func (m *Map[K, V]) Put(key K, value V) (prev V, existed bool) {
	m.tree.Update(key, func(cur item[V], exists bool) (item[V], bool, bool) {
		prev, existed = cur.Value, exists
		return item[V]{Value: value, Count: 1}, true, true
	})
	return
}

// Delete removes key. It returns the removed value, if any.
func (m *Map[K, V]) Delete(key K) (prev V, existed bool) {
	m.tree.Update(key, func(cur item[V], exists bool) (item[V], bool, bool) {
		prev, existed = cur.Value, exists
		return cur, false, exists
	})
	return
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	it, ok := m.tree.Get(key)
	return it.Value, ok
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.tree.Len() }

// Height returns the height of the underlying tree.
func (m *Map[K, V]) Height() int { return m.tree.Height() }

// Clone forks the map in constant time.
func (m *Map[K, V]) Clone() *Map[K, V] {
	return &Map[K, V]{tree: m.tree.Clone()}
}

// Snapshot returns an immutable view of the current version of the map.
func (m *Map[K, V]) Snapshot() Snapshot[K, V] {
	return Snapshot[K, V]{s: m.tree.Snapshot()}
}

// All iterates over the current version in ascending key order.
func (m *Map[K, V]) All() iter.Seq2[K, V] { return m.Snapshot().All() }

// Range iterates over the keys k of the current version with lo <= k < hi.
func (m *Map[K, V]) Range(lo, hi K) iter.Seq2[K, V] { return m.Snapshot().Range(lo, hi) }

// Check validates the structural invariants of the underlying tree.
func (m *Map[K, V]) Check() error {
	if err := m.tree.Check(); err != nil {
		return err
	}
	if total, ok := m.tree.Total(); ok && total.Count != m.Len() {
		return fmt.Errorf("%w: count aggregate %d != size %d", btree.ErrInvariant, total.Count, m.Len())
	}
	return nil
}

// --- Snapshot --------------------------------------------------------------

// Snapshot is an immutable version of a map.
type Snapshot[K cmp.Ordered, V any] struct {
	s btree.Snapshot[K, item[V]]
}

func (s Snapshot[K, V]) Len() int      { return s.s.Len() }
func (s Snapshot[K, V]) Height() int   { return s.s.Height() }
func (s Snapshot[K, V]) IsEmpty() bool { return s.s.IsEmpty() }

// Same reports whether two snapshots denote the identical version.
func (s Snapshot[K, V]) Same(other Snapshot[K, V]) bool { return s.s.Same(other.s) }

func (s Snapshot[K, V]) Get(key K) (V, bool) {
	it, ok := s.s.Get(key)
	return it.Value, ok
}

// All iterates over all entries in ascending key order.
func (s Snapshot[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, it := range s.s.All() {
			if !yield(k, it.Value) {
				return
			}
		}
	}
}

// Backward iterates over all entries in descending key order.
func (s Snapshot[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for k, it := range s.s.Backward() {
			if !yield(k, it.Value) {
				return
			}
		}
	}
}

// Range iterates over the keys k with lo <= k < hi in ascending order.
func (s Snapshot[K, V]) Range(lo, hi K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for c := s.s.LowerBound(lo); !c.IsEnd() && cmp.Less(c.Key(), hi); c.Next() {
			if !yield(c.Key(), c.Value().Value) {
				return
			}
		}
	}
}

// WriteTo serializes the snapshot. Leaf entries are CBOR encoded.
func (s Snapshot[K, V]) WriteTo(w io.Writer) (int64, error) {
	return s.s.WriteTo(w)
}

// ReadMap decodes a map serialized by Snapshot.WriteTo with the default
// fan-out.
func ReadMap[K cmp.Ordered, V any](r io.Reader) (*Map[K, V], error) {
	return ReadMapWithFanout[K, V](r, DefaultMinSize, DefaultMaxSize)
}

// ReadMapWithFanout decodes a map serialized by Snapshot.WriteTo. minSize
// and maxSize have to match the fan-out of the map which was written.
func ReadMapWithFanout[K cmp.Ordered, V any](r io.Reader, minSize, maxSize int, opts ...btree.Option) (*Map[K, V], error) {
	policy, err := newCountPolicy[K, V](minSize, maxSize)
	if err != nil {
		return nil, err
	}
	tree, err := btree.ReadFrom[K, item[V]](policy, r, opts...)
	if err != nil {
		T().Errorf("cowtree: cannot decode map: %v", err)
		return nil, err
	}
	return &Map[K, V]{tree: tree}, nil
}
