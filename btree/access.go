package btree

import "iter"

// Snapshot is an immutable view of a tree at one point in time.
//
// Snapshots are cheap values; they keep the nodes they reach alive and may
// be shared freely between goroutines.
type Snapshot[K, V any] struct {
	policy Policy[K, V]
	root   *node[K, V]
	height int
	size   int
}

// Len returns the number of entries.
func (s Snapshot[K, V]) Len() int { return s.size }

// Height returns the height of the snapshot, 0 for an empty tree.
func (s Snapshot[K, V]) Height() int { return s.height }

// IsEmpty reports whether the snapshot has no entries.
func (s Snapshot[K, V]) IsEmpty() bool { return s.root == nil }

// Same reports whether two snapshots share the same root node, i.e. are
// identical.
func (s Snapshot[K, V]) Same(other Snapshot[K, V]) bool {
	return s.root == other.root && s.height == other.height
}

// Total returns the root aggregate, and false for an empty tree.
func (s Snapshot[K, V]) Total() (V, bool) {
	if s.root == nil {
		var zero V
		return zero, false
	}
	return s.root.total, true
}

// Get returns the value stored for key.
func (s Snapshot[K, V]) Get(key K) (V, bool) {
	var zero V
	if s.root == nil {
		return zero, false
	}
	less := s.policy.Less
	n := s.root
	for h := s.height - 1; h > 0; h-- {
		n = n.kids[n.childFor(key, less)]
	}
	if i := n.find(key, less); i < n.size() {
		return n.vals[i], true
	}
	return zero, false
}

// Iter returns a cursor for the snapshot, positioned at the end.
func (s Snapshot[K, V]) Iter() *Cursor[K, V] {
	return newCursor(s.policy.Less, s.root, s.height)
}

// Begin returns a cursor positioned at the first entry.
func (s Snapshot[K, V]) Begin() *Cursor[K, V] {
	c := s.Iter()
	c.SetBegin()
	return c
}

// Last returns a cursor positioned at the last entry.
func (s Snapshot[K, V]) Last() *Cursor[K, V] {
	c := s.Iter()
	c.SetRBegin()
	return c
}

// End returns a cursor positioned past the last entry.
func (s Snapshot[K, V]) End() *Cursor[K, V] {
	return s.Iter()
}

// Find returns a cursor positioned at key, or at the end if key is absent.
func (s Snapshot[K, V]) Find(key K) *Cursor[K, V] {
	c := s.Iter()
	c.SetFind(key)
	return c
}

// LowerBound returns a cursor positioned at the first entry not less than key.
func (s Snapshot[K, V]) LowerBound(key K) *Cursor[K, V] {
	c := s.Iter()
	c.SetLowerBound(key)
	return c
}

// UpperBound returns a cursor positioned at the first entry greater than key.
func (s Snapshot[K, V]) UpperBound(key K) *Cursor[K, V] {
	c := s.Iter()
	c.SetUpperBound(key)
	return c
}

// All iterates over all entries in ascending key order.
func (s Snapshot[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for c := s.Begin(); !c.IsEnd(); c.Next() {
			if !yield(c.Key(), c.Value()) {
				return
			}
		}
	}
}

// Backward iterates over all entries in descending key order.
func (s Snapshot[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if s.root == nil {
			return
		}
		c := s.Last()
		for {
			if !yield(c.Key(), c.Value()) {
				return
			}
			if c.AtBegin() {
				return
			}
			c.Prev()
		}
	}
}
