package btree

import (
	"sync/atomic"
)

// Tree is a handle to a persistent B-tree.
//
// The handle owns one published state: root node, height and element count.
// Update replaces that state as a whole; states and the nodes they reach
// are never modified afterwards. Reading the state (Snapshot, Len, Get, …) is
// safe concurrently with one writer. Concurrent writers on the same handle
// must be serialized by the client.
//
// A Tree must not be copied after first use; use Clone to fork it.
type Tree[K, V any] struct {
	policy  Policy[K, V]
	minSize int
	maxSize int
	opts    options
	cur     atomic.Pointer[state[K, V]]
}

// state is an immutable (root, height, size) triple. height is 0 for the
// empty tree and 1 for a tree consisting of a single leaf.
type state[K, V any] struct {
	root   *node[K, V]
	height int
	size   int
}

// New creates an empty tree for a validated policy.
func New[K, V any](policy Policy[K, V], opts ...Option) (*Tree[K, V], error) {
	if err := validatePolicy(policy); err != nil {
		return nil, err
	}
	t := &Tree[K, V]{
		policy:  policy,
		minSize: policy.MinSize(),
		maxSize: policy.MaxSize(),
	}
	for _, opt := range opts {
		opt(&t.opts)
	}
	t.cur.Store(&state[K, V]{})
	return t, nil
}

// Policy returns the policy of the tree.
func (t *Tree[K, V]) Policy() Policy[K, V] {
	return t.policy
}

// Clone forks the tree in O(1). Both handles share all nodes and may be
// updated independently afterwards.
func (t *Tree[K, V]) Clone() *Tree[K, V] {
	c := &Tree[K, V]{
		policy:  t.policy,
		minSize: t.minSize,
		maxSize: t.maxSize,
		opts:    t.opts,
	}
	c.cur.Store(t.load())
	return c
}

// Fork creates a new tree handle whose initial state is the snapshot.
func (s Snapshot[K, V]) Fork(opts ...Option) (*Tree[K, V], error) {
	t, err := New(s.policy, opts...)
	if err != nil {
		return nil, err
	}
	t.cur.Store(&state[K, V]{root: s.root, height: s.height, size: s.size})
	return t, nil
}

func (t *Tree[K, V]) load() *state[K, V] {
	if s := t.cur.Load(); s != nil {
		return s
	}
	return &state[K, V]{}
}

// Snapshot captures the current state of the tree.
func (t *Tree[K, V]) Snapshot() Snapshot[K, V] {
	s := t.load()
	return Snapshot[K, V]{
		policy: t.policy,
		root:   s.root,
		height: s.height,
		size:   s.size,
	}
}

// Len returns the number of entries.
func (t *Tree[K, V]) Len() int { return t.load().size }

// Height returns the tree height, where 0 means empty and 1 means a single leaf.
func (t *Tree[K, V]) Height() int { return t.load().height }

// Total returns the aggregate over all entries, and false for an empty tree.
func (t *Tree[K, V]) Total() (V, bool) {
	return t.Snapshot().Total()
}

// Get returns the value stored for key.
func (t *Tree[K, V]) Get(key K) (V, bool) {
	return t.Snapshot().Get(key)
}

// Update applies fn to the entry for key and publishes the resulting tree.
// It returns false, leaving the tree unchanged, if fn reports no change.
func (t *Tree[K, V]) Update(key K, fn Updater[V]) bool {
	cur := t.load()
	if cur.height == 0 {
		var zero V
		value, keep, changed := fn(zero, false)
		if !changed || !keep {
			return false
		}
		leaf := t.newNode(true)
		leaf.insertAt(0, key, value, nil)
		t.recompute(leaf)
		t.notify(Insert, 0)
		t.cur.Store(&state[K, V]{root: leaf, height: 1, size: 1})
		return true
	}
	root := t.clone(cur.root)
	r := t.update(root, key, nil, fn, cur.height-1)
	t.notify(r.kind, cur.height-1)
	next := &state[K, V]{root: root, height: cur.height, size: cur.size}
	switch r.kind {
	case Nop:
		return false
	case Modify:
	case Insert:
		next.size++
	case Erase:
		next.size--
	case Split:
		next.root = t.makeRoot(root, r.overflow)
		next.height++
		next.size++
		tracer().Debugf("btree: root split, height now %d", next.height)
	case Singular:
		next.root = root.kids[0]
		next.height--
		next.size--
		tracer().Debugf("btree: root collapsed, height now %d", next.height)
	case Empty:
		next = &state[K, V]{}
		tracer().Debugf("btree: tree is empty")
	default:
		assert(false, "unexpected root outcome "+r.kind.String())
	}
	t.cur.Store(next)
	return true
}
