package btree

import "slices"

// Cursor is a bidirectional position within one snapshot.
//
// It holds one (node, index) pair per level, from the root (level 0) down to
// a leaf, with nodes[i+1] == nodes[i].kids[index[i]]. The end position is
// represented by index[0] == root size only; the lower levels are
// meaningless then.
//
// A cursor is not safe for concurrent use, but any number of cursors may
// traverse the same snapshot concurrently.
type Cursor[K, V any] struct {
	less   func(a, b K) bool
	height int
	nodes  []*node[K, V]
	index  []int
}

func newCursor[K, V any](less func(a, b K) bool, root *node[K, V], height int) *Cursor[K, V] {
	c := &Cursor[K, V]{
		less:   less,
		height: height,
		nodes:  make([]*node[K, V], height),
		index:  make([]int, height),
	}
	if height > 0 {
		assert(root != nil, "cursor for non-empty tree without root")
		c.nodes[0] = root
		c.index[0] = root.size()
	}
	return c
}

// Clone returns an independent copy of the cursor.
func (c *Cursor[K, V]) Clone() *Cursor[K, V] {
	return &Cursor[K, V]{
		less:   c.less,
		height: c.height,
		nodes:  slices.Clone(c.nodes),
		index:  slices.Clone(c.index),
	}
}

// SetBegin moves the cursor to the first entry.
func (c *Cursor[K, V]) SetBegin() {
	if c.height == 0 {
		return
	}
	for i := 0; i+1 < c.height; i++ {
		c.index[i] = 0
		c.nodes[i+1] = c.nodes[i].kids[0]
	}
	c.index[c.height-1] = 0
}

// SetRBegin moves the cursor to the last entry.
func (c *Cursor[K, V]) SetRBegin() {
	if c.height == 0 {
		return
	}
	for i := 0; i+1 < c.height; i++ {
		c.index[i] = c.nodes[i].size() - 1
		c.nodes[i+1] = c.nodes[i].kids[c.index[i]]
	}
	c.index[c.height-1] = c.nodes[c.height-1].size() - 1
}

// SetEnd moves the cursor past the last entry.
func (c *Cursor[K, V]) SetEnd() {
	if c.height == 0 {
		return
	}
	c.index[0] = c.nodes[0].size()
}

// SetFind moves the cursor to key, or to the end if key is absent.
func (c *Cursor[K, V]) SetFind(key K) {
	if c.height == 0 {
		return
	}
	c.SetLowerBound(key)
	if c.IsEnd() {
		return
	}
	if c.less(key, c.Key()) {
		c.SetEnd()
	}
}

// SetLowerBound moves the cursor to the first entry not less than key.
func (c *Cursor[K, V]) SetLowerBound(key K) {
	if c.height == 0 {
		return
	}
	if !c.less(c.nodes[0].keys[0], key) {
		c.SetBegin()
		return
	}
	c.descend(key, (*node[K, V]).lowerBound)
}

// SetUpperBound moves the cursor to the first entry greater than key.
func (c *Cursor[K, V]) SetUpperBound(key K) {
	if c.height == 0 {
		return
	}
	if c.less(key, c.nodes[0].keys[0]) {
		c.SetBegin()
		return
	}
	c.descend(key, (*node[K, V]).upperBound)
}

// descend walks down to the last entry which is before the bound and then
// steps forward once. The first key of the tree has to be before the bound.
func (c *Cursor[K, V]) descend(key K, bound func(*node[K, V], K, func(a, b K) bool) int) {
	for i := 0; i+1 < c.height; i++ {
		c.index[i] = bound(c.nodes[i], key, c.less) - 1
		c.nodes[i+1] = c.nodes[i].kids[c.index[i]]
	}
	leaf := c.height - 1
	c.index[leaf] = bound(c.nodes[leaf], key, c.less) - 1
	c.Next()
}

// Next advances the cursor by one entry. It panics at the end.
func (c *Cursor[K, V]) Next() {
	assert(!c.IsEnd(), "cursor: Next called at end")
	cur := c.height - 1
	c.index[cur]++
	for c.index[cur] == c.nodes[cur].size() {
		if cur == 0 {
			return // end
		}
		cur--
		c.index[cur]++
	}
	for cur++; cur < c.height; cur++ {
		c.nodes[cur] = c.nodes[cur-1].kids[c.index[cur-1]]
		c.index[cur] = 0
	}
}

// Prev moves the cursor back by one entry. At the end it moves to the last
// entry. At the first entry Prev does nothing.
func (c *Cursor[K, V]) Prev() {
	if c.IsEnd() {
		c.SetRBegin()
		return
	}
	cur := c.height - 1
	for c.index[cur] == 0 {
		if cur == 0 {
			return
		}
		cur--
	}
	c.index[cur]--
	for cur++; cur < c.height; cur++ {
		c.nodes[cur] = c.nodes[cur-1].kids[c.index[cur-1]]
		c.index[cur] = c.nodes[cur].size() - 1
	}
}

// IsEnd reports whether the cursor is past the last entry. Cursors over an
// empty tree are always at the end.
func (c *Cursor[K, V]) IsEnd() bool {
	return c.height == 0 || c.index[0] == c.nodes[0].size()
}

// AtBegin reports whether the cursor is at the first entry.
func (c *Cursor[K, V]) AtBegin() bool {
	if c.IsEnd() {
		return false
	}
	for _, i := range c.index {
		if i != 0 {
			return false
		}
	}
	return true
}

// Key returns the key at the cursor position. It panics at the end.
func (c *Cursor[K, V]) Key() K {
	assert(!c.IsEnd(), "cursor: Key called at end")
	leaf := c.height - 1
	return c.nodes[leaf].keys[c.index[leaf]]
}

// Value returns the value at the cursor position. It panics at the end.
func (c *Cursor[K, V]) Value() V {
	assert(!c.IsEnd(), "cursor: Value called at end")
	leaf := c.height - 1
	return c.nodes[leaf].vals[c.index[leaf]]
}

// Equal reports whether two cursors denote the same position of the same
// snapshot. All cursors over empty trees are equal.
func (c *Cursor[K, V]) Equal(other *Cursor[K, V]) bool {
	if c.height != other.height {
		return false
	}
	if c.height == 0 {
		return true
	}
	if c.nodes[0] != other.nodes[0] {
		return false
	}
	if c.IsEnd() || other.IsEnd() {
		return c.IsEnd() && other.IsEnd()
	}
	return slices.Equal(c.index, other.index)
}
