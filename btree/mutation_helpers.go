package btree

// newNode allocates an empty node with room for one overflowing entry.
func (t *Tree[K, V]) newNode(leaf bool) *node[K, V] {
	capacity := t.maxSize + 1
	n := &node[K, V]{
		keys: make([]K, 0, capacity),
		vals: make([]V, 0, capacity),
	}
	if !leaf {
		n.kids = make([]*node[K, V], 0, capacity)
	}
	return n
}

// clone returns a private, writable copy of n. Child links are shared.
func (t *Tree[K, V]) clone(n *node[K, V]) *node[K, V] {
	assert(n != nil, "clone called with nil node")
	c := t.newNode(n.isLeaf())
	c.keys = append(c.keys, n.keys...)
	c.vals = append(c.vals, n.vals...)
	if !n.isLeaf() {
		c.kids = append(c.kids, n.kids...)
	}
	c.total = n.total
	return c
}

// makeRoot creates a new root over two nodes of identical height.
func (t *Tree[K, V]) makeRoot(left, right *node[K, V]) *node[K, V] {
	root := t.newNode(false)
	root.insertAt(0, left.keys[0], left.total, left)
	root.insertAt(1, right.keys[0], right.total, right)
	t.recompute(root)
	return root
}

func (t *Tree[K, V]) recompute(n *node[K, V]) {
	n.total = t.policy.Total(n.vals)
}

// insertAt inserts v at index i, shifting the tail. The slice must have
// spare capacity.
func insertAt[T any](s []T, i int, v T) []T {
	assert(i >= 0 && i <= len(s), "insertAt index out of range")
	assert(len(s) < cap(s), "insertAt exceeds node capacity")
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// removeAt removes index i and clears the vacated slot, so that the backing
// array does not keep the element alive.
func removeAt[T any](s []T, i int) []T {
	assert(i >= 0 && i < len(s), "removeAt index out of range")
	copy(s[i:], s[i+1:])
	var zero T
	s[len(s)-1] = zero
	return s[:len(s)-1]
}
