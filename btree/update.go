package btree

// Updater decides the fate of the entry for a key.
//
// It receives the current value (the zero value if there is none) and
// whether the entry exists. It returns the new value, whether the entry
// should exist after the update, and whether anything changed at all. An
// update which reports no change, or which asks to keep a non-existing
// entry absent, is a no-op and leaves the tree untouched.
type Updater[V any] func(current V, exists bool) (value V, keep bool, changed bool)

// update applies fn to the entry for key within the subtree rooted at n,
// which has to be a private clone. peer is the sibling n may rebalance
// against; it is nil for the root. height is 0 for leaves.
//
// A Nop result leaves n and peer untouched. For Steal and Merge the result
// carries a rebalanced clone of peer, which the caller has to install.
func (t *Tree[K, V]) update(n *node[K, V], key K, peer *node[K, V], fn Updater[V], height int) result[K, V] {
	less := t.policy.Less
	if height == 0 {
		i := n.find(key, less)
		existed := i < n.size()
		var current V
		if existed {
			current = n.vals[i]
		}
		value, keep, changed := fn(current, existed)
		switch {
		case !changed || (!existed && !keep):
			return result[K, V]{kind: Nop}
		case existed && !keep:
			n.removeAt(i)
			return t.fixup(n, peer, height)
		case !existed:
			n.insertAt(n.lowerBound(key, less), key, value, nil)
			return t.maybeSplit(n)
		default:
			n.vals[i] = value
			t.recompute(n)
			return result[K, V]{kind: Modify}
		}
	}
	// prefer the right neighbour as peer, the left one for the last child
	i := n.childFor(key, less)
	pi := i + 1
	if i == n.size()-1 {
		pi = i - 1
	}
	assert(pi >= 0, "internal node without sibling for peer")
	child := t.clone(n.kids[i])
	r := t.update(child, key, n.kids[pi], fn, height-1)
	t.notify(r.kind, height-1)
	switch r.kind {
	case Nop:
		return r
	case Modify, Insert, Erase:
		n.assign(i, child)
		t.recompute(n)
		return r
	case Split:
		n.assign(i, child)
		n.insertAt(i+1, r.overflow.keys[0], r.overflow.total, r.overflow)
		return t.maybeSplit(n)
	case Steal:
		n.assign(pi, r.peer)
		n.assign(i, child)
		t.recompute(n)
		return result[K, V]{kind: Erase}
	case Merge:
		n.assign(pi, r.peer)
		n.removeAt(i)
		return t.fixup(n, peer, height)
	}
	assert(false, "unexpected child outcome "+r.kind.String())
	return result[K, V]{}
}

// maybeSplit finishes an insertion into n. If n overflows, its upper half
// moves to a new sibling, which is returned as overflow.
func (t *Tree[K, V]) maybeSplit(n *node[K, V]) result[K, V] {
	if n.size() <= t.maxSize {
		t.recompute(n)
		return result[K, V]{kind: Insert}
	}
	keep := n.size() / 2
	sibling := t.newNode(n.isLeaf())
	sibling.keys = append(sibling.keys, n.keys[keep:]...)
	sibling.vals = append(sibling.vals, n.vals[keep:]...)
	if !n.isLeaf() {
		sibling.kids = append(sibling.kids, n.kids[keep:]...)
	}
	n.truncate(keep)
	t.recompute(n)
	t.recompute(sibling)
	return result[K, V]{kind: Split, overflow: sibling}
}

// fixup restores the occupancy bound of n after an erase, either by
// stealing an entry from peer or by merging n into peer.
func (t *Tree[K, V]) fixup(n *node[K, V], peer *node[K, V], height int) result[K, V] {
	if n.size() >= t.minSize {
		t.recompute(n)
		return result[K, V]{kind: Erase}
	}
	if peer == nil { // n is the root, which may be under-full
		if n.size() == 0 {
			return result[K, V]{kind: Empty}
		}
		t.recompute(n)
		if height != 0 && n.size() == 1 {
			return result[K, V]{kind: Singular}
		}
		return result[K, V]{kind: Erase}
	}
	p := t.clone(peer)
	before := t.policy.Less(p.keys[0], n.keys[0])
	if p.size() > t.minSize {
		// move the peer's entry nearest to n across the boundary
		pi, at := 0, n.size()
		if before {
			pi, at = p.size()-1, 0
		}
		n.insertAt(at, p.keys[pi], p.vals[pi], p.kid(pi))
		p.removeAt(pi)
		t.recompute(n)
		t.recompute(p)
		return result[K, V]{kind: Steal, peer: p}
	}
	for j := 0; j < n.size(); j++ {
		at := j
		if before {
			at = p.size()
		}
		p.insertAt(at, n.keys[j], n.vals[j], n.kid(j))
	}
	t.recompute(p)
	return result[K, V]{kind: Merge, peer: p}
}

func (t *Tree[K, V]) notify(o Outcome, level int) {
	if t.opts.observer != nil {
		t.opts.observer(o, level)
	}
}
