package btree

import "sort"

// node is a sorted array of (key, value, child) triples with a cached total.
//
// keys, vals and kids are views over storage allocated with capacity
// MaxSize+1: a node may transiently hold one entry too many before it is
// split. kids is nil for leaves. For an internal node keys[i] is the first key
// of kids[i] and vals[i] is the total of kids[i].
//
// A node is never modified after it has been linked into a published tree;
// changes go through a private clone.
type node[K, V any] struct {
	total V
	keys  []K
	vals  []V
	kids  []*node[K, V]
}

func (n *node[K, V]) size() int    { return len(n.keys) }
func (n *node[K, V]) isLeaf() bool { return n.kids == nil }

func (n *node[K, V]) kid(i int) *node[K, V] {
	if n.kids == nil {
		return nil
	}
	return n.kids[i]
}

// lowerBound returns the index of the first key not less than k.
func (n *node[K, V]) lowerBound(k K, less func(a, b K) bool) int {
	return sort.Search(len(n.keys), func(i int) bool {
		return !less(n.keys[i], k)
	})
}

// upperBound returns the index of the first key greater than k.
func (n *node[K, V]) upperBound(k K, less func(a, b K) bool) int {
	return sort.Search(len(n.keys), func(i int) bool {
		return less(k, n.keys[i])
	})
}

// find returns the index of k, or size() if k is not present.
func (n *node[K, V]) find(k K, less func(a, b K) bool) int {
	i := n.lowerBound(k, less)
	if i < len(n.keys) && !less(k, n.keys[i]) {
		return i
	}
	return len(n.keys)
}

// childFor returns the index of the child owning k: the last child whose
// first key is not greater than k, or the first child.
func (n *node[K, V]) childFor(k K, less func(a, b K) bool) int {
	i := n.upperBound(k, less)
	if i != 0 {
		i--
	}
	return i
}

func (n *node[K, V]) insertAt(i int, k K, v V, child *node[K, V]) {
	n.keys = insertAt(n.keys, i, k)
	n.vals = insertAt(n.vals, i, v)
	if n.kids != nil {
		n.kids = insertAt(n.kids, i, child)
	}
}

func (n *node[K, V]) removeAt(i int) {
	n.keys = removeAt(n.keys, i)
	n.vals = removeAt(n.vals, i)
	if n.kids != nil {
		n.kids = removeAt(n.kids, i)
	}
}

// truncate drops all entries from index size on.
func (n *node[K, V]) truncate(size int) {
	clear(n.keys[size:])
	clear(n.vals[size:])
	n.keys = n.keys[:size]
	n.vals = n.vals[:size]
	if n.kids != nil {
		clear(n.kids[size:])
		n.kids = n.kids[:size]
	}
}

// assign links child into slot i, refreshing the slot's key and aggregate.
func (n *node[K, V]) assign(i int, child *node[K, V]) {
	n.keys[i] = child.keys[0]
	n.vals[i] = child.total
	n.kids[i] = child
}

// --- Update outcomes -------------------------------------------------------

// Outcome tells what happened to a node during an update.
type Outcome uint8

const (
	Nop      Outcome = iota // nothing changed
	Modify                  // an existing entry got a new value
	Insert                  // an entry was inserted, no split needed
	Erase                   // an entry was erased, no effect on the peer
	Split                   // the node overflowed and has been split
	Steal                   // erased, then borrowed one entry from the peer
	Merge                   // erased, then merged into the peer
	Singular                // root is down to a single child
	Empty                   // root is empty
)

var outcomeNames = [...]string{"nop", "modify", "insert", "erase", "split", "steal", "merge", "singular", "empty"}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// result is what a recursive update reports to its parent.
//
// overflow is set for Split and holds the new right sibling. peer is set for
// Steal and Merge and holds the replacement for the peer node which was handed
// down; the parent installs it in the peer's slot.
type result[K, V any] struct {
	kind     Outcome
	overflow *node[K, V]
	peer     *node[K, V]
}
