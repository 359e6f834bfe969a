/*
Package btree provides a generic, persistent (copy-on-write) B-tree.

Every mutation clones the path from the root to the affected leaf and
publishes a new root; previously obtained snapshots stay intact and can be
iterated independently of, and concurrently with, later writes.

A tree is parameterized by a Policy, which supplies the key order, the node
fan-out bounds, an aggregate ("total") function over a node's values and a
codec for leaf entries. Internal nodes store, for every child, the child's
first key and the child's total, so the policy's value type doubles as the
aggregate type. A counting policy yields an ordinary ordered map, a hashing
policy yields an authenticated (Merkle) map.

Structure:
  - Node: capacity-bounded sorted arrays of keys, values and child links,
    plus the cached total. Nodes are immutable once published.
  - Tree: a handle owning one atomically published (root, height, size)
    state. Update drives one top-level recursive update and handles root
    growth (split) and shrinkage (singular, empty).
  - Cursor: a stack of (node, index) pairs over one Snapshot, with
    begin/end/bound positioning and bidirectional stepping.

Concurrency model: any number of goroutines may read snapshots and move
cursors while a single goroutine updates the tree handle. Writers on the
same handle must be serialized by the client.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package btree

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the global core-tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
