package merkle

import (
	"fmt"
	"io"
	"iter"

	"github.com/npillmayer/cowtree/btree"
	"github.com/npillmayer/cowtree/digest"
)

// Snapshot is an immutable version of a map. It may be shared between
// goroutines.
type Snapshot struct {
	s btree.Snapshot[string, Entry]
}

// RootHash returns the digest of the snapshot, or the zero digest if it is
// empty.
func (s Snapshot) RootHash() digest.Digest {
	total, ok := s.s.Total()
	if !ok {
		return digest.Zero
	}
	return total.Hash
}

func (s Snapshot) Len() int      { return s.s.Len() }
func (s Snapshot) Height() int   { return s.s.Height() }
func (s Snapshot) IsEmpty() bool { return s.s.IsEmpty() }

// Same reports whether two snapshots share their root node.
func (s Snapshot) Same(other Snapshot) bool { return s.s.Same(other.s) }

// Get returns the value stored for key.
func (s Snapshot) Get(key string) (string, bool) {
	e, ok := s.s.Get(key)
	return e.Value, ok
}

func (s Snapshot) Begin() *Cursor                { return &Cursor{c: s.s.Begin()} }
func (s Snapshot) Last() *Cursor                 { return &Cursor{c: s.s.Last()} }
func (s Snapshot) End() *Cursor                  { return &Cursor{c: s.s.End()} }
func (s Snapshot) Find(key string) *Cursor       { return &Cursor{c: s.s.Find(key)} }
func (s Snapshot) LowerBound(key string) *Cursor { return &Cursor{c: s.s.LowerBound(key)} }
func (s Snapshot) UpperBound(key string) *Cursor { return &Cursor{c: s.s.UpperBound(key)} }

// All iterates over all entries in ascending key order.
func (s Snapshot) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for k, e := range s.s.All() {
			if !yield(k, e.Value) {
				return
			}
		}
	}
}

// WriteTo serializes the snapshot.
func (s Snapshot) WriteTo(w io.Writer) (int64, error) {
	return s.s.WriteTo(w)
}

// Verify checks the tree structure and recomputes every leaf hash.
func (s Snapshot) Verify() error {
	if err := s.s.Check(); err != nil {
		return err
	}
	for k, e := range s.s.All() {
		if e.Hash != leafHash(k, e.Value) {
			return fmt.Errorf("%w: entry %q", ErrHashMismatch, k)
		}
	}
	return nil
}

// Fork returns a map whose current version is the snapshot. Options are
// handed to the underlying tree.
func (s Snapshot) Fork(opts ...btree.Option) *Map {
	if s.s.Len() == 0 && s.s.Height() == 0 {
		return New(opts...)
	}
	tree, err := s.s.Fork(opts...)
	if err != nil {
		panic(err) // the policy constants are valid
	}
	return &Map{tree: tree}
}

// Dot writes the node structure in Graphviz DOT format.
func (s Snapshot) Dot(w io.Writer) error { return s.s.Dot(w) }

// Dump writes an indented listing of the nodes.
func (s Snapshot) Dump(w io.Writer, colored bool) error { return s.s.Dump(w, colored) }

// --- Cursor ----------------------------------------------------------------

// Cursor is a bidirectional position within a snapshot. Next, Key, Value
// and Hash panic if the cursor is not Valid.
type Cursor struct {
	c *btree.Cursor[string, Entry]
}

func (c *Cursor) Next()         { c.c.Next() }
func (c *Cursor) Valid() bool   { return !c.c.IsEnd() }
func (c *Cursor) Key() string   { return c.c.Key() }
func (c *Cursor) Value() string { return c.c.Value().Value }

// Prev moves back by one entry. From the end it moves to the last entry; at
// the first entry it does nothing.
func (c *Cursor) Prev() { c.c.Prev() }

// Hash returns the entry hash at the cursor position.
func (c *Cursor) Hash() digest.Digest { return c.c.Value().Hash }

// Equal reports whether two cursors denote the same position of the same
// snapshot.
func (c *Cursor) Equal(other *Cursor) bool { return c.c.Equal(other.c) }

// Clone returns an independent copy of the cursor.
func (c *Cursor) Clone() *Cursor { return &Cursor{c: c.c.Clone()} }
