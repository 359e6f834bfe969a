package merkle

import (
	"io"
	"iter"

	"github.com/npillmayer/cowtree/btree"
	"github.com/npillmayer/cowtree/digest"
)

// Map is an authenticated, persistent map from strings to strings.
//
// Reads may run concurrently with a single writer. Writers have to be
// serialized by the client (see package snapshot for a serializing
// publisher).
type Map struct {
	tree *btree.Tree[string, Entry]
}

// New creates an empty map. Options are handed to the underlying tree.
func New(opts ...btree.Option) *Map {
	tree, err := btree.New[string, Entry](policy{}, opts...)
	if err != nil {
		panic(err) // the policy constants are valid
	}
	return &Map{tree: tree}
}

// Put sets key to value and returns the previous value, if any. Setting a
// key to the value it already holds is a no-op which leaves the current
// version untouched.
func (m *Map) Put(key, value string) (prev string, existed bool) {
	m.tree.Update(key, func(cur Entry, exists bool) (Entry, bool, bool) {
		prev, existed = cur.Value, exists
		if exists && cur.Value == value {
			return cur, true, false
		}
		return leafEntry(key, value), true, true
	})
	return
}

// Delete removes key and returns the removed value, if any.
func (m *Map) Delete(key string) (prev string, existed bool) {
	m.tree.Update(key, func(cur Entry, exists bool) (Entry, bool, bool) {
		prev, existed = cur.Value, exists
		return cur, false, exists
	})
	return
}

// Get returns the value stored for key.
func (m *Map) Get(key string) (string, bool) {
	return m.Snapshot().Get(key)
}

// RootHash returns the digest of the current version, or the zero digest if
// the map is empty.
func (m *Map) RootHash() digest.Digest { return m.Snapshot().RootHash() }

func (m *Map) Len() int    { return m.tree.Len() }
func (m *Map) Height() int { return m.tree.Height() }

// Clone forks the map in constant time.
func (m *Map) Clone() *Map {
	return &Map{tree: m.tree.Clone()}
}

// Snapshot returns an immutable view of the current version.
func (m *Map) Snapshot() Snapshot {
	return Snapshot{s: m.tree.Snapshot()}
}

// Cursor positioning on the current version.

func (m *Map) Begin() *Cursor                 { return m.Snapshot().Begin() }
func (m *Map) End() *Cursor                   { return m.Snapshot().End() }
func (m *Map) Find(key string) *Cursor        { return m.Snapshot().Find(key) }
func (m *Map) LowerBound(key string) *Cursor  { return m.Snapshot().LowerBound(key) }
func (m *Map) UpperBound(key string) *Cursor  { return m.Snapshot().UpperBound(key) }
func (m *Map) All() iter.Seq2[string, string] { return m.Snapshot().All() }

// WriteTo serializes the current version.
func (m *Map) WriteTo(w io.Writer) (int64, error) {
	return m.Snapshot().WriteTo(w)
}

// ReadMap decodes a map serialized by WriteTo. Entry hashes are recomputed
// from the decoded keys and values.
func ReadMap(r io.Reader, opts ...btree.Option) (*Map, error) {
	tree, err := btree.ReadFrom[string, Entry](policy{}, r, opts...)
	if err != nil {
		tracer().Errorf("merkle: cannot decode map: %v", err)
		return nil, err
	}
	return &Map{tree: tree}, nil
}
