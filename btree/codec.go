package btree

import (
	"errors"
	"fmt"
	"io"
)

// Serialized format, depth-first pre-order:
//
//	tree := height:u8 [node]          (node present iff height > 0)
//	node := size:u8 entry{size}
//	entry := leaf entry (Policy.Encode) at height 0, else node
//
// There is no child table; the decoder derives the recursion depth from the
// tree height. Internal keys and aggregates are not stored, they are rebuilt
// from each decoded child.

// WriteTo serializes the snapshot. Errors of the underlying writer are
// wrapped in ErrWrite.
func (s Snapshot[K, V]) WriteTo(w io.Writer) (int64, error) {
	assert(s.height <= MaxFanout, "tree height exceeds serializable range")
	cw := &countingWriter{w: w}
	if err := writeByte(cw, byte(s.height)); err != nil {
		return cw.n, err
	}
	if s.height > 0 {
		if err := s.encodeNode(cw, s.root, s.height-1); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

func (s Snapshot[K, V]) encodeNode(w io.Writer, n *node[K, V], height int) error {
	if err := writeByte(w, byte(n.size())); err != nil {
		return err
	}
	for i := 0; i < n.size(); i++ {
		if height == 0 {
			if err := s.policy.Encode(w, n.keys[i], n.vals[i]); err != nil {
				if errors.Is(err, ErrWrite) {
					return err
				}
				return fmt.Errorf("%w: %w", ErrWrite, err)
			}
			continue
		}
		if err := s.encodeNode(w, n.kids[i], height-1); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrom decodes a tree serialized by Snapshot.WriteTo. The decoded tree is
// validated against the policy's occupancy bounds and key order.
func ReadFrom[K, V any](policy Policy[K, V], r io.Reader, opts ...Option) (*Tree[K, V], error) {
	t, err := New(policy, opts...)
	if err != nil {
		return nil, err
	}
	height, err := readByte(r)
	if err != nil {
		return nil, err
	}
	if height == 0 {
		return t, nil
	}
	root, size, err := t.decodeNode(r, int(height)-1, true)
	if err != nil {
		return nil, err
	}
	if !root.isLeaf() && root.size() < 2 {
		return nil, fmt.Errorf("%w: internal root with %d entries", ErrMalformed, root.size())
	}
	t.cur.Store(&state[K, V]{root: root, height: int(height), size: size})
	tracer().Debugf("btree: decoded tree of height %d with %d entries", height, size)
	return t, nil
}

func (t *Tree[K, V]) decodeNode(r io.Reader, height int, isRoot bool) (*node[K, V], int, error) {
	b, err := readByte(r)
	if err != nil {
		return nil, 0, err
	}
	size := int(b)
	if size == 0 || size > t.maxSize || (!isRoot && size < t.minSize) {
		return nil, 0, fmt.Errorf("%w: node size %d out of bounds [%d,%d]",
			ErrMalformed, size, t.minSize, t.maxSize)
	}
	n := t.newNode(height == 0)
	count := 0
	for i := 0; i < size; i++ {
		if height == 0 {
			k, v, err := t.policy.Decode(r)
			if err != nil {
				return nil, 0, decodeError(err)
			}
			n.keys = append(n.keys, k)
			n.vals = append(n.vals, v)
			count++
		} else {
			child, c, err := t.decodeNode(r, height-1, false)
			if err != nil {
				return nil, 0, err
			}
			n.keys = append(n.keys, child.keys[0])
			n.vals = append(n.vals, child.total)
			n.kids = append(n.kids, child)
			count += c
		}
		if i > 0 && !t.policy.Less(n.keys[i-1], n.keys[i]) {
			return nil, 0, fmt.Errorf("%w: keys out of order at height %d", ErrMalformed, height)
		}
	}
	t.recompute(n)
	return n, count, nil
}

// --- Helpers ---------------------------------------------------------------

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return n, nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, readError(err)
	}
	return buf[0], nil
}

func readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", ErrShortRead, io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("%w: %w", ErrRead, err)
}

// decodeError classifies an error reported by Policy.Decode.
func decodeError(err error) error {
	switch {
	case errors.Is(err, ErrShortRead), errors.Is(err, ErrRead), errors.Is(err, ErrMalformed):
		return err
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %w", ErrShortRead, err)
	}
	return fmt.Errorf("%w: leaf entry: %w", ErrMalformed, err)
}
