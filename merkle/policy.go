package merkle

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/npillmayer/cowtree/btree"
	"github.com/npillmayer/cowtree/digest"
)

// Fan-out bounds of the tree nodes.
const (
	MinSize = 8
	MaxSize = 16
)

// MaxFieldSize bounds the length of keys and values in the serialized form.
const MaxFieldSize = 1 << 24

// Entry is the value type of the underlying tree. For leaves it holds the
// user value and the entry hash; for internal nodes Value is empty and Hash
// is the total of the child.
type Entry struct {
	Value string
	Hash  digest.Digest
}

// leafHash is SHA-256(u32be(len(key)) ‖ key ‖ value).
func leafHash(key, value string) digest.Digest {
	h := digest.NewHasher()
	h.WriteUint32(uint32(len(key)))
	h.WriteString(key)
	h.WriteString(value)
	return h.Sum()
}

func leafEntry(key, value string) Entry {
	return Entry{Value: value, Hash: leafHash(key, value)}
}

type policy struct{}

var _ btree.Policy[string, Entry] = policy{}

func (policy) MinSize() int          { return MinSize }
func (policy) MaxSize() int          { return MaxSize }
func (policy) Less(a, b string) bool { return a < b }

// Total hashes the concatenated entry hashes.
func (policy) Total(values []Entry) Entry {
	h := digest.NewHasher()
	for i := range values {
		h.WriteDigest(values[i].Hash)
	}
	return Entry{Hash: h.Sum()}
}

// Encode writes u32be(len(key)) ‖ key ‖ u32be(len(value)) ‖ value.
// The entry hash is not stored.
func (policy) Encode(w io.Writer, key string, e Entry) error {
	if len(key) > MaxFieldSize || len(e.Value) > MaxFieldSize {
		return fmt.Errorf("%w: key of %d bytes, value of %d bytes", ErrTooLong, len(key), len(e.Value))
	}
	if err := writeField(w, key); err != nil {
		return err
	}
	return writeField(w, e.Value)
}

// Decode reads an entry written by Encode and recomputes its hash.
func (policy) Decode(r io.Reader) (string, Entry, error) {
	key, err := readField(r)
	if err != nil {
		return "", Entry{}, err
	}
	value, err := readField(r)
	if err != nil {
		return "", Entry{}, err
	}
	return key, leafEntry(key, value), nil
}

func writeField(w io.Writer, s string) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(s)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readField(r io.Reader) (string, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFieldSize {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLong, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
