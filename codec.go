package cowtree

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/npillmayer/cowtree/btree"
)

// MaxRecordSize bounds the encoded size of a single leaf entry.
const MaxRecordSize = 1 << 24

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// countPolicy orders keys naturally and aggregates entry counts.
type countPolicy[K cmp.Ordered, V any] struct {
	minSize, maxSize int
}

var _ btree.Policy[string, item[int]] = countPolicy[string, int]{}

func newCountPolicy[K cmp.Ordered, V any](minSize, maxSize int) (countPolicy[K, V], error) {
	if minSize < 2 || maxSize > btree.MaxFanout || 2*minSize > maxSize+1 {
		return countPolicy[K, V]{}, fmt.Errorf("%w: fan-out [%d,%d]", ErrIllegalArguments, minSize, maxSize)
	}
	return countPolicy[K, V]{minSize: minSize, maxSize: maxSize}, nil
}

func (p countPolicy[K, V]) MinSize() int     { return p.minSize }
func (p countPolicy[K, V]) MaxSize() int     { return p.maxSize }
func (p countPolicy[K, V]) Less(a, b K) bool { return cmp.Less(a, b) }

func (p countPolicy[K, V]) Total(values []item[V]) item[V] {
	var t item[V]
	for _, v := range values {
		t.Count += v.Count
	}
	return t
}

// record is the CBOR form of a leaf entry, a two-element array.
type record[K, V any] struct {
	_     struct{} `cbor:",toarray"`
	Key   K
	Value V
}

// Encode writes a leaf entry as a uvarint length followed by a deterministic
// CBOR array [key, value].
func (p countPolicy[K, V]) Encode(w io.Writer, key K, value item[V]) error {
	data, err := encMode.Marshal(record[K, V]{Key: key, Value: value.Value})
	if err != nil {
		return err
	}
	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(data)))
	if _, err = w.Write(hdr[:n]); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (p countPolicy[K, V]) Decode(r io.Reader) (K, item[V], error) {
	var rec record[K, V]
	br, ok := r.(io.ByteReader)
	if !ok {
		br = byteReader{r}
	}
	length, err := binary.ReadUvarint(br)
	if err != nil {
		return rec.Key, item[V]{}, err
	}
	if length > MaxRecordSize {
		return rec.Key, item[V]{}, fmt.Errorf("%w: %d bytes", ErrRecordTooLarge, length)
	}
	data := make([]byte, length)
	if _, err = io.ReadFull(r, data); err != nil {
		return rec.Key, item[V]{}, err
	}
	if err = decMode.Unmarshal(data, &rec); err != nil {
		return rec.Key, item[V]{}, err
	}
	return rec.Key, item[V]{Value: rec.Value, Count: 1}, nil
}

type byteReader struct {
	io.Reader
}

func (br byteReader) ReadByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(br.Reader, b[:])
	return b[0], err
}
