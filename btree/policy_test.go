package btree

import (
	"encoding/binary"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// concatPolicy maps strings to strings. A node's total is the concatenation
// of its values, so the root total equals the concatenation of all values in
// key order.
type concatPolicy struct {
	min, max int
}

func (p concatPolicy) MinSize() int                 { return p.min }
func (p concatPolicy) MaxSize() int                 { return p.max }
func (p concatPolicy) Less(a, b string) bool        { return a < b }
func (p concatPolicy) Total(values []string) string { return strings.Join(values, "") }

func (p concatPolicy) Encode(w io.Writer, key, value string) error {
	if err := writeString(w, key); err != nil {
		return err
	}
	return writeString(w, value)
}

func (p concatPolicy) Decode(r io.Reader) (string, string, error) {
	k, err := readString(r)
	if err != nil {
		return "", "", err
	}
	v, err := readString(r)
	if err != nil {
		return "", "", err
	}
	return k, v, nil
}

func writeString(w io.Writer, s string) error {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(s)))
	if _, err := w.Write(buf[:n]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var length uint64
	var shift uint
	for {
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", err
		}
		length |= uint64(b[0]&0x7f) << shift
		if b[0] < 0x80 {
			break
		}
		shift += 7
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// sumPolicy maps ints to ints, totals are sums.
type sumPolicy struct{}

func (sumPolicy) MinSize() int       { return 2 }
func (sumPolicy) MaxSize() int       { return 4 }
func (sumPolicy) Less(a, b int) bool { return a < b }

func (sumPolicy) Total(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return sum
}

func (sumPolicy) Encode(w io.Writer, key, value int) error {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(key))
	binary.BigEndian.PutUint64(buf[8:], uint64(value))
	_, err := w.Write(buf[:])
	return err
}

func (sumPolicy) Decode(r io.Reader) (int, int, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, 0, err
	}
	return int(binary.BigEndian.Uint64(buf[:8])), int(binary.BigEndian.Uint64(buf[8:])), nil
}

// --- Test helpers ----------------------------------------------------------

func traceTo(t *testing.T) func() {
	t.Helper()
	gtrace.CoreTracer = gotestingadapter.New()
	teardown := gotestingadapter.RedirectTracing(t)
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)
	return teardown
}

func newStringTree(t testing.TB, min, max int, opts ...Option) *Tree[string, string] {
	t.Helper()
	tree, err := New[string, string](concatPolicy{min: min, max: max}, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tree
}

func put[K, V any](tree *Tree[K, V], key K, value V) bool {
	return tree.Update(key, func(_ V, _ bool) (V, bool, bool) {
		return value, true, true
	})
}

func del[K, V any](tree *Tree[K, V], key K) bool {
	return tree.Update(key, func(current V, exists bool) (V, bool, bool) {
		return current, false, exists
	})
}

func keysOf[K, V any](s Snapshot[K, V]) []K {
	var keys []K
	for k := range s.All() {
		keys = append(keys, k)
	}
	return keys
}

func mustCheck[K, V any](t *testing.T, tree *Tree[K, V]) {
	t.Helper()
	if err := tree.Check(); err != nil {
		t.Fatalf("invariant check failed: %v", err)
	}
}

func decimal(i int) string { return strconv.Itoa(i) }
