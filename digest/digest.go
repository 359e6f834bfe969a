/*
Package digest provides a fixed-width 256-bit hash value.

A Digest is an opaque, totally ordered value. It is produced by SHA-256 and
used as the aggregate of authenticated trees and as the content address of
persisted snapshots.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package digest

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"math/bits"

	sha256 "github.com/minio/sha256-simd"
)

// Size is the width of a digest in bytes.
const Size = 32

// Bits is the width of a digest in bits.
const Bits = 8 * Size

// Digest is a SHA-256 hash value.
type Digest [Size]byte

// ErrInvalid signals a string which is not the hex form of a digest.
var ErrInvalid = errors.New("digest: invalid hex digest")

// Zero is the all-zero digest.
var Zero Digest

// Sum returns the SHA-256 digest of data.
func Sum(data []byte) Digest {
	return Digest(sha256.Sum256(data))
}

// Of returns the SHA-256 digest of s.
func Of(s string) Digest {
	return Sum([]byte(s))
}

// Combine returns the digest of the concatenation of a and b.
func Combine(a, b Digest) Digest {
	var buf [2 * Size]byte
	copy(buf[:Size], a[:])
	copy(buf[Size:], b[:])
	return Sum(buf[:])
}

// Parse reads the hex form of a digest, as produced by String.
func Parse(s string) (Digest, error) {
	var d Digest
	if hex.DecodedLen(len(s)) != Size {
		return d, fmt.Errorf("%w: length %d", ErrInvalid, len(s))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return d, nil
}

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 8 hex digits, for display.
func (d Digest) Short() string { return hex.EncodeToString(d[:4]) }

func (d Digest) IsZero() bool            { return d == Zero }
func (d Digest) Equal(other Digest) bool { return d == other }
func (d Digest) Less(other Digest) bool  { return d.Compare(other) < 0 }

// Compare orders digests lexicographically by bytes, i.e. as big-endian
// unsigned integers.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// Bit returns bit i (0 or 1), counting from the most significant bit of the
// first byte.
func (d Digest) Bit(i int) int {
	if i < 0 || i >= Bits {
		panic(fmt.Sprintf("digest: bit index %d out of range", i))
	}
	return int(d[i/8]>>(7-uint(i%8))) & 1
}

// FirstDiff returns the index of the first bit in which d and other
// differ, MSB first. It returns Bits if the digests are equal.
func (d Digest) FirstDiff(other Digest) int {
	for i := 0; i < Size; i++ {
		if x := d[i] ^ other[i]; x != 0 {
			return 8*i + bits.LeadingZeros8(x)
		}
	}
	return Bits
}

// --- Hasher ----------------------------------------------------------------

// Hasher accumulates input for a single digest.
type Hasher struct {
	h hash.Hash
}

// NewHasher returns an empty SHA-256 hasher.
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

// Write appends p. It never fails.
func (h *Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// WriteString appends s.
func (h *Hasher) WriteString(s string) {
	h.h.Write([]byte(s))
}

// WriteUint32 appends x in big-endian byte order.
func (h *Hasher) WriteUint32(x uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], x)
	h.h.Write(buf[:])
}

// WriteDigest appends d.
func (h *Hasher) WriteDigest(d Digest) {
	h.h.Write(d[:])
}

// Sum returns the digest of everything written so far.
func (h *Hasher) Sum() Digest {
	var d Digest
	h.h.Sum(d[:0])
	return d
}

// Reset clears the hasher for reuse.
func (h *Hasher) Reset() {
	h.h.Reset()
}
