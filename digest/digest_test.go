package digest

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumMatchesSHA256(t *testing.T) {
	require := require.New(t)
	for _, s := range []string{"", "a", "hello world", string(make([]byte, 1000))} {
		require.Equal(Digest(sha256.Sum256([]byte(s))), Of(s))
	}
	// well-known digest of the empty string
	require.Equal("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Of("").String())
}

func TestParseRoundTrip(t *testing.T) {
	require := require.New(t)
	d := Of("cowtree")
	p, err := Parse(d.String())
	require.NoError(err)
	require.True(p.Equal(d))
	require.Equal(d.String()[:8], d.Short())

	_, err = Parse("abc")
	require.True(errors.Is(err, ErrInvalid))
	_, err = Parse(string(make([]byte, 64)))
	require.ErrorIs(err, ErrInvalid)
}

func TestOrder(t *testing.T) {
	require := require.New(t)
	var a, b Digest
	b[31] = 1
	require.True(a.Less(b))
	require.False(b.Less(a))
	require.Equal(0, a.Compare(a))
	require.Equal(-1, a.Compare(b))
	a[0] = 1
	require.True(b.Less(a))
	require.True(Zero.IsZero())
	require.False(a.IsZero())
}

func TestBitsAndFirstDiff(t *testing.T) {
	require := require.New(t)
	var d Digest
	d[0] = 0x80
	d[1] = 0x01
	require.Equal(1, d.Bit(0))
	require.Equal(0, d.Bit(1))
	require.Equal(1, d.Bit(15))
	require.Equal(Bits, d.FirstDiff(d))
	require.Equal(0, d.FirstDiff(Zero))
	e := d
	e[1] = 0x03
	require.Equal(14, d.FirstDiff(e))
	e = d
	e[31] ^= 0x01
	require.Equal(Bits-1, d.FirstDiff(e))
	require.Panics(func() { d.Bit(Bits) })

	h := Of("first diff")
	for i := 0; i < Bits; i++ {
		flipped := h
		flipped[i/8] ^= 0x80 >> (i % 8)
		require.Equal(i, h.FirstDiff(flipped))
		require.Equal(1-h.Bit(i), flipped.Bit(i))
	}
}

func TestHasher(t *testing.T) {
	require := require.New(t)
	h := NewHasher()
	h.WriteUint32(3)
	h.WriteString("key")
	h.Write([]byte("value"))
	want := Sum([]byte("\x00\x00\x00\x03keyvalue"))
	require.Equal(want, h.Sum())
	h.Reset()
	a, b := Of("a"), Of("b")
	h.WriteDigest(a)
	h.WriteDigest(b)
	require.Equal(Combine(a, b), h.Sum())
}
