package btree

import (
	"math/rand"
	"testing"
)

type benchPolicy struct{ sumPolicy }

func (benchPolicy) MinSize() int { return 8 }
func (benchPolicy) MaxSize() int { return 16 }

func BenchmarkUpdateInsert(b *testing.B) {
	tree, err := New[int, int](benchPolicy{})
	if err != nil {
		b.Fatalf("setup failed: %v", err)
	}
	keys := rand.New(rand.NewSource(1)).Perm(b.N)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		put(tree, keys[i], i)
	}
}

func BenchmarkGet(b *testing.B) {
	tree, err := New[int, int](benchPolicy{})
	if err != nil {
		b.Fatalf("setup failed: %v", err)
	}
	const n = 1 << 16
	for i := 0; i < n; i++ {
		put(tree, i, i)
	}
	s := tree.Snapshot()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Get(i % n)
	}
}

func BenchmarkIterate(b *testing.B) {
	tree, err := New[int, int](benchPolicy{})
	if err != nil {
		b.Fatalf("setup failed: %v", err)
	}
	for i := 0; i < 10000; i++ {
		put(tree, i, i)
	}
	s := tree.Snapshot()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range s.All() {
		}
	}
}
