package btree

import "fmt"

// checkNodeStorage validates the storage layout of a node: parallel views of
// equal length, each backed by storage for MaxSize+1 entries, and child
// links present exactly for internal nodes.
func checkNodeStorage[K, V any](n *node[K, V], height int, maxSize int) error {
	if len(n.vals) != len(n.keys) {
		return fmt.Errorf("%w: value count mismatch (%d != %d)", ErrInvariant, len(n.vals), len(n.keys))
	}
	if cap(n.keys) != maxSize+1 || cap(n.vals) != maxSize+1 {
		return fmt.Errorf("%w: node storage capacity (%d, %d) != %d",
			ErrInvariant, cap(n.keys), cap(n.vals), maxSize+1)
	}
	if height == 0 {
		if n.kids != nil {
			return fmt.Errorf("%w: leaf with child links", ErrInvariant)
		}
		return nil
	}
	if n.kids == nil {
		return fmt.Errorf("%w: internal node without child links at height %d", ErrInvariant, height)
	}
	if len(n.kids) != len(n.keys) {
		return fmt.Errorf("%w: child count mismatch (%d != %d)", ErrInvariant, len(n.kids), len(n.keys))
	}
	if cap(n.kids) != maxSize+1 {
		return fmt.Errorf("%w: child storage capacity %d != %d", ErrInvariant, cap(n.kids), maxSize+1)
	}
	return nil
}
