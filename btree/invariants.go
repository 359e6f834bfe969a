package btree

import (
	"fmt"
	"reflect"
)

// Check validates the structural invariants of the current tree state.
func (t *Tree[K, V]) Check() error {
	return t.Snapshot().check(t.minSize, t.maxSize)
}

// Check validates the structural invariants of a snapshot:
//   - every node's total equals the policy's aggregate over its values,
//   - internal entries carry the first key and the total of their child,
//   - keys are strictly ascending,
//   - all leaves are at depth height-1 and every non-root node is within
//     the policy's occupancy bounds,
//   - the element count matches the number of leaf entries.
//
// This checker is intended for tests; it visits every node.
func (s Snapshot[K, V]) Check() error {
	if s.policy == nil {
		return s.check(0, 0)
	}
	return s.check(s.policy.MinSize(), s.policy.MaxSize())
}

func (s Snapshot[K, V]) check(minSize, maxSize int) error {
	if s.root == nil {
		if s.height != 0 || s.size != 0 {
			return fmt.Errorf("%w: empty tree must have height=0 and size=0", ErrInvariant)
		}
		return nil
	}
	if s.height <= 0 {
		return fmt.Errorf("%w: non-empty tree must have height > 0", ErrInvariant)
	}
	if s.height > 1 && s.root.size() < 2 {
		return fmt.Errorf("%w: internal root has %d entries", ErrInvariant, s.root.size())
	}
	count, err := s.checkNode(s.root, s.height-1, true, minSize, maxSize)
	if err != nil {
		return err
	}
	if count != s.size {
		return fmt.Errorf("%w: size mismatch (%d != %d)", ErrInvariant, count, s.size)
	}
	return nil
}

func (s Snapshot[K, V]) checkNode(n *node[K, V], height int, isRoot bool, minSize, maxSize int) (int, error) {
	if n == nil {
		return 0, fmt.Errorf("%w: nil node at height %d", ErrInvariant, height)
	}
	if err := checkNodeStorage(n, height, maxSize); err != nil {
		return 0, err
	}
	if n.size() == 0 || n.size() > maxSize || (!isRoot && n.size() < minSize) {
		return 0, fmt.Errorf("%w: node size %d out of bounds [%d,%d] at height %d",
			ErrInvariant, n.size(), minSize, maxSize, height)
	}
	for i := 1; i < n.size(); i++ {
		if !s.policy.Less(n.keys[i-1], n.keys[i]) {
			return 0, fmt.Errorf("%w: keys not ascending at height %d", ErrInvariant, height)
		}
	}
	if !reflect.DeepEqual(n.total, s.policy.Total(n.vals)) {
		return 0, fmt.Errorf("%w: stale total at height %d", ErrInvariant, height)
	}
	if height == 0 {
		return n.size(), nil
	}
	count := 0
	for i, child := range n.kids {
		c, err := s.checkNode(child, height-1, false, minSize, maxSize)
		if err != nil {
			return 0, err
		}
		if s.policy.Less(n.keys[i], child.keys[0]) || s.policy.Less(child.keys[0], n.keys[i]) {
			return 0, fmt.Errorf("%w: key of entry %d differs from child's first key at height %d",
				ErrInvariant, i, height)
		}
		if !reflect.DeepEqual(n.vals[i], child.total) {
			return 0, fmt.Errorf("%w: aggregate of entry %d differs from child's total at height %d",
				ErrInvariant, i, height)
		}
		count += c
	}
	return count, nil
}
