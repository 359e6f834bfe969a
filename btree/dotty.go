package btree

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

type nodeids[K, V any] struct {
	idTable map[*node[K, V]]int
	max     int
}

func (ids *nodeids[K, V]) alloc(n *node[K, V]) int {
	if id, ok := ids.idTable[n]; ok {
		return id
	}
	ids.max++
	ids.idTable[n] = ids.max
	return ids.max
}

// Dot writes the node structure of a snapshot in Graphviz DOT format
// (for debugging purposes). Nodes shared with other snapshots show up once.
func (s Snapshot[K, V]) Dot(w io.Writer) error {
	ids := &nodeids[K, V]{idTable: make(map[*node[K, V]]int)}
	var nodelist, edgelist strings.Builder
	var walk func(n *node[K, V], height int)
	walk = func(n *node[K, V], height int) {
		id := ids.alloc(n)
		if height == 0 {
			fmt.Fprintf(&nodelist, "\"%d\" [label=\"%s\",shape=box,style=filled];\n",
				id, dotEscape(keyRange(n)))
			return
		}
		fmt.Fprintf(&nodelist, "\"%d\" [label=\"%d\",shape=circle,style=filled,color=black,fillcolor=\"%s\"];\n",
			id, n.size(), hexcolors[height%len(hexcolors)])
		for _, child := range n.kids {
			fmt.Fprintf(&edgelist, "\"%d\" -> \"%d\";\n", id, ids.alloc(child))
			walk(child, height-1)
		}
	}
	if s.root != nil {
		walk(s.root, s.height-1)
	}
	_, err := fmt.Fprintf(w, "strict digraph {\n\tnode [fontname=Arial,fontsize=12];\n%s%s}\n",
		nodelist.String(), edgelist.String())
	return err
}

var hexcolors = [...]string{"white", "#CCDDFF", "#AACCFF", "#88BBFF", "#66AAFF",
	"#4499FF", "#2288FF", "#0077FF", "#0066FF"}

func keyRange[K, V any](n *node[K, V]) string {
	if n.size() == 1 {
		return fmt.Sprint(n.keys[0])
	}
	return fmt.Sprintf("%v … %v", n.keys[0], n.keys[n.size()-1])
}

func dotEscape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Dump writes an indented listing of the snapshot's nodes, one line per
// node, leaves listing their keys. With colored set, levels are
// highlighted with ANSI colors.
func (s Snapshot[K, V]) Dump(w io.Writer, colored bool) error {
	inner := color.New(color.FgCyan, color.Bold)
	leaf := color.New(color.FgGreen)
	dim := color.New(color.Faint)
	for _, c := range []*color.Color{inner, leaf, dim} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	if s.root == nil {
		_, err := dim.Fprintln(w, "(empty)")
		return err
	}
	var walk func(n *node[K, V], height, depth int) error
	walk = func(n *node[K, V], height, depth int) error {
		indent := strings.Repeat("  ", depth)
		if height == 0 {
			keys := make([]string, n.size())
			for i, k := range n.keys {
				keys[i] = fmt.Sprint(k)
			}
			_, err := fmt.Fprintf(w, "%s%s %s\n", indent, leaf.Sprintf("leaf[%d]", n.size()),
				strings.Join(keys, " "))
			return err
		}
		if _, err := fmt.Fprintf(w, "%s%s %s\n", indent, inner.Sprintf("node[%d]", n.size()),
			dim.Sprintf("h=%d %s", height, keyRange(n))); err != nil {
			return err
		}
		for _, child := range n.kids {
			if err := walk(child, height-1, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(s.root, s.height-1, 0)
}
