package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/cowtree/merkle"
	"github.com/stretchr/testify/require"
)

const listing = `# fruit
apple=red
banana=yellow
cherry=red

banana=
date=brown
`

func writeListing(t *testing.T, text string) string {
	name := filepath.Join(t.TempDir(), "listing.txt")
	require.NoError(t, os.WriteFile(name, []byte(text), 0o644))
	return name
}

func expectedRoot() string {
	m := merkle.New()
	m.Put("apple", "red")
	m.Put("banana", "yellow")
	m.Put("cherry", "red")
	m.Delete("banana")
	m.Put("date", "brown")
	return m.RootHash().String()
}

func TestBuild(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"cowtree", "build", writeListing(t, listing)}, &out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "root    "+expectedRoot())
	require.Contains(t, out.String(), "entries 3\n")
	require.Contains(t, out.String(), "changes 5\n")
}

func TestBuildRejectsBadLine(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"cowtree", "build", writeListing(t, "a=1\nnonsense\n")}, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
}

func TestDumpAndDot(t *testing.T) {
	name := writeListing(t, listing)
	var out bytes.Buffer
	require.NoError(t, run([]string{"cowtree", "dump", name}, &out))
	require.Contains(t, out.String(), "apple")
	require.NotContains(t, out.String(), "\x1b[")

	out.Reset()
	require.NoError(t, run([]string{"cowtree", "dot", name}, &out))
	require.True(t, strings.HasPrefix(out.String(), "strict digraph {"))
}

func TestSaveShow(t *testing.T) {
	name := writeListing(t, listing)
	for _, backend := range [][]string{nil, {"--pebble"}} {
		dir := t.TempDir()
		var out bytes.Buffer
		args := append([]string{"cowtree", "save", "--store", dir}, backend...)
		require.NoError(t, run(append(args, name), &out))
		root := strings.TrimSpace(out.String())
		require.Equal(t, expectedRoot(), root)

		out.Reset()
		args = append([]string{"cowtree", "show", "--store", dir}, backend...)
		require.NoError(t, run(append(args, root), &out))
		require.Equal(t, "apple=red\ncherry=red\ndate=brown\n", out.String())
	}
}

func TestShowUnknownDigest(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"cowtree", "show", "--store", t.TempDir(), "not-a-digest"}, &out)
	require.Error(t, err)
}
