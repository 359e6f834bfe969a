package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/npillmayer/cowtree/digest"
	"github.com/npillmayer/cowtree/snapshot"
	"github.com/npillmayer/cowtree/store"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

// load builds a map from the listing named by the first argument. Every
// line is key=value; an empty value deletes the key. Blank lines and lines
// starting with '#' are ignored.
func load(cctx *cli.Context) (snapshot.Version, error) {
	name := cctx.Args().First()
	if name == "" {
		return snapshot.Version{}, fmt.Errorf("need a listing file as argument (- for stdin)")
	}
	var in io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return snapshot.Version{}, err
		}
		defer f.Close()
		in = f
	}
	feed := snapshot.New(ctxOf(cctx))
	defer feed.Close()
	if err := apply(feed, in); err != nil {
		return snapshot.Version{}, fmt.Errorf("%s: %w", name, err)
	}
	return feed.Current(), nil
}

func apply(feed *snapshot.Feed, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("line %d: missing '='", lineno)
		}
		var err error
		if value == "" {
			_, _, err = feed.Delete(key)
		} else {
			_, _, err = feed.Put(key, value)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	return scanner.Err()
}

func runBuild(cctx *cli.Context) error {
	v, err := load(cctx)
	if err != nil {
		return err
	}
	w := cctx.App.Writer
	fmt.Fprintf(w, "root    %s\n", v.RootHash())
	fmt.Fprintf(w, "entries %d\n", v.Len())
	fmt.Fprintf(w, "height  %d\n", v.Height())
	fmt.Fprintf(w, "changes %d\n", v.Seq)
	return nil
}

func runDump(cctx *cli.Context) error {
	v, err := load(cctx)
	if err != nil {
		return err
	}
	colored := !cctx.Bool("no-color") && !color.NoColor && isTerminal(cctx.App.Writer)
	return v.Dump(cctx.App.Writer, colored)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runDot(cctx *cli.Context) error {
	v, err := load(cctx)
	if err != nil {
		return err
	}
	return v.Dot(cctx.App.Writer)
}

func openStore(cctx *cli.Context) (*store.Store, error) {
	dir := cctx.String("store")
	var blobs store.Blobs
	var err error
	if cctx.Bool("pebble") {
		blobs, err = store.OpenPebble(dir)
	} else {
		blobs, err = store.NewDirStore(dir)
	}
	if err != nil {
		return nil, err
	}
	st, err := store.New(blobs)
	if err != nil {
		blobs.Close()
		return nil, err
	}
	return st, nil
}

func runSave(cctx *cli.Context) error {
	v, err := load(cctx)
	if err != nil {
		return err
	}
	st, err := openStore(cctx)
	if err != nil {
		return err
	}
	defer st.Close()
	root, err := st.Save(ctxOf(cctx), v.Snapshot)
	if err != nil {
		return err
	}
	fmt.Fprintln(cctx.App.Writer, root)
	return nil
}

func runShow(cctx *cli.Context) error {
	root, err := digest.Parse(cctx.Args().First())
	if err != nil {
		return err
	}
	st, err := openStore(cctx)
	if err != nil {
		return err
	}
	defer st.Close()
	snap, err := st.Load(ctxOf(cctx), root)
	if err != nil {
		return err
	}
	if err := snap.Verify(); err != nil {
		return err
	}
	w := bufio.NewWriter(cctx.App.Writer)
	for k, v := range snap.All() {
		fmt.Fprintf(w, "%s=%s\n", k, v)
	}
	return w.Flush()
}

func ctxOf(cctx *cli.Context) context.Context {
	if cctx.Context != nil {
		return cctx.Context
	}
	return context.Background()
}
