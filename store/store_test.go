package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/npillmayer/cowtree/digest"
	"github.com/npillmayer/cowtree/merkle"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func redirect(t *testing.T) func() {
	gtrace.CoreTracer = gotestingadapter.New()
	teardown := gotestingadapter.RedirectTracing(t)
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)
	return teardown
}

func sampleMap(n int, tag string) *merkle.Map {
	m := merkle.New()
	for i := 0; i < n; i++ {
		m.Put(fmt.Sprintf("key-%05d", i), fmt.Sprintf("%s value %d", tag, i))
	}
	return m
}

// countingBlobs counts backend reads.
type countingBlobs struct {
	Blobs
	gets atomic.Int32
}

func (c *countingBlobs) Get(ctx context.Context, key digest.Digest) ([]byte, error) {
	c.gets.Add(1)
	return c.Blobs.Get(ctx, key)
}

func backends(t *testing.T) map[string]func() Blobs {
	return map[string]func() Blobs{
		"dir": func() Blobs {
			s, err := NewDirStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
		"pebble": func() Blobs {
			s, err := OpenPebble(t.TempDir())
			require.NoError(t, err)
			return s
		},
	}
}

func TestSaveLoad(t *testing.T) {
	defer redirect(t)()
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			blobs := &countingBlobs{Blobs: open()}
			st, err := New(blobs, WithCacheSize(4), WithCompressionLevel(3))
			require.NoError(err)
			defer st.Close()

			m := sampleMap(2000, name)
			root, err := st.Save(ctx, m.Snapshot())
			require.NoError(err)
			require.Equal(m.RootHash(), root)

			// cached
			snap, err := st.Load(ctx, root)
			require.NoError(err)
			require.True(snap.Same(m.Snapshot()))
			require.Equal(int32(0), blobs.gets.Load())

			// decoded from the backend
			cold, err := New(blobs)
			require.NoError(err)
			snap, err = cold.Load(ctx, root)
			require.NoError(err)
			require.Equal(root, snap.RootHash())
			require.Equal(m.Len(), snap.Len())
			require.NoError(snap.Verify())
			v, ok := snap.Get("key-01234")
			require.True(ok)
			require.Equal(name+" value 1234", v)

			_, err = st.Load(ctx, digest.Of("nothing"))
			require.ErrorIs(err, ErrNotFound)
		})
	}
}

func TestLoadDetectsTampering(t *testing.T) {
	defer redirect(t)()
	require := require.New(t)
	ctx := context.Background()
	blobs, err := NewDirStore(t.TempDir())
	require.NoError(err)
	st, err := New(blobs)
	require.NoError(err)
	defer st.Close()

	a := sampleMap(100, "a")
	rootA, err := st.Save(ctx, a.Snapshot())
	require.NoError(err)
	data, err := blobs.Get(ctx, rootA)
	require.NoError(err)

	// a valid blob stored under a foreign digest
	forged := digest.Of("forged")
	require.NoError(blobs.Put(ctx, forged, data))
	_, err = st.Load(ctx, forged)
	require.ErrorIs(err, ErrDigestMismatch)

	// garbage
	junk := digest.Of("junk")
	require.NoError(blobs.Put(ctx, junk, []byte("not zstd at all")))
	_, err = st.Load(ctx, junk)
	require.ErrorIs(err, ErrCorrupt)
}

func TestConcurrentLoads(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	dir, err := NewDirStore(t.TempDir())
	require.NoError(err)
	blobs := &countingBlobs{Blobs: dir}
	writer, err := New(blobs)
	require.NoError(err)
	m := sampleMap(5000, "c")
	root, err := writer.Save(ctx, m.Snapshot())
	require.NoError(err)

	st, err := New(blobs)
	require.NoError(err)
	defer st.Close()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			snap, err := st.Load(gctx, root)
			if err != nil {
				return err
			}
			if snap.RootHash() != root {
				return fmt.Errorf("loaded wrong snapshot %s", snap.RootHash().Short())
			}
			return nil
		})
	}
	require.NoError(g.Wait())
	gets := blobs.gets.Load()
	require.GreaterOrEqual(gets, int32(1))
	_, err = st.Load(ctx, root)
	require.NoError(err)
	require.Equal(gets, blobs.gets.Load(), "load after warm-up should hit the cache")
}

func TestCancelledContext(t *testing.T) {
	require := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, open := range backends(t) {
		blobs := open()
		require.ErrorIs(blobs.Put(ctx, digest.Zero, []byte("x")), context.Canceled, name)
		_, err := blobs.Get(ctx, digest.Zero)
		require.ErrorIs(err, context.Canceled, name)
		require.NoError(blobs.Close())
	}
}

// gatedBlobs holds every read until release is closed.
type gatedBlobs struct {
	Blobs
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (g *gatedBlobs) Get(ctx context.Context, key digest.Digest) ([]byte, error) {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return g.Blobs.Get(ctx, key)
}

func TestSharedLoadOutlivesCancelledCaller(t *testing.T) {
	require := require.New(t)
	dir, err := NewDirStore(t.TempDir())
	require.NoError(err)
	writer, err := New(dir)
	require.NoError(err)
	root, err := writer.Save(context.Background(), sampleMap(300, "w").Snapshot())
	require.NoError(err)

	gated := &gatedBlobs{Blobs: dir, started: make(chan struct{}), release: make(chan struct{})}
	st, err := New(gated)
	require.NoError(err)
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := st.Load(ctx, root)
		first <- err
	}()
	<-gated.started
	second := make(chan error, 1)
	go func() {
		snap, err := st.Load(context.Background(), root)
		if err == nil && snap.RootHash() != root {
			err = fmt.Errorf("loaded wrong snapshot %s", snap.RootHash().Short())
		}
		second <- err
	}()
	cancel()
	select {
	case err := <-first:
		require.ErrorIs(err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatalf("cancelled load did not return")
	}
	close(gated.release)
	select {
	case err := <-second:
		require.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatalf("waiting load did not return")
	}
	_, err = st.Load(ctx, root)
	require.NoError(err, "the shared load fills the cache")
}
