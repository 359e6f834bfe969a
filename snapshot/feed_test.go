package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/npillmayer/cowtree/merkle"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func redirect(t *testing.T) func() {
	gtrace.CoreTracer = gotestingadapter.New()
	teardown := gotestingadapter.RedirectTracing(t)
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelInfo)
	return teardown
}

func TestFeedVersions(t *testing.T) {
	defer redirect(t)()
	require := require.New(t)
	f := New(context.Background())
	defer f.Close()

	v0 := f.Current()
	require.Equal(uint64(0), v0.Seq)
	require.True(v0.RootHash().IsZero())

	ev, changed, err := f.Put("a", "1")
	require.NoError(err)
	require.True(changed)
	require.Equal(uint64(1), ev.Seq)
	require.Equal(Put, ev.Kind)
	require.Equal(f.Current().RootHash(), ev.Root)

	_, changed, err = f.Put("a", "1")
	require.NoError(err)
	require.False(changed)
	_, changed, err = f.Delete("zzz")
	require.NoError(err)
	require.False(changed)
	require.Equal(uint64(1), f.Current().Seq)

	ev, changed, err = f.Delete("a")
	require.NoError(err)
	require.True(changed)
	require.Equal(uint64(2), ev.Seq)
	require.Equal(0, ev.Len)
	require.True(ev.Root.IsZero())

	// the first version is untouched
	_, ok := v0.Get("a")
	require.False(ok)
}

func TestFeedSubscription(t *testing.T) {
	require := require.New(t)
	f := New(context.Background())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, ok := f.Subscribe(ctx, 16)
	require.True(ok)

	var roots []string
	for i := 0; i < 5; i++ {
		ev, _, err := f.Put(fmt.Sprintf("k%d", i), "v")
		require.NoError(err)
		roots = append(roots, ev.Root.String())
	}
	for i := 0; i < 5; i++ {
		select {
		case ev := <-events:
			require.Equal(uint64(i+1), ev.Seq)
			require.Equal(fmt.Sprintf("k%d", i), ev.Key)
			require.Equal(roots[i], ev.Root.String())
			require.Equal(i+1, ev.Len)
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for event %d", i)
		}
	}
	f.Close()
	select {
	case _, open := <-events:
		require.False(open)
	case <-time.After(5 * time.Second):
		t.Fatalf("subscription not closed by Close")
	}
	_, _, err := f.Put("late", "v")
	require.ErrorIs(err, ErrClosed)
	require.Equal(5, f.Current().Len())
}

func TestConcurrentReaders(t *testing.T) {
	require := require.New(t)
	f := New(context.Background())
	defer f.Close()
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	for r := 0; r < 4; r++ {
		g.Go(func() error {
			for ctx.Err() == nil {
				v := f.Current()
				n := 0
				for range v.All() {
					n++
				}
				if n != v.Len() {
					return fmt.Errorf("version %d: iterated %d entries, len %d", v.Seq, n, v.Len())
				}
				if err := v.Verify(); err != nil {
					return err
				}
			}
			return nil
		})
	}
	for i := 0; i < 2000; i++ {
		key := fmt.Sprintf("%04d", i%300)
		if i%5 == 4 {
			_, _, err := f.Delete(key)
			require.NoError(err)
		} else {
			_, _, err := f.Put(key, fmt.Sprint(i))
			require.NoError(err)
		}
	}
	cancel()
	require.NoError(g.Wait())
	require.Equal(float64(f.Current().Len()), testutil.ToFloat64(treeSize))
	require.Equal(float64(f.Current().Height()), testutil.ToFloat64(treeHeight))
	require.Greater(testutil.ToFloat64(rebalanceTotal.WithLabelValues("split")), 0.0)
}

func TestOpen(t *testing.T) {
	require := require.New(t)
	m := merkle.New()
	for i := 0; i < 100; i++ {
		m.Put(fmt.Sprint(i), "x")
	}
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(err)
	f, err := Open(context.Background(), &buf)
	require.NoError(err)
	defer f.Close()
	require.Equal(m.RootHash(), f.Current().RootHash())
	require.Equal(uint64(0), f.Current().Seq)

	// the observer is wired into the decoded map as well
	before := testutil.ToFloat64(updatesTotal.WithLabelValues("modify"))
	_, changed, err := f.Put("42", "y")
	require.NoError(err)
	require.True(changed)
	require.Equal(before+1, testutil.ToFloat64(updatesTotal.WithLabelValues("modify")))

	_, err = Open(context.Background(), bytes.NewReader([]byte{1}))
	require.Error(err)
}
