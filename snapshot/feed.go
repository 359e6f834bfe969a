package snapshot

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/guiguan/caster"
	"github.com/npillmayer/cowtree/btree"
	"github.com/npillmayer/cowtree/digest"
	"github.com/npillmayer/cowtree/merkle"
)

// ErrClosed is returned for writes to a closed feed.
var ErrClosed = errors.New("snapshot: feed closed")

// Kind tells which operation produced an event.
type Kind uint8

const (
	Put Kind = iota + 1
	Delete
)

func (k Kind) String() string {
	switch k {
	case Put:
		return "put"
	case Delete:
		return "delete"
	}
	return "unknown"
}

// Event describes one committed change.
type Event struct {
	Seq    uint64        // sequence number of the resulting version
	Root   digest.Digest // root hash of the resulting version
	Len    int           // entries in the resulting version
	Height int           // tree height of the resulting version
	Key    string        // the key which changed
	Kind   Kind
}

// Version is a published, immutable version of the map.
type Version struct {
	Seq uint64
	merkle.Snapshot
}

// Feed serializes writers to a merkle.Map and publishes every committed
// version. Slow subscribers throttle writers.
type Feed struct {
	mu     sync.Mutex
	m      *merkle.Map
	seq    uint64
	last   btree.Outcome // root outcome of the running update
	closed bool
	cur    atomic.Pointer[Version]
	cast   *caster.Caster
}

// New creates a feed over an empty map. Cancelling ctx closes all
// subscriptions.
func New(ctx context.Context) *Feed {
	f := &Feed{}
	f.m = merkle.New(btree.WithObserver(f.observe))
	f.init(ctx)
	return f
}

// Open creates a feed over a map decoded from r, as written by
// merkle.Map.WriteTo. The decoded map is published as version 0.
func Open(ctx context.Context, r io.Reader) (*Feed, error) {
	f := &Feed{}
	m, err := merkle.ReadMap(r, btree.WithObserver(f.observe))
	if err != nil {
		return nil, err
	}
	f.m = m
	f.init(ctx)
	return f, nil
}

func (f *Feed) init(ctx context.Context) {
	f.cast = caster.New(ctx)
	f.publish()
	tracer().Debugf("snapshot: feed opened with %d entries", f.m.Len())
}

// observe runs inside an update, in the writer's goroutine.
func (f *Feed) observe(o btree.Outcome, level int) {
	f.last = o
	switch o {
	case btree.Split, btree.Steal, btree.Merge:
		rebalanceTotal.WithLabelValues(o.String()).Inc()
	}
}

func (f *Feed) publish() *Version {
	v := &Version{Seq: f.seq, Snapshot: f.m.Snapshot()}
	f.cur.Store(v)
	treeSize.Set(float64(v.Len()))
	treeHeight.Set(float64(v.Height()))
	return v
}

// Current returns the latest published version.
func (f *Feed) Current() Version {
	return *f.cur.Load()
}

// Put sets key to value. It returns the event of the new version, and false
// if the map already held value for key.
func (f *Feed) Put(key, value string) (Event, bool, error) {
	return f.apply(Put, key, func(m *merkle.Map) { m.Put(key, value) })
}

// Delete removes key. It returns the event of the new version, and false if
// key was not present.
func (f *Feed) Delete(key string) (Event, bool, error) {
	return f.apply(Delete, key, func(m *merkle.Map) { m.Delete(key) })
}

func (f *Feed) apply(kind Kind, key string, op func(*merkle.Map)) (Event, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return Event{}, false, ErrClosed
	}
	f.last = btree.Nop
	op(f.m)
	updatesTotal.WithLabelValues(f.last.String()).Inc()
	if f.last == btree.Nop {
		return Event{}, false, nil
	}
	f.seq++
	v := f.publish()
	ev := Event{
		Seq:    v.Seq,
		Root:   v.RootHash(),
		Len:    v.Len(),
		Height: v.Height(),
		Key:    key,
		Kind:   kind,
	}
	f.cast.Pub(ev)
	tracer().Debugf("snapshot: version %d (%s %q) root %s", ev.Seq, kind, key, ev.Root.Short())
	return ev, true, nil
}

// Subscribe returns a channel of events for all versions committed after
// the call. The channel is closed when ctx is done or the feed is closed.
func (f *Feed) Subscribe(ctx context.Context, buffer uint) (<-chan Event, bool) {
	raw, ok := f.cast.Sub(ctx, buffer)
	if !ok {
		return nil, false
	}
	subscribers.Inc()
	events := make(chan Event, buffer)
	go func() {
		defer subscribers.Dec()
		defer close(events)
		for msg := range raw {
			select {
			case events <- msg.(Event):
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, true
}

// Close stops publication and closes all subscriptions. Writes after Close
// fail with ErrClosed; the last version stays readable.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.cast.Close()
}
