package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/amterp/forts/internal/metrics"
	"github.com/amterp/forts/internal/model"
	fixtures "github.com/amterp/forts/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeLister struct {
	mu    sync.Mutex
	forts []*model.Fort
	err   error
	calls atomic.Int32
	gate  chan struct{}
}

func (l *fakeLister) List(ctx context.Context) ([]*model.Fort, error) {
	l.calls.Add(1)
	if l.gate != nil {
		<-l.gate
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return cloneAll(l.forts), nil
}

func (l *fakeLister) set(forts []*model.Fort, err error) {
	l.mu.Lock()
	l.forts, l.err = forts, err
	l.mu.Unlock()
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(l Lister, ttl time.Duration) (*SnapshotCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	c := NewSnapshotCache(l, ttl, nil)
	c.now = clock.now
	return c, clock
}

func TestSnapshotCache_ServesWithinWindow(t *testing.T) {
	l := &fakeLister{forts: fixtures.SampleSnapshot()}
	c, clock := newTestCache(l, time.Minute)

	first := c.Get(context.Background())
	clock.advance(30 * time.Second)
	second := c.Get(context.Background())

	assert.Len(t, first, 5)
	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, int32(1), l.calls.Load())
}

func TestSnapshotCache_RefetchesWhenStale(t *testing.T) {
	l := &fakeLister{forts: fixtures.SampleSnapshot()}
	c, clock := newTestCache(l, time.Minute)

	_ = c.Get(context.Background())
	l.set(fixtures.SampleSnapshot()[:2], nil)
	clock.advance(time.Minute)

	got := c.Get(context.Background())

	assert.Len(t, got, 2)
	assert.Equal(t, int32(2), l.calls.Load())
}

func TestSnapshotCache_InvalidateForcesRefetch(t *testing.T) {
	l := &fakeLister{forts: fixtures.SampleSnapshot()}
	c, _ := newTestCache(l, time.Hour)

	_ = c.Get(context.Background())
	added := fixtures.TestFort("f9", "Pratapgad", model.HillFort, model.WesternMaharashtra)
	l.set(append(fixtures.SampleSnapshot(), added), nil)
	c.Invalidate()

	got := c.Get(context.Background())

	assert.Len(t, got, 6)
	assert.Contains(t, ids(got), "f9")
}

func TestSnapshotCache_FailOpenNotCached(t *testing.T) {
	l := &fakeLister{err: errors.New("connection refused")}
	m := metrics.New()
	c, _ := newTestCache(l, time.Hour)
	c.SetMetrics(m)

	got := c.Get(context.Background())
	require.NotNil(t, got)
	assert.Empty(t, got)

	l.set(fixtures.SampleSnapshot(), nil)
	got = c.Get(context.Background())

	assert.Len(t, got, 5)
	assert.Equal(t, int32(2), l.calls.Load())
	assert.Equal(t, 5.0, testutil.ToFloat64(m.SnapshotSize()))
}

func TestSnapshotCache_ReturnsPrivateCopies(t *testing.T) {
	l := &fakeLister{forts: fixtures.SampleSnapshot()}
	c, _ := newTestCache(l, time.Hour)

	a := c.Get(context.Background())
	a[2].Name = "Changed"
	a[2].Images[0] = "changed"
	b := c.Get(context.Background())

	assert.Equal(t, "Raigad", b[2].Name)
	assert.Equal(t, "https://upload.wikimedia.org/raigad.jpg", b[2].Images[0])
}

func TestSnapshotCache_CoalescesConcurrentFetches(t *testing.T) {
	l := &fakeLister{forts: fixtures.SampleSnapshot(), gate: make(chan struct{})}
	c, _ := newTestCache(l, time.Hour)

	var wg sync.WaitGroup
	results := make([][]*model.Fort, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Get(context.Background())
		}(i)
	}

	// Let the goroutines pile up on the in-flight fetch before releasing it.
	require.Eventually(t, func() bool { return l.calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(l.gate)
	wg.Wait()

	assert.Equal(t, int32(1), l.calls.Load())
	for _, r := range results {
		assert.Len(t, r, 5)
	}
}

// cancelAwareLister fails like a real driver once its context is cancelled.
type cancelAwareLister struct {
	forts []*model.Fort
}

func (l *cancelAwareLister) List(ctx context.Context) ([]*model.Fort, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return cloneAll(l.forts), nil
}

func TestSnapshotCache_FetchOutlivesCancelledCaller(t *testing.T) {
	c, _ := newTestCache(&cancelAwareLister{forts: fixtures.SampleSnapshot()}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Len(t, c.Get(ctx), 5)
	// The shared result was cached, so a live caller is served without a refetch.
	assert.Len(t, c.Get(context.Background()), 5)
}

func TestSnapshotCache_DefaultWindow(t *testing.T) {
	c := NewSnapshotCache(&fakeLister{}, 0, nil)
	assert.Equal(t, DefaultRevalidate, c.Revalidate())
}
