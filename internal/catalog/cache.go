package catalog

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/amterp/forts/internal/metrics"
	"github.com/amterp/forts/internal/model"
)

// DefaultRevalidate is how long a fetched snapshot may be served before the
// next Get goes back to the store.
const DefaultRevalidate = time.Hour

// Lister is the read-all side of the record store.
type Lister interface {
	List(ctx context.Context) ([]*model.Fort, error)
}

// SnapshotCache serves the server-fetched snapshot of all forts.
//
// Fetch failures are fail-open: Get logs the error and returns an empty
// snapshot, and the failure is not cached. Mutations call Invalidate so the
// next page view is built from post-mutation data.
type SnapshotCache struct {
	lister     Lister
	revalidate time.Duration
	logger     *zap.Logger
	metrics    *metrics.Recorder
	now        func() time.Time

	mu         sync.Mutex
	forts      []*model.Fort
	fetchedAt  time.Time
	valid      bool
	generation uint64

	group singleflight.Group
}

// NewSnapshotCache creates a cache over lister. A non-positive revalidate
// window uses DefaultRevalidate.
func NewSnapshotCache(lister Lister, revalidate time.Duration, logger *zap.Logger) *SnapshotCache {
	if revalidate <= 0 {
		revalidate = DefaultRevalidate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotCache{
		lister:     lister,
		revalidate: revalidate,
		logger:     logger,
		now:        time.Now,
	}
}

// SetMetrics attaches a metrics recorder.
func (c *SnapshotCache) SetMetrics(m *metrics.Recorder) {
	c.metrics = m
}

// Revalidate returns the configured staleness bound.
func (c *SnapshotCache) Revalidate() time.Duration {
	return c.revalidate
}

// Get returns a private copy of the current snapshot, fetching it first if
// it is missing, stale or invalidated. The copy is safe to hand to a Presenter.
func (c *SnapshotCache) Get(ctx context.Context) []*model.Fort {
	c.mu.Lock()
	if c.valid && c.now().Sub(c.fetchedAt) < c.revalidate {
		out := cloneAll(c.forts)
		c.mu.Unlock()
		return out
	}
	gen := c.generation
	c.mu.Unlock()

	// Keyed by generation so a Get after Invalidate never joins a fetch
	// that started before the mutation. The fetch is shared by every caller
	// joined on the key, so it must outlive the leader's request.
	fetchCtx := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		return c.fetch(fetchCtx, gen), nil
	})
	return cloneAll(v.([]*model.Fort))
}

// Invalidate forces the next Get to refetch.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.forts = nil
	c.generation++
	c.mu.Unlock()
	c.logger.Debug("snapshot invalidated")
}

// Refresh invalidates the cache and immediately refetches.
func (c *SnapshotCache) Refresh(ctx context.Context) []*model.Fort {
	c.Invalidate()
	return c.Get(ctx)
}

func (c *SnapshotCache) fetch(ctx context.Context, gen uint64) []*model.Fort {
	start := c.now()
	forts, err := c.lister.List(ctx)
	if err != nil {
		c.logger.Error("error fetching forts", zap.Error(err))
		c.metrics.ObserveFetch(false, 0)
		return []*model.Fort{}
	}
	if forts == nil {
		forts = []*model.Fort{}
	}
	c.metrics.ObserveFetch(true, len(forts))
	c.logger.Debug("snapshot fetched",
		zap.Int("records", len(forts)),
		zap.Duration("took", c.now().Sub(start)))

	c.mu.Lock()
	if c.generation == gen {
		c.forts = forts
		c.fetchedAt = c.now()
		c.valid = true
	}
	c.mu.Unlock()
	return forts
}

func cloneAll(forts []*model.Fort) []*model.Fort {
	out := make([]*model.Fort, len(forts))
	for i, f := range forts {
		out[i] = f.Clone()
	}
	return out
}
