package directory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cache memoizes a Loader for a TTL. It is safe for concurrent use.
// A TTL of zero keeps the snapshot until Invalidate or Refresh is called.
type Cache struct {
	loader Loader
	ttl    time.Duration
	log    *zap.Logger

	// OnLoad, if set, is called with the size of every freshly loaded snapshot.
	OnLoad func(companies int)

	loadMu   sync.Mutex // serializes loads
	mu       sync.RWMutex
	snap     *Directory
	loadedAt time.Time
	now      func() time.Time
}

// NewCache wraps loader with a TTL cache.
func NewCache(loader Loader, ttl time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{loader: loader, ttl: ttl, log: log, now: time.Now}
}

// Get returns the cached snapshot, loading it when missing or expired.
// If a reload fails but an older snapshot exists, the stale snapshot is
// returned and the failure is logged.
func (c *Cache) Get(ctx context.Context) (*Directory, error) {
	if d, ok := c.fresh(); ok {
		return d, nil
	}

	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	// Another caller may have loaded while we waited.
	if d, ok := c.fresh(); ok {
		return d, nil
	}

	d, err := c.load(ctx)
	if err != nil {
		if stale := c.Snapshot(); stale != nil {
			c.log.Warn("company list reload failed, serving stale snapshot",
				zap.Error(err), zap.Time("fetched_at", stale.FetchedAt))
			return stale, nil
		}
		return nil, err
	}
	return d, nil
}

// Refresh forces a reload. On failure the previous snapshot is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	_, err := c.load(ctx)
	return err
}

// Invalidate drops the snapshot so the next Get reloads.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

// Snapshot returns the current snapshot without loading. May be nil.
func (c *Cache) Snapshot() *Directory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Cache) fresh() (*Directory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(c.loadedAt) >= c.ttl {
		return nil, false
	}
	return c.snap, true
}

func (c *Cache) load(ctx context.Context) (*Directory, error) {
	d, err := c.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.snap = d
	c.loadedAt = c.now()
	c.mu.Unlock()
	if c.OnLoad != nil {
		c.OnLoad(d.Len())
	}
	return d, nil
}
