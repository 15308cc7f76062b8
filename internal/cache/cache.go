// Package cache memoizes dataset loads per source directory.
package cache

import (
	"context"
	"path/filepath"

	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/observability"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DatasetLoader builds a dataset from a source directory.
type DatasetLoader interface {
	Load(ctx context.Context, dir string) (*domain.Dataset, error)
}

// CachedLoader wraps a DatasetLoader with an in-memory LRU keyed on the
// directory argument. Directory contents are assumed static for the process
// lifetime; Clear is the only invalidation.
type CachedLoader struct {
	inner   DatasetLoader
	cache   *lru.Cache[string, *domain.Dataset]
	metrics *observability.Metrics
}

// NewCachedLoader creates a cache decorator holding at most maxEntries
// directories. A maxEntries below 1 holds one.
func NewCachedLoader(inner DatasetLoader, maxEntries int, metrics *observability.Metrics) *CachedLoader {
	if maxEntries < 1 {
		maxEntries = 1
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, *domain.Dataset](maxEntries)
	return &CachedLoader{
		inner:   inner,
		cache:   cache,
		metrics: metrics,
	}
}

func (c *CachedLoader) Load(ctx context.Context, dir string) (*domain.Dataset, error) {
	key := filepath.Clean(dir)
	if ds, ok := c.cache.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return ds, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	ds, err := c.inner.Load(ctx, dir)
	if err != nil {
		// Failed loads are not cached so a fixed file is picked up on the next call.
		return nil, err
	}
	c.cache.Add(key, ds)
	return ds, nil
}

// Clear drops every cached dataset.
func (c *CachedLoader) Clear() {
	c.cache.Purge()
}

// Len reports the number of cached directories.
func (c *CachedLoader) Len() int {
	return c.cache.Len()
}
