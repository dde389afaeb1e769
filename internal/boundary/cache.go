package boundary

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/spending-maps/internal/observability"
)

// Loader loads a boundary file by path.
type Loader func(path string) (*Collection, error)

// Cache keeps recently loaded boundary files in memory so jobs and HTTP
// requests that share a file parse it once. Collections are read-only, so one
// cached value can back any number of concurrent map builds.
type Cache struct {
	load    Loader
	lru     *lru.Cache[string, *Collection]
	metrics *observability.Metrics
}

// NewCache creates a cache holding at most maxEntries collections.
func NewCache(maxEntries int, metrics *observability.Metrics) (*Cache, error) {
	return newCache(maxEntries, Load, metrics)
}

func newCache(maxEntries int, load Loader, metrics *observability.Metrics) (*Cache, error) {
	l, err := lru.New[string, *Collection](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("boundary cache: %w", err)
	}
	return &Cache{load: load, lru: l, metrics: metrics}, nil
}

// Get returns the collection for path, loading it on a miss. Load failures
// are not cached so a fixed file is picked up on the next call.
func (c *Cache) Get(path string) (*Collection, error) {
	if col, ok := c.lru.Get(path); ok {
		c.metrics.BoundaryCache.WithLabelValues("hit").Inc()
		return col, nil
	}
	c.metrics.BoundaryCache.WithLabelValues("miss").Inc()

	col, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.lru.Add(path, col)
	return col, nil
}

// Len reports how many collections are cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}
