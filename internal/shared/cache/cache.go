package cache

import (
	"github.com/dgraph-io/ristretto/v2"
)

// Cache memoizes values by string key. Writers are expected to Evict the key
// as part of any mutation; readers only Get and Put.
type Cache[V any] struct {
	c *ristretto.Cache[string, V]
}

// New builds a cache bounded to roughly maxEntries items.
func New[V any](maxEntries int64) (*Cache[V], error) {
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache[V]{c: c}, nil
}

// Get returns the cached value for key, if present.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.c.Get(key)
}

// Put stores value under key. Admission is best-effort; a rejected put only
// costs a later cache miss.
func (c *Cache[V]) Put(key string, value V) {
	c.c.Set(key, value, 1)
}

// Evict drops the entry for key.
func (c *Cache[V]) Evict(key string) {
	c.c.Del(key)
}

// Wait blocks until buffered writes are applied. Tests use it; request paths
// never need to.
func (c *Cache[V]) Wait() {
	c.c.Wait()
}

// Close releases the cache's internal resources.
func (c *Cache[V]) Close() {
	c.c.Close()
}
