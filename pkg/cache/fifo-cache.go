package cache

import "time"

// FIFOCache evicts the oldest inserted entry when full. Reads and updates
// do not change eviction order.
type FIFOCache struct {
	*store
}

func NewFIFOCache(maxSize int, defaultTTL time.Duration, opts ...Option) *FIFOCache {
	return &FIFOCache{store: newStore("fifo", maxSize, defaultTTL, false, opts)}
}

// Keys returns live keys in insertion order.
func (c *FIFOCache) Keys() []string {
	return c.keys()
}
