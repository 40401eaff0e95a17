package cache

import "time"

// LRUCache evicts the least recently read or written entry when full.
type LRUCache struct {
	*store
}

func NewLRUCache(maxSize int, defaultTTL time.Duration, opts ...Option) *LRUCache {
	return &LRUCache{store: newStore("lru", maxSize, defaultTTL, true, opts)}
}

// Keys returns live keys, least recently used first.
func (c *LRUCache) Keys() []string {
	return c.keys()
}
