// Package cache provides in-memory caches with LRU or FIFO eviction and
// per-entry TTL, plus a multi-level loader that layers Redis and a
// singleflight-guarded fetch behind them.
//
// Expired entries are never returned; they are dropped lazily on access and
// by a background sweep.
//
//	c := cache.NewCache(env.CacheConfig)
//	defer c.Stop()
//	c.Set("key", value)
//	v, ok := c.Get("key")
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/duccv/contact-addin/config"
	"go.uber.org/zap"
)

// Cache is implemented by the LRU and FIFO caches.
type Cache interface {
	// Get returns the value for key if present and not expired.
	Get(key string) (any, bool)
	// Entry is Get with the bookkeeping timestamps.
	Entry(key string) (Entry, bool)
	// Set stores value with the default TTL.
	Set(key string, value any)
	SetWithTTL(key string, value any, ttl time.Duration)
	Delete(key string)
	// Len counts entries including expired ones not yet swept.
	Len() int
	MaxSize() int
	Clear()
	// Stop ends the background sweep. Safe to call more than once.
	Stop()
}

// Entry is one cached value.
type Entry struct {
	Key       string
	Value     any
	StoredAt  time.Time
	ExpiresAt time.Time
}

func (e Entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

type Option func(*options)

type options struct {
	now           func() time.Time
	sweepInterval time.Duration
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSweepInterval sets how often expired entries are purged. Zero
// disables the background sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(o *options) { o.sweepInterval = d }
}

// NewCache builds the cache named by cfg.Type ("LRU" or "FIFO", LRU when
// empty or unknown).
func NewCache(cfg config.CacheConfig, opts ...Option) Cache {
	ttl := time.Duration(cfg.DefaultTTL) * time.Second
	switch cfg.Type {
	case "FIFO":
		return NewFIFOCache(cfg.Capacity, ttl, opts...)
	default:
		return NewLRUCache(cfg.Capacity, ttl, opts...)
	}
}

// store is the shared core. Entries live in a list ordered by eviction
// priority, front first.
type store struct {
	mu          sync.Mutex
	entries     map[string]*list.Element
	order       *list.List
	maxSize     int
	defaultTTL  time.Duration
	touchOnRead bool
	now         func() time.Time
	kind        string

	stopOnce sync.Once
	stop     chan struct{}
}

func newStore(kind string, maxSize int, defaultTTL time.Duration, touchOnRead bool, opts []Option) *store {
	o := options{now: time.Now, sweepInterval: 3 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	if maxSize <= 0 {
		maxSize = 1000
	}
	s := &store{
		entries:     make(map[string]*list.Element),
		order:       list.New(),
		maxSize:     maxSize,
		defaultTTL:  defaultTTL,
		touchOnRead: touchOnRead,
		now:         o.now,
		kind:        kind,
		stop:        make(chan struct{}),
	}
	if o.sweepInterval > 0 {
		go s.sweepLoop(o.sweepInterval)
	}
	return s
}

func (s *store) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				zap.L().Debug("Cleaned up expired cache entries", zap.String("cache", s.kind), zap.Int("count", n))
			}
		case <-s.stop:
			return
		}
	}
}

func (s *store) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for e := s.order.Front(); e != nil; {
		next := e.Next()
		if e.Value.(*Entry).expired(now) {
			s.removeElement(e)
			removed++
		}
		e = next
	}
	return removed
}

func (s *store) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *store) Set(key string, value any) {
	s.SetWithTTL(key, value, s.defaultTTL)
}

func (s *store) SetWithTTL(key string, value any, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if el, ok := s.entries[key]; ok {
		entry := el.Value.(*Entry)
		entry.Value = value
		entry.StoredAt = now
		entry.ExpiresAt = now.Add(ttl)
		if s.touchOnRead {
			s.order.MoveToBack(el)
		}
		return
	}

	if s.order.Len() >= s.maxSize {
		if front := s.order.Front(); front != nil {
			evicted := front.Value.(*Entry).Key
			s.removeElement(front)
			zap.L().Debug("Cache evicted entry", zap.String("cache", s.kind), zap.String("key", evicted))
		}
	}

	s.entries[key] = s.order.PushBack(&Entry{
		Key:       key,
		Value:     value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	})
}

func (s *store) Get(key string) (any, bool) {
	e, ok := s.Entry(key)
	if !ok {
		return nil, false
	}
	return e.Value, true
}

func (s *store) Entry(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	entry := el.Value.(*Entry)
	if entry.expired(s.now()) {
		s.removeElement(el)
		return Entry{}, false
	}
	if s.touchOnRead {
		s.order.MoveToBack(el)
	}
	return *entry, true
}

func (s *store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		s.removeElement(el)
	}
}

func (s *store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *store) MaxSize() int {
	return s.maxSize
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order.Init()
	s.entries = make(map[string]*list.Element)
}

// keys returns live keys in eviction order.
func (s *store) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]string, 0, s.order.Len())
	for e := s.order.Front(); e != nil; e = e.Next() {
		if entry := e.Value.(*Entry); !entry.expired(now) {
			out = append(out, entry.Key)
		}
	}
	return out
}

func (s *store) removeElement(el *list.Element) {
	s.order.Remove(el)
	delete(s.entries, el.Value.(*Entry).Key)
}
