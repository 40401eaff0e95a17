// Package cached decorates a ContactStore with the memory and Redis read
// cache from pkg/cache.
package cached

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/duccv/contact-addin/internal/model"
	"github.com/duccv/contact-addin/internal/store"
	"github.com/duccv/contact-addin/pkg/cache"
	"github.com/duccv/contact-addin/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ContactStore struct {
	next     store.ContactStore
	contacts *cache.MultiLevel[model.Contact]
	lists    *cache.MultiLevel[[]model.Contact]
	pages    *cache.MultiLevel[model.ContactPage]
	stats    *cache.MultiLevel[model.ContactStats]
}

func NewContactStore(next store.ContactStore, mem cache.Cache, rdb redis.UniversalClient, memTTL, redisTTL time.Duration) *ContactStore {
	cfg := func(prefix string) cache.MultiLevelConfig {
		return cache.MultiLevelConfig{Prefix: "contacts:" + prefix, MemTTL: memTTL, RedisTTL: redisTTL}
	}
	return &ContactStore{
		next:     next,
		contacts: cache.NewMultiLevel[model.Contact](mem, rdb, cfg("lookup")),
		lists:    cache.NewMultiLevel[[]model.Contact](mem, rdb, cfg("search")),
		pages:    cache.NewMultiLevel[model.ContactPage](mem, rdb, cfg("page")),
		stats:    cache.NewMultiLevel[model.ContactStats](mem, rdb, cfg("stats")),
	}
}

func (s *ContactStore) Lookup(ctx context.Context, email string) (model.Contact, error) {
	key := "lookup:" + strings.ToLower(email)
	start := time.Now()
	c, err := s.contacts.Get(ctx, key, func(ctx context.Context) (model.Contact, error) {
		return s.next.Lookup(ctx, email)
	})
	logger.WithCache(logger.FromContext(ctx), "lookup", key, err == nil, time.Since(start)).Debug("Contact lookup")
	return c, err
}

func (s *ContactStore) Search(ctx context.Context, q string) ([]model.Contact, error) {
	key := "search:" + strings.ToLower(q)
	return s.lists.Get(ctx, key, func(ctx context.Context) ([]model.Contact, error) {
		return s.next.Search(ctx, q)
	})
}

func (s *ContactStore) Paginate(ctx context.Context, page, size int) (model.ContactPage, error) {
	key := fmt.Sprintf("page:%d:%d", page, size)
	return s.pages.Get(ctx, key, func(ctx context.Context) (model.ContactPage, error) {
		return s.next.Paginate(ctx, page, size)
	})
}

func (s *ContactStore) Stats(ctx context.Context) (model.ContactStats, error) {
	return s.stats.Get(ctx, "stats", func(ctx context.Context) (model.ContactStats, error) {
		return s.next.Stats(ctx)
	})
}

// Ping forwards to the wrapped store when it supports it.
func (s *ContactStore) Ping(ctx context.Context) error {
	if p, ok := s.next.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	zap.L().Debug("Wrapped contact store has no ping")
	return nil
}
