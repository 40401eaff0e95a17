package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// MultiLevel reads through the memory cache, then Redis, then a loader.
// Values found in a lower layer are written back to the upper layers.
// Concurrent misses for the same key share one load.
type MultiLevel[T any] struct {
	mem          Cache
	redis        redis.UniversalClient
	prefix       string
	memTTL       time.Duration
	redisTTL     time.Duration
	redisTimeout time.Duration
	loadTimeout  time.Duration
	group        singleflight.Group
}

type MultiLevelConfig struct {
	// Prefix namespaces the Redis keys.
	Prefix   string
	MemTTL   time.Duration
	RedisTTL time.Duration
	// RedisTimeout defaults to 50ms.
	RedisTimeout time.Duration
	// LoadTimeout defaults to 5s.
	LoadTimeout time.Duration
}

// NewMultiLevel wires the layers. redisClient may be nil.
func NewMultiLevel[T any](mem Cache, redisClient redis.UniversalClient, cfg MultiLevelConfig) *MultiLevel[T] {
	if cfg.RedisTimeout <= 0 {
		cfg.RedisTimeout = 50 * time.Millisecond
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 5 * time.Second
	}
	return &MultiLevel[T]{
		mem:          mem,
		redis:        redisClient,
		prefix:       cfg.Prefix,
		memTTL:       cfg.MemTTL,
		redisTTL:     cfg.RedisTTL,
		redisTimeout: cfg.RedisTimeout,
		loadTimeout:  cfg.LoadTimeout,
	}
}

// Get returns the cached value for key or calls load. Errors from load are
// returned unchanged and nothing is cached.
func (m *MultiLevel[T]) Get(ctx context.Context, key string, load func(ctx context.Context) (T, error)) (T, error) {
	// 1. Memory (no singleflight needed for fast path)
	if v, ok := m.fromMemory(key); ok {
		return v, nil
	}

	res, err, _ := m.group.Do(key, func() (any, error) {
		// Double-check memory after joining the flight.
		if v, ok := m.fromMemory(key); ok {
			return v, nil
		}

		// 2. Redis
		if v, ok := m.fromRedis(ctx, key); ok {
			m.mem.SetWithTTL(key, v, m.memTTL)
			return v, nil
		}

		// 3. Loader
		loadCtx, cancel := context.WithTimeout(ctx, m.loadTimeout)
		defer cancel()
		v, err := load(loadCtx)
		if err != nil {
			return v, err
		}
		m.mem.SetWithTTL(key, v, m.memTTL)
		m.toRedis(ctx, key, v)
		return v, nil
	})

	v, _ := res.(T)
	return v, err
}

// Invalidate drops key from every layer.
func (m *MultiLevel[T]) Invalidate(ctx context.Context, key string) {
	m.mem.Delete(key)
	if m.redis == nil {
		return
	}
	rctx, cancel := context.WithTimeout(ctx, m.redisTimeout)
	defer cancel()
	if err := m.redis.Del(rctx, m.redisKey(key)).Err(); err != nil {
		zap.L().Warn("Redis invalidate failed", zap.String("key", key), zap.Error(err))
	}
}

func (m *MultiLevel[T]) fromMemory(key string) (T, bool) {
	var zero T
	raw, ok := m.mem.Get(key)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

func (m *MultiLevel[T]) fromRedis(ctx context.Context, key string) (T, bool) {
	var v T
	if m.redis == nil {
		return v, false
	}
	rctx, cancel := context.WithTimeout(ctx, m.redisTimeout)
	defer cancel()

	data, err := m.redis.Get(rctx, m.redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("Redis read failed", zap.String("key", key), zap.Error(err))
		}
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		zap.L().Warn("Redis value undecodable", zap.String("key", key), zap.Error(err))
		return v, false
	}
	return v, true
}

func (m *MultiLevel[T]) toRedis(ctx context.Context, key string, v T) {
	if m.redis == nil || m.redisTTL <= 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Warn("Redis value unencodable", zap.String("key", key), zap.Error(err))
		return
	}
	rctx, cancel := context.WithTimeout(ctx, m.redisTimeout)
	defer cancel()
	if err := m.redis.Set(rctx, m.redisKey(key), data, m.redisTTL).Err(); err != nil {
		zap.L().Warn("Redis write failed", zap.String("key", key), zap.Error(err))
	}
}

func (m *MultiLevel[T]) redisKey(key string) string {
	if m.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", m.prefix, key)
}
