package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/duccv/contact-addin/internal/model/response"
	"github.com/duccv/contact-addin/pkg/logger"
	"github.com/duccv/contact-addin/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window per-IP limiter. Counters live in Redis when
// a client is configured and fall back to process memory when Redis is
// absent or failing.
type RateLimiter struct {
	name   string
	redis  redis.UniversalClient
	window time.Duration
	max    int
	body   response.ResponseData
	local  *windowCounter
}

func NewRateLimiter(
	name string,
	rdb redis.UniversalClient,
	window time.Duration,
	max int,
	body response.ResponseData,
) *RateLimiter {
	return &RateLimiter{
		name:   name,
		redis:  rdb,
		window: window,
		max:    max,
		body:   body,
		local:  newWindowCounter(time.Now),
	}
}

func (l *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", l.name, getClientIP(c))

		count, reset := l.hit(c.Request.Context(), key)
		remaining := max(l.max-int(count), 0)

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if count > int64(l.max) {
			metrics.Inc(metrics.RateLimited, l.name)
			c.Header("Retry-After", strconv.Itoa(int(reset.Round(time.Second).Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, l.body)
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) hit(ctx context.Context, key string) (int64, time.Duration) {
	if l.redis != nil {
		count, reset, err := l.incrementWithTTL(ctx, key)
		if err == nil {
			return count, reset
		}
		logger.FromContext(ctx).Warn("Rate limiter falling back to memory",
			zap.String("limiter", l.name), zap.Error(err))
	}
	return l.local.incr(key, l.window)
}

func (l *RateLimiter) incrementWithTTL(ctx context.Context, key string) (int64, time.Duration, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, 0, err
		}
		return count, l.window, nil
	}

	ttl, err := l.redis.PTTL(ctx, key).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// Key lost its expiry; restart the window.
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = l.window
	}
	return count, ttl, nil
}

type windowCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*window
}

type window struct {
	count   int64
	resetAt time.Time
}

func newWindowCounter(now func() time.Time) *windowCounter {
	return &windowCounter{now: now, windows: make(map[string]*window)}
}

func (w *windowCounter) incr(key string, size time.Duration) (int64, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	win, ok := w.windows[key]
	if !ok || !now.Before(win.resetAt) {
		w.sweep(now)
		win = &window{resetAt: now.Add(size)}
		w.windows[key] = win
	}
	win.count++
	return win.count, win.resetAt.Sub(now)
}

// sweep drops expired windows. Called with mu held.
func (w *windowCounter) sweep(now time.Time) {
	for k, win := range w.windows {
		if !now.Before(win.resetAt) {
			delete(w.windows, k)
		}
	}
}
