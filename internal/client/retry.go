package client

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy waits BaseDelay * 2^attempt between attempts.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Sleep      func(ctx context.Context, d time.Duration) error
	// Retryable stops the loop early when it returns false. Nil retries
	// every error.
	Retryable  func(err error) bool
	Log        *zap.Logger
}

// Delay is the wait after the given zero-based failed attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	return p.BaseDelay << attempt
}

// Retry calls fn up to MaxRetries+1 times and returns the last error
// unchanged once the budget is spent. A cancelled ctx stops the waiting
// and returns the context error.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	log := p.Log
	if log == nil {
		log = zap.L()
	}

	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			break
		}
		if attempt == p.MaxRetries {
			log.Warn("Request failed after all attempts",
				zap.Int("attempts", p.MaxRetries+1), zap.Error(err))
			break
		}
		delay := p.Delay(attempt)
		log.Debug("Retrying request",
			zap.Duration("delay", delay),
			zap.Int("attempt", attempt+1),
			zap.Int("of", p.MaxRetries+1))
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// RetryPolicy is the gateway's configured policy for maxRetries attempts;
// a negative maxRetries uses the configured RetryAttempts.
func (g *Gateway) RetryPolicy(maxRetries int) RetryPolicy {
	if maxRetries < 0 {
		maxRetries = g.cfg.RetryAttempts
	}
	return RetryPolicy{MaxRetries: maxRetries, BaseDelay: g.cfg.RetryDelay, Sleep: g.sleep, Log: g.log}
}

// Retry runs fn under the gateway's policy. Retrying is opt-in: Request
// itself never retries.
func (g *Gateway) Retry(ctx context.Context, maxRetries int, fn func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	return Retry(ctx, g.RetryPolicy(maxRetries), fn)
}
