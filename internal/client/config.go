// Package client is the Go counterpart of the Outlook add-in: a session
// manager that logs in and keeps its token verified, and a request gateway
// that every API call goes through.
package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/duccv/contact-addin/config"
	"go.uber.org/zap"
)

const (
	DefaultTimeout           = 30 * time.Second
	ProductionTimeout        = 15 * time.Second
	DefaultRetryAttempts     = 3
	DefaultRetryDelay        = time.Second
	DefaultCacheTTL          = 5 * time.Minute
	DefaultCacheCapacity     = 500
	DefaultMaxLoginAttempts  = 5
	DefaultRefreshThreshold  = 5 * time.Minute
	DefaultRefreshInterval   = 5 * time.Minute
	DefaultDirectoryPageSize = 20
	MinSearchLength          = 2
)

// Endpoints, relative to Config.BaseURL.
const (
	EndpointLogin    = "/auth/login"
	EndpointRegister = "/auth/register"
	EndpointVerify   = "/auth/verify"
	EndpointEnrich   = "/contacts/enrich"
	EndpointSearch   = "/contacts/search"
	EndpointDir      = "/contacts/directory"
	EndpointStats    = "/contacts/stats"
	EndpointHealth   = "/health"
)

type Config struct {
	BaseURL          string
	Timeout          time.Duration
	RetryAttempts    int
	RetryDelay       time.Duration
	CacheTTL         time.Duration
	CacheCapacity    int
	MaxLoginAttempts int
	RefreshThreshold time.Duration
	RefreshInterval  time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:          "http://localhost:3001/api",
		Timeout:          DefaultTimeout,
		RetryAttempts:    DefaultRetryAttempts,
		RetryDelay:       DefaultRetryDelay,
		CacheTTL:         DefaultCacheTTL,
		CacheCapacity:    DefaultCacheCapacity,
		MaxLoginAttempts: DefaultMaxLoginAttempts,
		RefreshThreshold: DefaultRefreshThreshold,
		RefreshInterval:  DefaultRefreshInterval,
	}
}

// ConfigFromEnv maps the client section of the service config. Zero values
// keep the defaults; production mode caps the timeout at 15s.
func ConfigFromEnv(cfg config.ClientConfig) Config {
	out := DefaultConfig()
	if cfg.BaseURL != "" {
		out.BaseURL = cfg.BaseURL
	}
	if cfg.RequestTimeout > 0 {
		out.Timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	if cfg.Production && out.Timeout > ProductionTimeout {
		out.Timeout = ProductionTimeout
	}
	if cfg.RetryAttempts > 0 {
		out.RetryAttempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		out.RetryDelay = time.Duration(cfg.RetryDelay) * time.Millisecond
	}
	if cfg.CacheTTL > 0 {
		out.CacheTTL = time.Duration(cfg.CacheTTL) * time.Second
	}
	if cfg.CacheCapacity > 0 {
		out.CacheCapacity = cfg.CacheCapacity
	}
	if cfg.MaxLoginAttempts > 0 {
		out.MaxLoginAttempts = cfg.MaxLoginAttempts
	}
	if cfg.RefreshThreshold > 0 {
		out.RefreshThreshold = time.Duration(cfg.RefreshThreshold) * time.Second
	}
	if cfg.RefreshInterval > 0 {
		out.RefreshInterval = time.Duration(cfg.RefreshInterval) * time.Second
	}
	return out
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = d.CacheCapacity
	}
	if c.MaxLoginAttempts <= 0 {
		c.MaxLoginAttempts = d.MaxLoginAttempts
	}
	if c.RefreshThreshold <= 0 {
		c.RefreshThreshold = d.RefreshThreshold
	}
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = d.RefreshInterval
	}
	return c
}

type options struct {
	httpClient *http.Client
	log        *zap.Logger
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*options)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock replaces time.Now for token expiry checks and the cache.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSleep replaces the wait between retries.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) { o.sleep = sleep }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, sleep: sleepContext}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = NewHTTPClient()
	}
	if o.log == nil {
		o.log = zap.L()
	}
	return o
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
