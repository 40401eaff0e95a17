package middleware

import (
	"strings"
	"time"

	"github.com/duccv/contact-addin/config"
	"github.com/gin-gonic/gin"
)

type MiddlewareConfig struct {
	// Rate Limiting
	RateLimitEnabled bool
	RateLimitWindow  time.Duration
	RateLimitMax     int
	AuthRateLimitMax int

	// Logging Configuration
	LoggingEnabled       bool
	LogUserAgent         bool
	LogIPAddress         bool
	SlowRequestThreshold time.Duration
}

func DefaultMiddlewareConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		RateLimitEnabled:     true,
		RateLimitWindow:      15 * time.Minute,
		RateLimitMax:         100,
		AuthRateLimitMax:     5,
		LoggingEnabled:       true,
		LogUserAgent:         true,
		LogIPAddress:         true,
		SlowRequestThreshold: 5 * time.Second,
	}
}

// NewMiddlewareConfig derives the middleware settings from the loaded
// environment.
func NewMiddlewareConfig(env *config.Env) *MiddlewareConfig {
	cfg := DefaultMiddlewareConfig()
	rl := env.RateLimitConfig
	cfg.RateLimitEnabled = rl.Enabled
	if rl.Window > 0 {
		cfg.RateLimitWindow = time.Duration(rl.Window) * time.Second
	}
	if rl.Max > 0 {
		cfg.RateLimitMax = rl.Max
	}
	if rl.AuthMax > 0 {
		cfg.AuthRateLimitMax = rl.AuthMax
	}
	return cfg
}

// getClientIP extracts the real client IP address
func getClientIP(c *gin.Context) string {
	// Check for forwarded headers
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		first, _, _ := strings.Cut(ip, ",")
		return strings.TrimSpace(first)
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("X-Client-IP"); ip != "" {
		return ip
	}

	return c.ClientIP()
}
