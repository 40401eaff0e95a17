package metrics

import (
	"sync"

	"github.com/penglongli/gin-metrics/ginmetrics"
	"go.uber.org/zap"
)

const (
	AuthRejections = "auth_rejections_total"
	LoginAttempts  = "auth_login_attempts_total"
	RateLimited    = "rate_limited_requests_total"
	ContactLookups = "contact_lookups_total"
)

var registerOnce sync.Once

func GetMonitor(path string) *ginmetrics.Monitor {
	m := ginmetrics.GetMonitor()
	// +optional set path
	m.SetMetricPath(path)
	// +optional set slow time
	m.SetSlowTime(1)

	// +optional set request duration, default {0.1, 0.3, 1.2, 5, 10}
	// used to p95, p99
	m.SetDuration([]float64{0.05, 0.1, 0.2, 0.3, 0.5, 1, 2, 5})

	Register()
	return m
}

// Register adds the service counters to the global monitor. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		m := ginmetrics.GetMonitor()
		for _, metric := range []*ginmetrics.Metric{
			{
				Type:        ginmetrics.Counter,
				Name:        AuthRejections,
				Description: "requests rejected by the authentication gate",
				Labels:      []string{"reason"},
			},
			{
				Type:        ginmetrics.Counter,
				Name:        LoginAttempts,
				Description: "login attempts by outcome",
				Labels:      []string{"outcome"},
			},
			{
				Type:        ginmetrics.Counter,
				Name:        RateLimited,
				Description: "requests refused by the rate limiter",
				Labels:      []string{"limiter"},
			},
			{
				Type:        ginmetrics.Counter,
				Name:        ContactLookups,
				Description: "contact enrichment lookups by result",
				Labels:      []string{"result"},
			},
		} {
			if err := m.AddMetric(metric); err != nil {
				zap.L().Warn("metric registration failed", zap.String("metric", metric.Name), zap.Error(err))
			}
		}
	})
}

// Inc bumps a counter registered by Register. Unknown metrics are ignored.
func Inc(name string, labels ...string) {
	Register()
	metric := ginmetrics.GetMonitor().GetMetric(name)
	if metric == nil {
		return
	}
	if err := metric.Inc(labels); err != nil {
		zap.L().Debug("metric increment failed", zap.String("metric", name), zap.Error(err))
	}
}
