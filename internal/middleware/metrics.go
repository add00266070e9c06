package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackit_redis_errors_total",
		Help: "Total Redis command errors",
	}, []string{"cmd"})

	// CacheLookups counts read-through cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackit_cache_lookups_total",
		Help: "Read-through cache lookups by result",
	}, []string{"result"})

	// RateLimited counts requests rejected by the Redis rate limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackit_rate_limited_total",
		Help: "Requests rejected by the rate limiter by resource",
	}, []string{"resource"})

	// ActiveWebSockets is the number of upgraded sockets currently being served.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hackit_active_websockets",
		Help: "Active websocket connections",
	})

	metricsOnce  sync.Once
	fiberMetrics *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the fiber request metrics collector. The collector is
// registered once per process; later calls return the same instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	metricsOnce.Do(func() {
		fiberMetrics = fiberprometheus.New(serviceName)
	})
	return fiberMetrics
}

// MetricsMiddleware records request metrics, skipping the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	handler := p.Middleware
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return handler(c)
	}
}
