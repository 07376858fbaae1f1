package gateway

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var instrumentOnce sync.Once

var requestsCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "hawiya",
	Subsystem: "request",
	Name:      "requests_count",
	Help:      "Number of requests per each endpoint",
}, []string{"code", "method", "url"})

var responseTime = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "hawiya",
	Subsystem: "response",
	Name:      "response_time_hist",
	Help:      "hawiya response duration in milliseconds",
})

var responseSize = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "hawiya",
	Subsystem: "response",
	Name:      "size_histogram",
	Help:      "hawiya response size",
})

var requestSize = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "hawiya",
	Subsystem: "request",
	Name:      "size_hist",
	Help:      "Request size instrumenter",
})

// Instrumentation records request counts, latency and sizes per route. The
// /metrics endpoint itself is not counted.
func Instrumentation() fiber.Handler {
	instrumentOnce.Do(func() {
		prometheus.MustRegister(requestsCount, responseTime, responseSize, requestSize)
	})
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		duration := float64(time.Since(start)) * 1e-6 // to millisecond

		status := strconv.Itoa(c.Response().StatusCode())
		routePath := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			routePath = r.Path
		}

		requestsCount.WithLabelValues(status, c.Method(), routePath).Inc()
		responseTime.Observe(duration)
		responseSize.Observe(float64(len(c.Response().Body())))
		requestSize.Observe(float64(len(c.Body())))
		return err
	}
}
