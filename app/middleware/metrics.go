package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Contract number allocations partitioned by outcome
	numberAllocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_number_allocations_total",
			Help: "Contract number allocation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Close guard verdicts partitioned by failure code, "ok" on success
	closeChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_close_checks_total",
			Help: "Close guard verdicts by code",
		},
		[]string{"code"},
	)
)

// RecordNumberAllocation records the outcome of an allocation attempt
func RecordNumberAllocation(outcome string) {
	numberAllocationsTotal.WithLabelValues(outcome).Inc()
}

// RecordCloseCheck records a close guard verdict
func RecordCloseCheck(code string) {
	if code == "" {
		code = "ok"
	}
	closeChecksTotal.WithLabelValues(code).Inc()
}

// Metrics returns a Fiber v3 middleware that records basic Prometheus metrics.
// Labels are kept low-cardinality by using the matched route path when available.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		method := c.Method()
		route := c.Path()
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path // Use route template to avoid high cardinality
		}

		labels := prometheus.Labels{
			"method": method,
			"route":  route,
			"status": strconv.Itoa(status),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())

		return err
	}
}
