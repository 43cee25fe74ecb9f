// Package metrics provides Prometheus metrics collection for the HR portal edge.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// proxyRoute labels requests that fell through to the caching proxy.
const proxyRoute = "proxy"

var (
	// HTTPRequestDuration tracks HTTP request duration by method, route, and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	// HTTPRequestTotal tracks total HTTP requests by method, route, and status code.
	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	// FetchTotal counts intercepted fetches by strategy and the source that answered.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_fetch_total",
			Help: "Total number of intercepted fetches",
		},
		[]string{"strategy", "source"},
	)

	// UpstreamDuration tracks upstream fetch latency.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edge_upstream_duration_seconds",
			Help:    "Upstream fetch duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"result"},
	)

	// CacheOperationsTotal tracks cache partition operations.
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_cache_operations_total",
			Help: "Total number of cache partition operations",
		},
		[]string{"partition", "operation", "result"},
	)

	// LifecycleState is the controller lifecycle state (see controller.State).
	LifecycleState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edge_lifecycle_state",
			Help: "Offline cache controller lifecycle state",
		},
	)

	// Partitions is the number of cache partitions present.
	Partitions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edge_partitions",
			Help: "Number of cache partitions",
		},
	)

	// NotificationsTotal counts push notifications by result.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_notifications_total",
			Help: "Total number of push notifications",
		},
		[]string{"result"},
	)

	// ConnectedClients is the number of window clients attached over SSE.
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "edge_connected_clients",
			Help: "Number of attached window clients",
		},
	)

	// RateLimitedTotal counts control plane calls rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edge_rate_limited_total",
			Help: "Total number of rate limited control plane requests",
		},
		[]string{"identity"},
	)

	// CircuitBreakerState is 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "edge_circuit_breaker_state",
			Help: "Circuit breaker state",
		},
		[]string{"name"},
	)
)

// PrometheusMiddleware returns a Gin middleware that collects HTTP metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = proxyRoute
		}

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		HTTPRequestDuration.WithLabelValues(method, path, statusCode).Observe(duration)
		HTTPRequestTotal.WithLabelValues(method, path, statusCode).Inc()
	}
}

// RecordFetch records an intercepted fetch.
func RecordFetch(strategy, source string) {
	FetchTotal.WithLabelValues(strategy, source).Inc()
}

// RecordUpstream records an upstream round trip.
func RecordUpstream(duration time.Duration, result string) {
	UpstreamDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordCacheOperation records metrics for a cache operation.
func RecordCacheOperation(partition, operation, result string) {
	CacheOperationsTotal.WithLabelValues(partition, operation, result).Inc()
}

// SetLifecycleState records the controller lifecycle state.
func SetLifecycleState(state int) {
	LifecycleState.Set(float64(state))
}

// SetPartitions records the number of cache partitions.
func SetPartitions(n int) {
	Partitions.Set(float64(n))
}

// RecordNotification records a push notification outcome.
func RecordNotification(result string) {
	NotificationsTotal.WithLabelValues(result).Inc()
}

// SetConnectedClients records the number of attached window clients.
func SetConnectedClients(n int) {
	ConnectedClients.Set(float64(n))
}

// SetCircuitBreakerState records a circuit breaker state.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordRateLimited records a rejected request. kind is "subject" or "ip".
func RecordRateLimited(kind string) {
	RateLimitedTotal.WithLabelValues(kind).Inc()
}
