// Package metrics exposes Prometheus collectors for the cache layer, the
// invalidation pipeline and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "content_service"

// Collector owns a registry and the service's metrics.
type Collector struct {
	registry *prometheus.Registry

	cacheOps           *prometheus.CounterVec
	invalidationSteps  *prometheus.CounterVec
	invalidationQueued *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New creates a Collector with its own registry, including Go runtime and
// process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Collector{
		registry: reg,
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache lookups and populations by operation and result.",
		}, []string{"op", "result"}),
		invalidationSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invalidation",
			Name:      "steps_total",
			Help:      "Invalidation fan-out steps by kind and outcome.",
		}, []string{"kind", "outcome"}),
		invalidationQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invalidation",
			Name:      "retries_total",
			Help:      "Invalidation steps handed to the background retry queue.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(c.cacheOps, c.invalidationSteps, c.invalidationQueued, c.httpRequests, c.httpDuration)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe implements cache.Observer.
func (c *Collector) Observe(op, result string) {
	c.cacheOps.WithLabelValues(op, result).Inc()
}

// InvalidationStep records the outcome of one fan-out step.
func (c *Collector) InvalidationStep(kind, outcome string) {
	c.invalidationSteps.WithLabelValues(kind, outcome).Inc()
}

// InvalidationRetry records what happened to a step handed to the retry queue.
func (c *Collector) InvalidationRetry(outcome string) {
	c.invalidationQueued.WithLabelValues(outcome).Inc()
}

// Handler returns the /metrics HTTP handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// GinMiddleware records request count and latency per matched route.
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.httpRequests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpDuration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
