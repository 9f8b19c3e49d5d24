package api_router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flow_version",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flow_version",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	versionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flow_version",
		Name:      "versions_created_total",
		Help:      "Flow versions created, by origin.",
	}, []string{"origin"})

	rollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flow_version",
		Name:      "rollbacks_total",
		Help:      "Rollback operations executed.",
	})

	versionsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flow_version",
		Name:      "versions_archived_total",
		Help:      "Versions archived by policy runs.",
	})

	diffDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flow_version",
		Name:      "diff_duration_seconds",
		Help:      "Structural diff computation latency.",
		Buckets:   prometheus.DefBuckets,
	})
)

// RequestMetrics records per-request counters and latency.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Metrics exposes the prometheus registry.
func Metrics() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
