// Package metrics exposes Prometheus instrumentation for the HTTP server
// and plugin calls.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ganttcalendar"

// Metrics holds the collectors.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	pluginCalls   *prometheus.CounterVec
	pluginLatency *prometheus.HistogramVec
}

var (
	globalOnce sync.Once
	globalInst *Metrics
)

// Global returns the metrics registered with the default registry.
func Global() *Metrics {
	globalOnce.Do(func() {
		globalInst = New(prometheus.DefaultRegisterer)
	})
	return globalInst
}

// New registers a fresh set of collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		pluginCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "plugin",
			Name:      "calls_total",
			Help:      "Plugin function calls by plugin, function and result",
		}, []string{"plugin", "function", "result"}),
		pluginLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "plugin",
			Name:      "call_duration_seconds",
			Help:      "Plugin function call latency",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"plugin", "function"}),
	}
}

// Middleware records request counts and latency. Unmatched routes are
// grouped under "unmatched" to bound label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObservePluginCall records one plugin call.
func (m *Metrics) ObservePluginCall(plugin, fn string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.pluginCalls.WithLabelValues(plugin, fn, result).Inc()
	m.pluginLatency.WithLabelValues(plugin, fn).Observe(d.Seconds())
}
