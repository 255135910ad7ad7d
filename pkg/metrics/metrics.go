// Package metrics exposes prometheus collectors for the HTTP API and the
// reporting domain.
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

// Metrics owns a private registry so tests can create independent instances.
type Metrics struct {
	registry   *prometheus.Registry
	httpReqCnt *prometheus.CounterVec
	httpDur    *prometheus.HistogramVec
	httpInfl   *prometheus.GaugeVec
	reportOps  *prometheus.CounterVec
	cacheHits  *prometheus.CounterVec
}

// New registers all collectors under namespace.
func New(namespace string, buckets []float64) *Metrics {
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r.MustRegister(collectors.NewGoCollector())

	httpReqCnt := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total"}, []string{"method", "route", "status"})
	httpDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Buckets: buckets}, []string{"method", "route", "status"})
	httpInfl := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: "http_requests_inflight"}, []string{"route"})
	reportOps := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "report_operations_total"}, []string{"operation"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "dashboard_cache_total"}, []string{"result"})
	r.MustRegister(httpReqCnt, httpDur, httpInfl, reportOps, cacheHits)

	return &Metrics{
		registry:   r,
		httpReqCnt: httpReqCnt,
		httpDur:    httpDur,
		httpInfl:   httpInfl,
		reportOps:  reportOps,
		cacheHits:  cacheHits,
	}
}

// ReportOperation counts a committed report mutation (create, update, delete, remove_uang_nitip).
func (m *Metrics) ReportOperation(op string) {
	if m == nil {
		return
	}
	m.reportOps.WithLabelValues(op).Inc()
}

// CacheResult counts dashboard cache lookups by result (hit, miss, error).
func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(result).Inc()
}

// Middleware records request count, latency and in-flight requests per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpInfl.WithLabelValues(route).Inc()
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		m.httpReqCnt.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpDur.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpInfl.WithLabelValues(route).Dec()
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
