package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	upstreamRequestsTotal *prometheus.CounterVec
	upstreamDuration      *prometheus.HistogramVec
	imageCacheHits        prometheus.Counter
	imageCacheMisses      prometheus.Counter
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "castforge_http_requests_total",
				Help: "Total number of HTTP requests handled.",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "castforge_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
		upstreamRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "castforge_upstream_requests_total",
				Help: "Total upstream API requests by provider.",
			},
			[]string{"provider", "endpoint", "status"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "castforge_upstream_request_duration_seconds",
				Help:    "Upstream request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "endpoint", "status"},
		),
		imageCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "castforge_image_cache_hits_total",
				Help: "Featured image cache hits.",
			},
		),
		imageCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "castforge_image_cache_misses_total",
				Help: "Featured image cache misses.",
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.upstreamRequestsTotal,
		m.upstreamDuration,
		m.imageCacheHits,
		m.imageCacheMisses,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	if method == "" {
		method = "UNKNOWN"
	}
	statusLabel := strconv.Itoa(status)
	m.httpRequestsTotal.WithLabelValues(route, method, statusLabel).Inc()
	m.httpRequestDuration.WithLabelValues(route, method, statusLabel).Observe(duration.Seconds())
}

func (m *Metrics) ObserveUpstream(provider, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	statusLabel := strconv.Itoa(status)
	m.upstreamRequestsTotal.WithLabelValues(provider, endpoint, statusLabel).Inc()
	m.upstreamDuration.WithLabelValues(provider, endpoint, statusLabel).Observe(duration.Seconds())
}

func (m *Metrics) ObserveImageCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.imageCacheHits.Inc()
		return
	}
	m.imageCacheMisses.Inc()
}
