package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks records pipeline, cache and HTTP events as Prometheus
// metrics in a private registry.
type PrometheusHooks struct {
	registry *prometheus.Registry

	fetches        *prometheus.CounterVec
	fetchDuration  *prometheus.HistogramVec
	fetchedItems   *prometheus.CounterVec
	sessions       *prometheus.CounterVec
	sessionSeconds prometheus.Histogram
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	renderBytes    *prometheus.CounterVec
	cacheOps       *prometheus.CounterVec
	cacheBytes     *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// NewPrometheusHooks creates hooks with all collectors registered.
func NewPrometheusHooks() *PrometheusHooks {
	h := &PrometheusHooks{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poster_osm_fetches_total",
			Help: "OSM fetches by kind and status.",
		}, []string{"kind", "status"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poster_osm_fetch_duration_seconds",
			Help:    "Duration of OSM fetches by kind.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"kind"}),
		fetchedItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poster_osm_items_total",
			Help: "Edges or features returned by OSM fetches.",
		}, []string{"kind"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poster_sessions_total",
			Help: "Sessions built by status.",
		}, []string{"status"}),
		sessionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "poster_session_duration_seconds",
			Help:    "Time to fetch and project all session data.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poster_renders_total",
			Help: "Rendered artifacts by format and status.",
		}, []string{"format", "status"}),
		renderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poster_render_duration_seconds",
			Help:    "Render duration by format.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
		renderBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poster_render_bytes_total",
			Help: "Bytes produced by format.",
		}, []string{"format"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poster_cache_operations_total",
			Help: "Cache lookups and writes by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poster_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "poster_http_requests_total",
			Help: "Outgoing HTTP requests by host and status code.",
		}, []string{"host", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poster_http_request_duration_seconds",
			Help:    "Outgoing HTTP request duration by host.",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
	}
	h.registry.MustRegister(
		h.fetches, h.fetchDuration, h.fetchedItems,
		h.sessions, h.sessionSeconds,
		h.renders, h.renderDuration, h.renderBytes,
		h.cacheOps, h.cacheBytes,
		h.httpRequests, h.httpDuration,
	)
	return h
}

// Registry returns the registry holding the collectors.
func (h *PrometheusHooks) Registry() *prometheus.Registry {
	return h.registry
}

// WriteTextfile writes the current metrics in the node-exporter textfile
// collector format.
func (h *PrometheusHooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.registry)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *PrometheusHooks) OnFetchStart(context.Context, string) {}

func (h *PrometheusHooks) OnFetchComplete(_ context.Context, kind string, count int, d time.Duration, err error) {
	h.fetches.WithLabelValues(kind, status(err)).Inc()
	h.fetchDuration.WithLabelValues(kind).Observe(d.Seconds())
	h.fetchedItems.WithLabelValues(kind).Add(float64(count))
}

func (h *PrometheusHooks) OnSessionComplete(_ context.Context, _ string, d time.Duration, err error) {
	h.sessions.WithLabelValues(status(err)).Inc()
	h.sessionSeconds.Observe(d.Seconds())
}

func (h *PrometheusHooks) OnRenderStart(context.Context, string, string) {}

func (h *PrometheusHooks) OnRenderComplete(_ context.Context, _ string, format string, size int, d time.Duration, err error) {
	h.renders.WithLabelValues(format, status(err)).Inc()
	h.renderDuration.WithLabelValues(format).Observe(d.Seconds())
	h.renderBytes.WithLabelValues(format).Add(float64(size))
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (h *PrometheusHooks) OnResponse(_ context.Context, _ string, host, _ string, code int, d time.Duration) {
	h.httpRequests.WithLabelValues(host, strconv.Itoa(code)).Inc()
	h.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnError(_ context.Context, _ string, host, _ string, _ error) {
	h.httpRequests.WithLabelValues(host, "error").Inc()
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)
