package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry of the gateway.
type MetricsService struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec
	cacheLatency     prometheus.Histogram
	cacheWrite       prometheus.Histogram
	cacheHitRatio    prometheus.Gauge
	cacheLookups     *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	auditWrites      *prometheus.CounterVec
	liveConnections  prometheus.Gauge

	cacheHitCount  uint64
	cacheMissCount uint64
	requestCount   uint64
	upstreamCount  uint64
	liveCount      int64
}

// MetricsSnapshot is a JSON-friendly digest of the counters.
type MetricsSnapshot struct {
	RequestsTotal   uint64    `json:"requests_total"`
	UpstreamCalls   uint64    `json:"upstream_calls"`
	CacheHits       uint64    `json:"cache_hits"`
	CacheMisses     uint64    `json:"cache_misses"`
	CacheHitRatio   float64   `json:"cache_hit_ratio"`
	LiveConnections int64     `json:"live_connections"`
	Goroutines      int       `json:"goroutines"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the gateway",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served by the gateway",
		}, []string{"method", "path", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of calls to the analysis backend",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_errors_total",
			Help: "Failed calls to the analysis backend; status 0 means unreachable",
		}, []string{"method", "route", "status"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_latency_seconds",
			Help:    "Latency of cache reads",
			Buckets: prometheus.DefBuckets,
		}),
		cacheWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_seconds",
			Help:    "Latency of cache writes",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cache_hit_ratio",
			Help: "Ratio of cache hits to lookups",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "job_status_transitions_total",
			Help: "Approve/reject attempts by outcome",
		}, []string{"action", "outcome"}),
		auditWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_writes_total",
			Help: "Audit trail writes by outcome",
		}, []string{"outcome"}),
		liveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "live_feed_connections",
			Help: "Open websocket connections on the job feed",
		}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Number of goroutines",
	}, func() float64 { return float64(runtime.NumGoroutine()) })

	registry.MustRegister(
		m.requestDuration, m.requestTotal,
		m.upstreamDuration, m.upstreamErrors,
		m.cacheLatency, m.cacheWrite, m.cacheHitRatio, m.cacheLookups,
		m.transitions, m.auditWrites, m.liveConnections,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveUpstream records one backend call. It satisfies gateway.Observer.
func (m *MetricsService) ObserveUpstream(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.upstreamDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	if status == 0 || status >= 400 {
		m.upstreamErrors.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
	atomic.AddUint64(&m.upstreamCount, 1)
}

// RecordCacheOperation records a lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	m.cacheHitRatio.Set(float64(hits) / float64(total))
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordTransition counts an approve/reject attempt.
func (m *MetricsService) RecordTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, outcome).Inc()
}

// RecordAuditWrite counts an audit write.
func (m *MetricsService) RecordAuditWrite(ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.auditWrites.WithLabelValues(outcome).Inc()
}

// LiveConnectionOpened and LiveConnectionClosed track the websocket feed.
func (m *MetricsService) LiveConnectionOpened() {
	if m == nil {
		return
	}
	m.liveConnections.Inc()
	atomic.AddInt64(&m.liveCount, 1)
}

func (m *MetricsService) LiveConnectionClosed() {
	if m == nil {
		return
	}
	m.liveConnections.Dec()
	atomic.AddInt64(&m.liveCount, -1)
}

// Snapshot summarises the counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{GeneratedAt: time.Now().UTC()}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	return MetricsSnapshot{
		RequestsTotal:   atomic.LoadUint64(&m.requestCount),
		UpstreamCalls:   atomic.LoadUint64(&m.upstreamCount),
		CacheHits:       hits,
		CacheMisses:     misses,
		CacheHitRatio:   ratio,
		LiveConnections: atomic.LoadInt64(&m.liveCount),
		Goroutines:      runtime.NumGoroutine(),
		GeneratedAt:     time.Now().UTC(),
	}
}
