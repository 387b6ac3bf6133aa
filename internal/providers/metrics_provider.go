package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"homeboard/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	SetSubscribers(count int)
	AddBroadcasts(event string, delivered, evicted int)
	IncSyncRuns(job, result string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	subscribers         prometheus.Gauge
	deliveries          *prometheus.CounterVec
	evictions           *prometheus.CounterVec
	syncRuns            *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetSubscribers(count int) {
	m.subscribers.Set(float64(count))
}

func (m *MetricsProvider) AddBroadcasts(event string, delivered, evicted int) {
	m.deliveries.WithLabelValues(event).Add(float64(delivered))
	if evicted > 0 {
		m.evictions.WithLabelValues(event).Add(float64(evicted))
	}
}

func (m *MetricsProvider) IncSyncRuns(job, result string) {
	m.syncRuns.WithLabelValues(job, result).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "homeboard_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "homeboard_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "homeboard_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "homeboard_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "homeboard_persistence_duration_seconds",
			Help:    "Duration of state save and backup operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		subscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "homeboard_push_subscribers",
			Help: "Live push connections across all device identities",
		}),

		deliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "homeboard_push_deliveries_total",
			Help: "Events queued to push connections",
		}, []string{"event"}),

		evictions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "homeboard_push_evictions_total",
			Help: "Push connections dropped because they fell behind",
		}, []string{"event"}),

		syncRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "homeboard_sync_runs_total",
			Help: "Background sync runs by job and result",
		}, []string{"job", "result"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) SetSubscribers(_ int)                             {}
func (n *noopMetrics) AddBroadcasts(_ string, _, _ int)                 {}
func (n *noopMetrics) IncSyncRuns(_, _ string)                          {}
