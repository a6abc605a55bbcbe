package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/101x4/LFUCache/core/cache"
	"github.com/101x4/LFUCache/core/metrics"
)

// cacheMetrics implements cache.Metrics using Prometheus.
type cacheMetrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	evictions     *prometheus.CounterVec
	expirations   *prometheus.CounterVec
	entries       *prometheus.GaugeVec
	sweepDuration *prometheus.HistogramVec
}

// NewCacheMetrics creates a new Prometheus implementation of cache.Metrics.
func NewCacheMetrics(reg prometheus.Registerer) cache.Metrics {
	m := &cacheMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lfucache_hits_total",
			Help: "Total number of gets served from a live entry",
		}, []string{"cache"}),

		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lfucache_misses_total",
			Help: "Total number of gets that found no live entry",
		}, []string{"cache"}),

		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lfucache_evictions_total",
			Help: "Total number of entries evicted by capacity pressure",
		}, []string{"cache"}),

		expirations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lfucache_expirations_total",
			Help: "Total number of entries removed after exceeding their TTL",
		}, []string{"cache"}),

		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "lfucache_entries",
			Help: "Current number of entries in the table",
		}, []string{"cache"}),

		sweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lfucache_sweep_duration_seconds",
			Help:    "Reaper sweep latency in seconds",
			Buckets: defaultBuckets,
		}, []string{"cache"}),
	}

	reg.MustRegister(
		m.hits,
		m.misses,
		m.evictions,
		m.expirations,
		m.entries,
		m.sweepDuration,
	)

	return m
}

func (m *cacheMetrics) Hit(cache string) {
	m.hits.WithLabelValues(cache).Inc()
}

func (m *cacheMetrics) Miss(cache string) {
	m.misses.WithLabelValues(cache).Inc()
}

func (m *cacheMetrics) Evicted(cache string) {
	m.evictions.WithLabelValues(cache).Inc()
}

func (m *cacheMetrics) Expired(cache string, count int) {
	m.expirations.WithLabelValues(cache).Add(float64(count))
}

func (m *cacheMetrics) Entries(cache string, count int) {
	m.entries.WithLabelValues(cache).Set(float64(count))
}

func (m *cacheMetrics) SweepDuration(cache string) metrics.Timer {
	return newTimer(m.sweepDuration.WithLabelValues(cache))
}

var _ cache.Metrics = (*cacheMetrics)(nil)
