package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/101x4/LFUCache/core/loader"
	"github.com/101x4/LFUCache/core/metrics"
)

// loaderMetrics implements loader.Metrics using Prometheus.
type loaderMetrics struct {
	loadDuration *prometheus.HistogramVec
	loadsShared  *prometheus.CounterVec
	loadErrors   *prometheus.CounterVec
}

// NewLoaderMetrics creates a new Prometheus implementation of loader.Metrics.
func NewLoaderMetrics(reg prometheus.Registerer) loader.Metrics {
	m := &loaderMetrics{
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lfucache_load_duration_seconds",
			Help:    "Source fetch latency in seconds, including the cache fill",
			Buckets: defaultBuckets,
		}, []string{"loader"}),

		loadsShared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lfucache_loads_shared_total",
			Help: "Total number of fetches whose result served collapsed callers",
		}, []string{"loader"}),

		loadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lfucache_load_errors_total",
			Help: "Total number of source fetch failures",
		}, []string{"loader"}),
	}

	reg.MustRegister(
		m.loadDuration,
		m.loadsShared,
		m.loadErrors,
	)

	return m
}

func (m *loaderMetrics) LoadDuration(loader string) metrics.Timer {
	return newTimer(m.loadDuration.WithLabelValues(loader))
}

func (m *loaderMetrics) LoadShared(loader string) {
	m.loadsShared.WithLabelValues(loader).Inc()
}

func (m *loaderMetrics) LoadError(loader string) {
	m.loadErrors.WithLabelValues(loader).Inc()
}

var _ loader.Metrics = (*loaderMetrics)(nil)
