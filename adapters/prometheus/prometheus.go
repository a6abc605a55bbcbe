// Package prometheus provides Prometheus implementations of the metrics
// interfaces of the cache and loader packages.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/101x4/LFUCache/core/metrics"
)

// timer wraps a Prometheus histogram to implement the Timer interface.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Default histogram buckets for latency metrics (in seconds).
var defaultBuckets = []float64{
	.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
}

// AllMetrics holds Prometheus implementations for the cache and the loader.
// Use this when you want to initialize metrics for the entire application
// at once.
type AllMetrics struct {
	Cache  *cacheMetrics
	Loader *loaderMetrics
}

// NewAllMetrics creates Prometheus metrics for the cache and the loader.
func NewAllMetrics(reg prometheus.Registerer) *AllMetrics {
	return &AllMetrics{
		Cache:  NewCacheMetrics(reg).(*cacheMetrics),
		Loader: NewLoaderMetrics(reg).(*loaderMetrics),
	}
}
