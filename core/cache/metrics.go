package cache

import "github.com/101x4/LFUCache/core/metrics"

// Metrics defines the instrumentation hooks the cache reports into.
// Implementations must be thread-safe. Methods may be invoked while the
// cache lock is held, so they must not call back into the cache.
type Metrics interface {
	// Hit is called when Get returns a live entry.
	Hit(cache string)
	// Miss is called when Get finds nothing, counting absent and expired
	// keys alike.
	Miss(cache string)
	// Evicted is called for every entry removed by capacity pressure.
	Evicted(cache string)
	// Expired is called with the number of entries removed because their
	// idle time exceeded the TTL, whether on access or during a sweep.
	Expired(cache string, count int)
	// Entries reports the entry table size after a mutation.
	Entries(cache string, count int)
	// SweepDuration times one reaper sweep.
	SweepDuration(cache string) metrics.Timer
}

// nopMetrics is a no-op implementation of Metrics.
type nopMetrics struct{}

func (nopMetrics) Hit(string)          {}
func (nopMetrics) Miss(string)         {}
func (nopMetrics) Evicted(string)      {}
func (nopMetrics) Expired(string, int) {}
func (nopMetrics) Entries(string, int) {}

func (nopMetrics) SweepDuration(string) metrics.Timer { return metrics.NopTimer() }

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
