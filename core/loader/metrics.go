package loader

import "github.com/101x4/LFUCache/core/metrics"

// Metrics defines the instrumentation hooks the loader reports into.
// Implementations must be thread-safe.
type Metrics interface {
	// LoadDuration times one source fetch, including the cache fill.
	LoadDuration(loader string) metrics.Timer
	// LoadShared is called when a fetch result was handed to more than
	// one collapsed caller.
	LoadShared(loader string)
	// LoadError is called when the source fails.
	LoadError(loader string)
}

// nopMetrics is a no-op implementation of Metrics.
type nopMetrics struct{}

func (nopMetrics) LoadDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) LoadShared(string)                 {}
func (nopMetrics) LoadError(string)                  {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
