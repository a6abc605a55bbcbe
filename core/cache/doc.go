// Package cache provides an in-process key-value cache with LFU eviction
// and idle-time expiration.
//
// [LFU] bounds memory by a fixed capacity. When the cache is full, the
// entry with the lowest access frequency is evicted to make room; among
// entries sharing that frequency, the one resident longest goes first.
// Independently of frequency, an entry that has not been touched for the
// configured TTL expires: it is removed by the next access that observes
// it, or by a background reaper sweeping the table once per TTL interval.
//
//	c, err := cache.New[string, string](1000, time.Minute)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	c.Put("greeting", "hello")
//	if v, ok := c.Get("greeting"); ok {
//	    // Use v
//	}
//
// # Frequency Accounting
//
// Every Put and every successful Get counts as a use and moves the entry
// one frequency bucket up. Overwriting a live key keeps its accumulated
// frequency; overwriting an expired key starts over at frequency one, as
// does re-inserting a key after it was evicted.
//
// # Concurrency
//
// All operations are safe for concurrent use. The cache state sits behind
// a single mutex and each operation runs to completion under it, so
// concurrent puts, gets and reaper sweeps are linearizable.
//
// # Lifecycle
//
// [New] starts one goroutine for the reaper; [LFU.Close] stops it and
// waits for it to exit. Binding a context via [WithContext] stops the
// reaper on cancellation as well. A closed cache keeps serving requests,
// expiry just degrades to access-time checks.
//
// # Instrumentation
//
// [WithMetrics] plugs in a [Metrics] implementation; the adapters/prometheus
// package provides one backed by Prometheus collectors. [WithLogger] routes
// debug records of evictions, expirations and sweeps to a slog.Logger.
package cache
