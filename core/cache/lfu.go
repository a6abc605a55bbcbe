package cache

import (
	"container/list"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// lfuEntry is one cached pair plus its bookkeeping: the access counter, the
// idle timestamp and the entry's position inside its frequency bucket.
type lfuEntry[K comparable, V any] struct {
	key        K
	value      V
	freq       int
	lastAccess time.Time
	elem       *list.Element
}

// LFU is an in-process cache bounded by a fixed capacity. When full it
// evicts the least frequently used entry, and independently of frequency an
// entry whose idle time exceeds the TTL expires. Expired entries are
// dropped on the access that observes them and by a background reaper that
// sweeps the table once per TTL interval.
//
// The entry table, the frequency buckets and the minimum-frequency tracker
// form a single unit of state guarded by one mutex; every operation,
// including a reaper sweep, runs to completion under it.
type LFU[K comparable, V any] struct {
	name     string
	capacity int
	ttl      time.Duration

	log     *slog.Logger
	metrics Metrics
	now     func() time.Time

	mu      sync.Mutex
	entries map[K]*lfuEntry[K, V]
	buckets map[int]*list.List // frequency -> entries, oldest at the front
	minFreq int                // lowest occupied frequency, 0 while empty

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New creates an LFU cache holding at most capacity entries whose idle
// lifetime is ttl, and starts its background reaper. Capacity and ttl must
// both be strictly positive; otherwise New fails with
// [ErrInvalidConfiguration] before any state is allocated.
func New[K comparable, V any](capacity int, ttl time.Duration, opts ...Option) (*LFU[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfiguration, capacity)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidConfiguration, ttl)
	}

	options := newOptions(opts...)

	c := &LFU[K, V]{
		name:     options.Name,
		capacity: capacity,
		ttl:      ttl,
		log:      options.Logger.With(slog.String("cache", options.Name)),
		metrics:  options.Metrics,
		now:      options.Clock,
		entries:  make(map[K]*lfuEntry[K, V]),
		buckets:  make(map[int]*list.List),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	c.log.Debug("cache created",
		slog.Int("capacity", capacity),
		slog.Duration("ttl", ttl),
	)

	go c.reap(options.Context)

	return c, nil
}

// Put stores value under key. Overwriting a live key counts as a use and
// promotes its frequency; overwriting an expired key behaves like inserting
// a brand-new one. Put never fails: when the table is full a new key evicts
// the least frequently used entry first.
func (c *LFU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if ent, ok := c.entries[key]; ok {
		if !c.expired(ent, now) {
			ent.value = value
			c.promote(ent)
			ent.lastAccess = now
			return
		}
		// The stale entry no longer counts; drop it and insert fresh.
		c.remove(ent)
		c.metrics.Expired(c.name, 1)
	}

	// Evict until there is room. A single round suffices unless the
	// minimum bucket was transiently empty.
	for len(c.entries) >= c.capacity {
		if !c.evict() {
			break
		}
	}

	ent := &lfuEntry[K, V]{key: key, value: value, freq: 1, lastAccess: now}
	ent.elem = c.bucket(1).PushBack(ent)
	c.entries[key] = ent
	// A fresh insertion always defines the lowest frequency.
	c.minFreq = 1

	c.metrics.Entries(c.name, len(c.entries))
}

// Get returns the value stored under key. A hit counts as a use, promoting
// the entry's frequency and resetting its idle time. Absent and expired
// keys both report a miss; an expired entry is removed on observation.
func (c *LFU[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.metrics.Miss(c.name)
		return zero, false
	}

	now := c.now()
	if c.expired(ent, now) {
		c.remove(ent)
		c.metrics.Expired(c.name, 1)
		c.metrics.Miss(c.name)
		c.metrics.Entries(c.name, len(c.entries))
		c.log.Debug("entry expired on access", slog.Any("key", key))
		return zero, false
	}

	c.promote(ent)
	ent.lastAccess = now
	c.metrics.Hit(c.name)
	return ent.value, true
}

// Size returns the number of entries in the table. Entries past their TTL
// that no access or sweep has removed yet still count; Size never sweeps.
func (c *LFU[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the background reaper and waits for it to exit. It is
// idempotent. The cache stays usable afterwards; entries still expire on
// access, they are just no longer swept proactively.
func (c *LFU[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

// expired reports whether ent's idle time strictly exceeds the TTL. An
// entry idle for exactly the TTL is still live.
func (c *LFU[K, V]) expired(ent *lfuEntry[K, V], now time.Time) bool {
	return now.Sub(ent.lastAccess) > c.ttl
}

// bucket returns the frequency bucket for freq, creating it on demand.
func (c *LFU[K, V]) bucket(freq int) *list.List {
	b, ok := c.buckets[freq]
	if !ok {
		b = list.New()
		c.buckets[freq] = b
	}
	return b
}

// unlink takes ent out of its frequency bucket, dropping the bucket when it
// empties, and reports whether it was dropped. Unlinking an entry that is
// no longer in a bucket is a no-op.
func (c *LFU[K, V]) unlink(ent *lfuEntry[K, V]) bool {
	if ent.elem == nil {
		return false
	}
	b, ok := c.buckets[ent.freq]
	if !ok {
		ent.elem = nil
		return false
	}
	b.Remove(ent.elem)
	ent.elem = nil
	if b.Len() > 0 {
		return false
	}
	delete(c.buckets, ent.freq)
	return true
}

// promote moves ent one frequency bucket up, appending at the tail so that
// within a bucket the longest-resident entry stays at the front. When the
// vacated bucket was the minimum and emptied, the promoted entry itself
// defines the new minimum.
func (c *LFU[K, V]) promote(ent *lfuEntry[K, V]) {
	if c.unlink(ent) && c.minFreq == ent.freq {
		c.minFreq = ent.freq + 1
	}
	ent.freq++
	ent.elem = c.bucket(ent.freq).PushBack(ent)
}

// remove deletes ent from the entry table and the frequency index.
// Eviction, expiry on access and the reaper all funnel through here so the
// minimum-frequency bookkeeping cannot diverge. Removing an entry twice is
// harmless.
func (c *LFU[K, V]) remove(ent *lfuEntry[K, V]) {
	emptied := c.unlink(ent)
	delete(c.entries, ent.key)
	if emptied && c.minFreq == ent.freq {
		c.minFreq = c.scanMinFreq()
	}
}

// scanMinFreq finds the smallest occupied frequency. Bucket keys carry no
// order, so this walks them all; 0 means the cache is empty.
func (c *LFU[K, V]) scanMinFreq() int {
	min := 0
	for freq := range c.buckets {
		if min == 0 || freq < min {
			min = freq
		}
	}
	return min
}

// evict removes the oldest entry of the minimum-frequency bucket. It
// reports false when there is nothing left to evict.
func (c *LFU[K, V]) evict() bool {
	b, ok := c.buckets[c.minFreq]
	if !ok || b.Len() == 0 {
		// The tracker can transiently point at a vanished bucket.
		c.minFreq = c.scanMinFreq()
		if b, ok = c.buckets[c.minFreq]; !ok || b.Len() == 0 {
			return false
		}
	}

	ent := b.Front().Value.(*lfuEntry[K, V])
	c.remove(ent)
	c.metrics.Evicted(c.name)
	c.log.Debug("evicted entry",
		slog.Any("key", ent.key),
		slog.Int("freq", ent.freq),
	)
	return true
}

// reap runs the periodic expiration sweep. The first sweep fires one full
// TTL after construction and then once per TTL, bounding how long an idle
// entry can outlive its expiry.
func (c *LFU[K, V]) reap(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			c.log.Debug("reaper stopped")
			return
		case <-ctx.Done():
			c.log.Debug("reaper stopped", slog.Any("error", ctx.Err()))
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

// removeExpired sweeps the whole table under the cache lock, removing every
// entry whose idle time exceeds the TTL.
func (c *LFU[K, V]) removeExpired() {
	defer c.metrics.SweepDuration(c.name).ObserveDuration()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, ent := range c.entries {
		if c.expired(ent, now) {
			c.remove(ent)
			removed++
		}
	}

	if removed > 0 {
		c.metrics.Expired(c.name, removed)
		c.metrics.Entries(c.name, len(c.entries))
		c.log.Debug("sweep removed expired entries",
			slog.Int("removed", removed),
			slog.Int("remaining", len(c.entries)),
		)
	}
}

var _ Cache[string, any] = (*LFU[string, any])(nil)
