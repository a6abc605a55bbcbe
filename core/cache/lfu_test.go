package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/101x4/LFUCache/core/metrics"
)

// fakeClock is a manually advanced time source. The reaper goroutine may
// read it concurrently, so access is locked.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestLFU_Basic(t *testing.T) {
	c, err := New[string, int](2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)

	val, ok := c.Get("a")
	if !ok || val != 1 {
		t.Errorf("expected a=1, got %v, %v", val, ok)
	}

	_, ok = c.Get("missing")
	if ok {
		t.Errorf("expected miss for absent key")
	}
}

func TestLFU_EvictsLowestFrequency(t *testing.T) {
	c, err := New[string, string](3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("key1", "value1")
	c.Put("key2", "value2")
	c.Put("key3", "value3")

	// Raise key1 to frequency 2; key2 and key3 stay at 1.
	c.Get("key1")

	c.Put("key4", "value4") // should evict "key2", the oldest at frequency 1

	if _, ok := c.Get("key2"); ok {
		t.Errorf("expected key2 to be evicted")
	}
	for _, key := range []string{"key1", "key3", "key4"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("expected %s to be present", key)
		}
	}
}

func TestLFU_TieBreakOldestFirst(t *testing.T) {
	c, err := New[string, int](2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	c.Put("b", 2)

	c.Put("c", 3) // both at frequency 1, "a" is older

	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Errorf("expected b to be present")
	}
	if _, ok := c.Get("c"); !ok {
		t.Errorf("expected c to be present")
	}
}

func TestLFU_Promotion(t *testing.T) {
	c, err := New[string, int](2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	c.Put("b", 2)

	// Promote "a"
	c.Get("a")

	c.Put("c", 3) // should evict "b" because "a" was promoted

	if _, ok := c.Get("b"); ok {
		t.Errorf("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Errorf("expected a to be present")
	}
}

func TestLFU_FrequentKeySurvivesEvictionRounds(t *testing.T) {
	c, err := New[string, int](3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("hot", 1)
	for i := 0; i < 5; i++ {
		c.Get("hot")
	}

	// Churn through low-frequency keys; each insert evicts one of them,
	// never the frequent one.
	c.Put("cold-1", 1)
	c.Put("cold-2", 2)
	for i := 3; i <= 6; i++ {
		c.Put(fmt.Sprintf("cold-%d", i), i)
	}

	if _, ok := c.Get("hot"); !ok {
		t.Errorf("expected hot to survive eviction rounds")
	}
	if size := c.Size(); size != 3 {
		t.Errorf("expected size 3, got %d", size)
	}
}

func TestLFU_Overwrite(t *testing.T) {
	c, err := New[string, int](2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	c.Put("a", 2)

	val, ok := c.Get("a")
	if !ok || val != 2 {
		t.Errorf("expected a=2, got %v, %v", val, ok)
	}
}

func TestLFU_OverwriteCountsAsUse(t *testing.T) {
	c, err := New[string, int](2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 3) // promotes "a" to frequency 2

	c.Put("c", 4) // should evict "b"

	if _, ok := c.Get("b"); ok {
		t.Errorf("expected b to be evicted")
	}
	if val, ok := c.Get("a"); !ok || val != 3 {
		t.Errorf("expected a=3, got %v, %v", val, ok)
	}
}

func TestLFU_TTLExpiry(t *testing.T) {
	c, err := New[string, int](2, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)

	val, ok := c.Get("a")
	if !ok || val != 1 {
		t.Errorf("expected a=1 before expiry, got %v, %v", val, ok)
	}

	time.Sleep(70 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to be expired")
	}
}

func TestLFU_TTLBoundary(t *testing.T) {
	clock := newFakeClock()
	c, err := New[string, int](2, time.Minute, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)

	// Idle for exactly the TTL is still live.
	clock.Advance(time.Minute)
	if _, ok := c.Get("a"); !ok {
		t.Errorf("expected a to be live at exactly the TTL")
	}

	// The hit above reset the idle time; one more TTL plus a nanosecond
	// crosses the boundary.
	clock.Advance(time.Minute + time.Nanosecond)
	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to be expired past the TTL")
	}
}

func TestLFU_PutRefreshesIdleTime(t *testing.T) {
	clock := newFakeClock()
	c, err := New[string, int](2, 50*time.Millisecond, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	clock.Advance(30 * time.Millisecond)
	c.Put("a", 2) // refresh

	clock.Advance(30 * time.Millisecond)

	// 60ms since the first put but only 30ms since the refresh.
	val, ok := c.Get("a")
	if !ok || val != 2 {
		t.Errorf("expected a=2 after refresh, got %v, %v", val, ok)
	}
}

func TestLFU_ExpiredOverwriteResetsFrequency(t *testing.T) {
	clock := newFakeClock()
	c, err := New[string, int](2, 50*time.Millisecond, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	c.Get("a")
	c.Get("a") // "a" now at frequency 3

	clock.Advance(60 * time.Millisecond)

	c.Put("a", 2) // expired, so this starts over at frequency 1
	c.Put("b", 3)
	c.Put("c", 4) // should evict "a": same frequency as "b" but older

	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to be evicted after frequency reset")
	}
	if _, ok := c.Get("b"); !ok {
		t.Errorf("expected b to be present")
	}
}

func TestLFU_SizeNeverExceedsCapacity(t *testing.T) {
	c, err := New[string, int](3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	for i := 0; i < 10; i++ {
		c.Put(fmt.Sprintf("key-%d", i), i)
		if size := c.Size(); size > 3 {
			t.Fatalf("size %d exceeds capacity after put %d", size, i)
		}
	}

	if size := c.Size(); size != 3 {
		t.Errorf("expected size 3, got %d", size)
	}
}

func TestLFU_SizeCountsUnsweptEntries(t *testing.T) {
	clock := newFakeClock()
	// TTL of an hour keeps the real-time reaper out of the test.
	c, err := New[string, int](4, time.Hour, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	c.Put("b", 2)

	clock.Advance(2 * time.Hour)

	// Both entries are past their TTL but nothing observed them yet.
	if size := c.Size(); size != 2 {
		t.Errorf("expected size 2 before any access, got %d", size)
	}

	// Observing one removes just that one.
	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to be expired")
	}
	if size := c.Size(); size != 1 {
		t.Errorf("expected size 1 after observing a, got %d", size)
	}
}

func TestLFU_ReaperSweepsIdleEntries(t *testing.T) {
	c, err := New[string, int](4, 40*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	// Two reaper intervals pass with no access at all.
	time.Sleep(120 * time.Millisecond)

	if size := c.Size(); size != 0 {
		t.Errorf("expected reaper to sweep all entries, size is %d", size)
	}
}

func TestLFU_ExpiredKeyStaysGone(t *testing.T) {
	clock := newFakeClock()
	c, err := New[string, int](2, time.Minute, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	clock.Advance(2 * time.Minute)

	// First miss removes the stale entry, the second finds nothing.
	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to be expired")
	}
	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to stay gone")
	}

	// The key is insertable again as a fresh entry.
	c.Put("a", 2)
	if val, ok := c.Get("a"); !ok || val != 2 {
		t.Errorf("expected a=2 after re-insert, got %v, %v", val, ok)
	}
}

func TestLFU_ConstructionValidation(t *testing.T) {
	cases := []struct {
		name     string
		capacity int
		ttl      time.Duration
	}{
		{"zero capacity", 0, time.Second},
		{"negative capacity", -2, 200 * time.Millisecond},
		{"zero ttl", 2, 0},
		{"negative ttl", 2, -200 * time.Millisecond},
		{"both zero", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New[string, int](tc.capacity, tc.ttl)
			if err == nil {
				t.Fatalf("expected error for capacity=%d ttl=%s", tc.capacity, tc.ttl)
			}
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}

	c, err := New[string, int](2, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("expected valid configuration to succeed, got %v", err)
	}
	c.Close()
}

func TestLFU_CloseIdempotent(t *testing.T) {
	clock := newFakeClock()
	c, err := New[string, int](2, time.Minute, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.Put("a", 1)

	c.Close()
	c.Close() // second close must not panic or block

	// The cache keeps working after Close, including lazy expiry.
	if val, ok := c.Get("a"); !ok || val != 1 {
		t.Errorf("expected a=1 after close, got %v, %v", val, ok)
	}
	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Errorf("expected a to expire on access after close")
	}
}

func TestLFU_ContextStopsReaper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c, err := New[string, int](2, time.Minute, WithContext(ctx))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cancel()

	// Close must return promptly even though the reaper already exited.
	done := make(chan struct{})
	go func() {
		c.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after context cancellation")
	}
}

func TestLFU_Concurrent(t *testing.T) {
	c, err := New[string, int](100, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	const workers = 10
	const ops = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				key := fmt.Sprintf("key-%d", j%150)
				c.Put(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if size := c.Size(); size > 100 {
		t.Errorf("size %d exceeds capacity under concurrency", size)
	}
}

// recordingMetrics counts callbacks for assertions.
type recordingMetrics struct {
	mu      sync.Mutex
	hits    int
	misses  int
	evicted int
	expired int
	entries int
}

func (m *recordingMetrics) Hit(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *recordingMetrics) Miss(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func (m *recordingMetrics) Evicted(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evicted++
}

func (m *recordingMetrics) Expired(_ string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired += count
}

func (m *recordingMetrics) Entries(_ string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = count
}

func (m *recordingMetrics) SweepDuration(string) metrics.Timer { return metrics.NopTimer() }

func (m *recordingMetrics) snapshot() (hits, misses, evicted, expired, entries int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses, m.evicted, m.expired, m.entries
}

func TestLFU_MetricsCallbacks(t *testing.T) {
	clock := newFakeClock()
	rec := &recordingMetrics{}
	c, err := New[string, int](2, time.Minute, WithClock(clock.Now), WithMetrics(rec))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")       // hit
	c.Get("missing") // miss
	c.Put("c", 3)    // evicts "b"

	clock.Advance(2 * time.Minute)
	c.Get("a") // expired, counts as miss too

	hits, misses, evicted, expired, entries := rec.snapshot()
	if hits != 1 {
		t.Errorf("expected 1 hit, got %d", hits)
	}
	if misses != 2 {
		t.Errorf("expected 2 misses, got %d", misses)
	}
	if evicted != 1 {
		t.Errorf("expected 1 eviction, got %d", evicted)
	}
	if expired != 1 {
		t.Errorf("expected 1 expiration, got %d", expired)
	}
	if entries != 1 {
		t.Errorf("expected entries gauge 1, got %d", entries)
	}
}
