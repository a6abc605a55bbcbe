package cache

// Cache is the contract callers program against. Implementations must be
// safe for concurrent use.
type Cache[K comparable, V any] interface {
	// Put stores value under key, replacing any previous value.
	Put(key K, value V)
	// Get returns the value stored under key. The second return is false
	// when the key is absent or its entry has expired.
	Get(key K) (V, bool)
	// Size returns the number of entries currently held.
	Size() int
}
