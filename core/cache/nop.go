package cache

// Nop is a Cache that stores nothing: every Get misses and Size is always
// zero. It stands in where caching is disabled.
type Nop[K comparable, V any] struct{}

// NewNop returns a Nop cache.
func NewNop[K comparable, V any]() *Nop[K, V] {
	return &Nop[K, V]{}
}

func (n *Nop[K, V]) Put(key K, value V) {
}

func (n *Nop[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

func (n *Nop[K, V]) Size() int {
	return 0
}

var _ Cache[string, any] = (*Nop[string, any])(nil)
