// Package sf provides a generic single-flight mechanism for deduplicating
// concurrent function calls with the same key.
//
// Single-flight ensures that only one execution of a function is in-flight
// for a given key at a time. If multiple goroutines call [Singleflight.Do]
// with the same key concurrently, only the first call executes the function;
// subsequent callers block until the first call completes and then receive
// the same result.
//
// The loader package builds on this to shield a source of record from
// thundering herds on cache misses: when a hot entry expires or gets
// evicted, simultaneous readers trigger one fetch instead of one each.
//
// # Usage
//
//	flight := sf.New[User]()
//
//	// Concurrent calls with the same key execute the function once.
//	user, shared, err := flight.Do("user:123", func() (User, error) {
//	    return db.GetUser(ctx, "123")
//	})
//
// The generic type parameter T allows type-safe returns without casting;
// shared reports whether the result also served other callers.
package sf
