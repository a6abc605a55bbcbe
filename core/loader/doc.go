// Package loader implements the read-through pattern over a cache.
//
// A [Loader] pairs a cache with a [SourceFunc]. Get serves hits straight
// from the cache; on a miss it fetches from the source, stores the result
// and returns it. Concurrent misses for the same key are collapsed so the
// source sees one fetch, which shields it from stampedes when a hot entry
// expires or gets evicted.
//
//	c, err := cache.New[string, Profile](10_000, 5*time.Minute)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//
//	profiles := loader.New(c, func(ctx context.Context, key string) (Profile, error) {
//	    return fetchProfile(ctx, key)
//	})
//
//	p, err := profiles.Get(ctx, "user:123")
//
// Source errors are never cached: each failed key is retried on its next
// Get.
package loader
