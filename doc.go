// Package cacheaside implements a typed cache-aside operator over a
// provider-agnostic byte store. Given a key it returns the cached value, or
// runs a caller-supplied loader, writes the result back under the same key
// with an expiration policy and returns it.
//
// Components:
//   - Provider: byte store with optional expiration (Redis, Memcached,
//     Ristretto, BigCache, gcache, golang-lru, go-redis/cache).
//   - Codec[V]: (de)serializes V <-> []byte. JSON by default.
//   - Expiration: absolute, relative-to-write and sliding policies.
//     nil means "store default".
//
// Presence is explicit: reads return (value, ok, err), so a stored zero
// value is a hit. A loader result equal to the zero value of V is returned
// but not written unless Options.CacheZero is set; nil results are never
// written.
//
// Errors are never turned into misses. Invalid calls fail with
// ErrInvalidArgument before any I/O, codec failures match ErrSerialization
// and store failures are returned unchanged.
//
// Concurrent misses on one key each run their own loader unless
// Options.SingleFlight is set.
//
// Usage:
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	p, _ := redisprovider.New(redisprovider.Config{Client: rdb})
//
//	users, _ := cacheaside.New[User](cacheaside.Options[User]{
//	    Namespace: "app:user",
//	    Provider:  p,
//	    Codec:     codec.JSON[User]{},
//	})
//
//	u, err := users.GetOrPopulateTTL(ctx, "user:42", 60, func(ctx context.Context) (User, error) {
//	    return db.LoadUser(ctx, 42)
//	})
package cacheaside
