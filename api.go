package cacheaside

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	c "github.com/unkn0wn-root/cacheaside/codec"
	pr "github.com/unkn0wn-root/cacheaside/provider"
)

// Loader computes the value for a key on a cache miss.
type Loader[V any] func(ctx context.Context) (V, error)

// LoaderFunc adapts a factory that does not take a context.
func LoaderFunc[V any](fn func() (V, error)) Loader[V] {
	return func(context.Context) (V, error) { return fn() }
}

// Result is delivered by the asynchronous forms. Hit reports whether Value
// came from the cache rather than the loader.
type Result[V any] struct {
	Value V
	Hit   bool
	Err   error
}

type Cache[V any] = Aside[V] // alias -> cacheaside.Cache[User] or cacheaside.Aside[User]

// Aside is the typed cache-aside API over a provider-agnostic byte store.
// V is the caller's value type. Serialization is handled by a pluggable Codec[V].
//
// Async forms run the same routine as their synchronous twin on a new
// goroutine and deliver exactly one value before closing the channel.
type Aside[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Store
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	GetAsync(ctx context.Context, key string) <-chan Result[V]
	Exists(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, value V, exp *Expiration) error
	SetAsync(ctx context.Context, key string, value V, exp *Expiration) <-chan error
	SetTTL(ctx context.Context, key string, value V, seconds int) error
	Remove(ctx context.Context, key string) error

	// Cache-aside
	GetOrPopulate(ctx context.Context, key string, load Loader[V], opts EntryOptions) (V, error)
	GetOrPopulateAsync(ctx context.Context, key string, load Loader[V], opts EntryOptions) <-chan Result[V]
	GetOrPopulateTTL(ctx context.Context, key string, seconds int, load Loader[V]) (V, error)
	GetOrSet(ctx context.Context, key string, value V, opts EntryOptions) (V, error)
}

// Options tune the behavior of the cache.
// Only Provider is required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Provider pr.Provider

	Codec     c.Codec[V]   // nil => codec.JSON[V]
	Namespace string       // optional storage key prefix "<ns>:"; "" => keys stored verbatim
	Logger    Logger       // nil => NopLogger
	Hooks     Hooks        // nil => NopHooks
	Tracer    trace.Tracer // nil => otel global tracer provider

	// DefaultExpiration applies to writes that carry no expiration.
	// nil => the provider's own default.
	DefaultExpiration *Expiration

	// SingleFlight coalesces concurrent misses on the same key into one loader call.
	// Default false: every missing caller runs its own loader.
	SingleFlight bool

	// CacheZero writes loader results equal to the zero value of V.
	// Default false: such results are returned but never stored, so the loader
	// runs again on the next call. Nil results are never stored.
	// With V = any only a nil interface is zero; 0, "" or {} held in it are stored.
	CacheZero bool

	Disabled bool // default false (enabled); disabled => every read misses, writes are dropped
}

func New[V any](opts Options[V]) (Aside[V], error) {
	return newCache[V](opts)
}
