package cacheaside

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/cacheaside/codec"
	"github.com/unkn0wn-root/cacheaside/internal/util"
	pr "github.com/unkn0wn-root/cacheaside/provider"
)

const tracerName = "github.com/unkn0wn-root/cacheaside"

type cache[V any] struct {
	ns         string
	provider   pr.Provider
	codec      c.Codec[V]
	log        Logger
	hooks      Hooks
	tracer     trace.Tracer
	enabled    bool
	defaultExp *Expiration
	cacheZero  bool
	sf         *singleflight.Group // nil => no coalescing
	now        func() time.Time

	mu      sync.Mutex
	flights map[string]*flight // in-flight shared computations by storage key; guarded by mu
}

// flight is one shared computation. Its context is detached from the caller
// that started it and is cancelled once refs drops to zero.
type flight struct {
	ctx    context.Context
	cancel context.CancelFunc
	refs   int
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("cacheaside: provider is required")
	}
	if err := checkExpiration(opts.DefaultExpiration); err != nil {
		return nil, fmt.Errorf("cacheaside: default expiration: %w", err)
	}

	c := &cache[V]{
		ns:         opts.Namespace,
		provider:   opts.Provider,
		codec:      opts.Codec,
		enabled:    !opts.Disabled,
		defaultExp: opts.DefaultExpiration,
		cacheZero:  opts.CacheZero,
		now:        time.Now,
	}
	if c.codec == nil {
		c.codec = jsonCodec[V]()
	}

	// defaults
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.tracer = coalesce[trace.Tracer](opts.Tracer, otel.Tracer(tracerName))

	if opts.SingleFlight {
		c.sf = &singleflight.Group{}
		c.flights = make(map[string]*flight)
	}
	return c, nil
}

func jsonCodec[V any]() c.Codec[V] { return c.JSON[V]{} }

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Close(ctx context.Context) error {
	return c.provider.Close(ctx)
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if err := checkKey(key); err != nil {
		return zero, false, err
	}
	if !c.enabled {
		return zero, false, nil
	}
	k := c.storageKey(key)
	raw, ok, err := c.read(ctx, k)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		c.hooks.Miss(k)
		return zero, false, nil
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		c.hooks.DecodeError(k, err)
		return zero, false, &SerializationError{Key: key, Op: "decode", Err: err}
	}
	c.hooks.Hit(k)
	return v, true, nil
}

func (c *cache[V]) GetAsync(ctx context.Context, key string) <-chan Result[V] {
	out := make(chan Result[V], 1)
	go func() {
		defer close(out)
		v, ok, err := c.Get(ctx, key)
		out <- Result[V]{Value: v, Hit: ok, Err: err}
	}()
	return out
}

// Exists checks the raw entry only; it does not decode it.
func (c *cache[V]) Exists(ctx context.Context, key string) (bool, error) {
	if err := checkKey(key); err != nil {
		return false, err
	}
	if !c.enabled {
		return false, nil
	}
	_, ok, err := c.read(ctx, c.storageKey(key))
	return ok, err
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, exp *Expiration) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if isNil(value) {
		return &ArgumentError{Arg: "value", Reason: "must not be nil"}
	}
	if err := checkExpiration(exp); err != nil {
		return err
	}
	if !c.enabled {
		return nil
	}
	return c.write(ctx, key, value, exp)
}

func (c *cache[V]) SetAsync(ctx context.Context, key string, value V, exp *Expiration) <-chan error {
	out := make(chan error, 1)
	go func() {
		defer close(out)
		out <- c.Set(ctx, key, value, exp)
	}()
	return out
}

func (c *cache[V]) SetTTL(ctx context.Context, key string, value V, seconds int) error {
	exp, err := AbsoluteAfter(seconds)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, value, exp)
}

func (c *cache[V]) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if !c.enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	k := c.storageKey(key)
	if err := c.provider.Del(ctx, k); err != nil {
		c.hooks.StoreError("del", k, err)
		return err
	}
	return nil
}

// GetOrPopulate returns the cached value for key, or runs load, writes its
// result under key and returns it. Loader errors are returned without a write.
// If the write fails, the computed value is returned together with the error.
func (c *cache[V]) GetOrPopulate(ctx context.Context, key string, load Loader[V], opts EntryOptions) (V, error) {
	r := c.populate(ctx, key, load, opts)
	return r.Value, r.Err
}

func (c *cache[V]) GetOrPopulateAsync(ctx context.Context, key string, load Loader[V], opts EntryOptions) <-chan Result[V] {
	out := make(chan Result[V], 1)
	go func() {
		defer close(out)
		out <- c.populate(ctx, key, load, opts)
	}()
	return out
}

func (c *cache[V]) GetOrPopulateTTL(ctx context.Context, key string, seconds int, load Loader[V]) (V, error) {
	if seconds <= 0 {
		var zero V
		return zero, &ArgumentError{Arg: "seconds", Reason: "must be positive"}
	}
	return c.GetOrPopulate(ctx, key, load, EntryOptions{AbsoluteExpirationSeconds: seconds})
}

// GetOrSet is GetOrPopulate with an already computed value.
func (c *cache[V]) GetOrSet(ctx context.Context, key string, value V, opts EntryOptions) (V, error) {
	return c.GetOrPopulate(ctx, key, func(context.Context) (V, error) { return value, nil }, opts)
}

func (c *cache[V]) populate(ctx context.Context, key string, load Loader[V], opts EntryOptions) Result[V] {
	if err := checkKey(key); err != nil {
		return Result[V]{Err: err}
	}
	if load == nil {
		return Result[V]{Err: &ArgumentError{Arg: "load", Reason: "must not be nil"}}
	}
	exp, err := opts.expiration()
	if err != nil {
		return Result[V]{Err: err}
	}

	ctx, span := c.tracer.Start(ctx, "cacheaside.GetOrPopulate",
		trace.WithAttributes(attribute.String("cache.namespace", c.ns)))
	defer span.End()

	v, ok, err := c.Get(ctx, key)
	if err != nil {
		recordError(span, err)
		return Result[V]{Err: err}
	}
	span.SetAttributes(attribute.Bool("cache.hit", ok))
	if ok {
		return Result[V]{Value: v, Hit: true}
	}

	if c.sf == nil {
		v, err = c.compute(ctx, key, load, exp)
	} else {
		v, err = c.computeShared(ctx, key, load, exp)
	}
	if err != nil {
		recordError(span, err)
	}
	return Result[V]{Value: v, Err: err}
}

// computeShared runs compute once per storage key across concurrent callers.
// The shared load does not belong to any single caller: it keeps running while
// at least one caller waits on it and is cancelled when all of them are gone.
// Each caller returns on its own context.
func (c *cache[V]) computeShared(ctx context.Context, key string, load Loader[V], exp *Expiration) (V, error) {
	k := c.storageKey(key)
	f, joined, ch := c.join(ctx, k, func(fctx context.Context) (any, error) {
		return c.compute(fctx, key, load, exp)
	})
	defer c.leave(f)

	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case r := <-ch:
		if joined {
			c.hooks.Coalesced(k)
		}
		v, _ := r.Val.(V)
		return v, r.Err
	}
}

// join attaches the caller to the flight for k, starting a new one when none
// is running or the running one was abandoned by every caller.
// joined is false for the caller that started the flight.
func (c *cache[V]) join(ctx context.Context, k string, fn func(context.Context) (any, error)) (f *flight, joined bool, ch <-chan singleflight.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, joined = c.flights[k]
	if joined && f.ctx.Err() != nil {
		// abandoned; it unwinds on its own and must not be shared
		c.sf.Forget(k)
		joined = false
	}
	if !joined {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[k] = f
	}
	f.refs++

	// DoChan under mu: a flight in c.flights is always the call singleflight
	// holds for k, so the closure below only runs for a fresh flight.
	ch = c.sf.DoChan(k, func() (any, error) {
		defer c.land(k, f)
		return fn(f.ctx)
	})
	return f, joined, ch
}

// land retires f once its computation returned.
func (c *cache[V]) land(k string, f *flight) {
	c.mu.Lock()
	if c.flights[k] == f {
		c.sf.Forget(k)
		delete(c.flights, k)
	}
	c.mu.Unlock()
	f.cancel()
}

func (c *cache[V]) leave(f *flight) {
	c.mu.Lock()
	f.refs--
	last := f.refs == 0
	c.mu.Unlock()
	if last {
		f.cancel()
	}
}

func (c *cache[V]) compute(ctx context.Context, key string, load Loader[V], exp *Expiration) (V, error) {
	k := c.storageKey(key)
	v, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if isNil(v) || (!c.cacheZero && isZero(v)) {
		c.hooks.PopulateSkipped(k, "zero_value")
		return v, nil
	}
	if !c.enabled {
		c.hooks.PopulateSkipped(k, "disabled")
		return v, nil
	}
	if err := c.write(ctx, key, v, exp); err != nil {
		return v, err
	}
	c.hooks.Populated(k)
	return v, nil
}

func (c *cache[V]) read(ctx context.Context, storageKey string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	raw, ok, err := c.provider.Get(ctx, storageKey)
	if err != nil {
		c.hooks.StoreError("get", storageKey, err)
		c.log.Warn("provider get failed", Fields{"key": storageKey, "err": err})
		return nil, false, err
	}
	return raw, ok, nil
}

func (c *cache[V]) write(ctx context.Context, key string, value V, exp *Expiration) error {
	if exp == nil {
		exp = c.defaultExp
	}
	k := c.storageKey(key)
	if exp.Expired(c.now()) {
		c.log.Debug("write skipped (deadline passed)", Fields{"key": k})
		return nil
	}
	payload, err := c.codec.Encode(value)
	if err != nil {
		return &SerializationError{Key: key, Op: "encode", Err: err}
	}
	// nothing is sent once the caller gave up
	if err := ctx.Err(); err != nil {
		return err
	}
	ok, err := c.provider.Set(ctx, k, payload, exp)
	if err != nil {
		c.hooks.StoreError("set", k, err)
		c.log.Warn("provider set failed", Fields{"key": k, "err": err})
		return err
	}
	if !ok {
		c.hooks.ProviderSetRejected(k)
		c.log.Debug("set rejected by provider (pressure)", Fields{"key": k})
	}
	return nil
}

func (c *cache[V]) storageKey(key string) string {
	return util.StorageKey(c.ns, key)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
