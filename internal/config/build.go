package config

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/cacheaside"
	"github.com/unkn0wn-root/cacheaside/codec"
	pr "github.com/unkn0wn-root/cacheaside/provider"
	bcp "github.com/unkn0wn-root/cacheaside/provider/bigcache"
	gcp "github.com/unkn0wn-root/cacheaside/provider/gcache"
	lrup "github.com/unkn0wn-root/cacheaside/provider/lru"
	mcp "github.com/unkn0wn-root/cacheaside/provider/memcache"
	rdp "github.com/unkn0wn-root/cacheaside/provider/redis"
	rcp "github.com/unkn0wn-root/cacheaside/provider/rediscache"
	rsp "github.com/unkn0wn-root/cacheaside/provider/ristretto"
)

const (
	DriverRedis      = "redis"
	DriverRedisCache = "rediscache"
	DriverMemcache   = "memcache"
	DriverRistretto  = "ristretto"
	DriverBigCache   = "bigcache"
	DriverGCache     = "gcache"
	DriverLRU        = "lru"
)

// Provider builds the provider selected by cfg.Driver. The caller owns it.
func (cfg *Config) Provider(ctx context.Context) (pr.Provider, error) {
	switch cfg.Driver {
	case DriverRedis:
		return provide[*rdp.Redis](rdp.NewFromURL(ctx, cfg.Redis.URL, cfg.DefaultTTL))
	case DriverRedisCache:
		opt, err := goredis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		return provide[*rcp.Provider](rcp.New(rcp.Config{
			Client:      goredis.NewClient(opt),
			DefaultTTL:  cfg.DefaultTTL,
			LocalSize:   cfg.Redis.LocalSize,
			LocalTTL:    cfg.Redis.LocalTTL,
			CloseClient: true,
		}))
	case DriverMemcache:
		return provide[*mcp.Provider](mcp.New(mcp.Config{
			Servers:    cfg.Memcache.Servers,
			Timeout:    cfg.Memcache.Timeout,
			MaxIdle:    cfg.Memcache.MaxIdle,
			DefaultTTL: cfg.DefaultTTL,
		}))
	case DriverRistretto:
		return provide[*rsp.Provider](rsp.New(rsp.Config{
			NumCounters: cfg.Ristretto.NumCounters,
			MaxCost:     cfg.Ristretto.MaxCost,
			BufferItems: cfg.Ristretto.BufferItems,
			Metrics:     cfg.Ristretto.Metrics,
			DefaultTTL:  cfg.DefaultTTL,
		}))
	case DriverBigCache:
		return provide[*bcp.Provider](bcp.New(ctx, bcp.Config{
			LifeWindow:         cfg.BigCache.LifeWindow,
			HardMaxCacheSizeMB: cfg.BigCache.HardMaxCacheSizeMB,
		}))
	case DriverGCache:
		return provide[*gcp.Provider](gcp.New(gcp.Config{
			Size:       cfg.GCache.Size,
			Policy:     gcp.Policy(cfg.GCache.Policy),
			DefaultTTL: cfg.DefaultTTL,
		}))
	case DriverLRU:
		return provide[*lrup.Provider](lrup.New(cfg.LRU.Size, cfg.DefaultTTL))
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
}

// provide keeps a failed constructor from yielding a non-nil interface
// around a nil pointer.
func provide[P pr.Provider](p P, err error) (pr.Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Codec returns the configured codec for V.
func Codec[V any](cfg *Config) (codec.Codec[V], error) {
	switch cfg.Codec {
	case "", "json":
		return codec.JSON[V]{}, nil
	case "msgpack":
		return codec.Msgpack[V]{UseJSONTag: true}, nil
	case "cbor":
		return codec.NewCBOR[V](true)
	}
	return nil, fmt.Errorf("unknown codec %q", cfg.Codec)
}

// Options assembles cacheaside.Options for V on top of p. Logger, Hooks and
// Tracer are left for the caller.
func Options[V any](cfg *Config, p pr.Provider) (cacheaside.Options[V], error) {
	c, err := Codec[V](cfg)
	if err != nil {
		return cacheaside.Options[V]{}, err
	}
	opts := cacheaside.Options[V]{
		Provider:     p,
		Codec:        c,
		Namespace:    cfg.Namespace,
		SingleFlight: cfg.SingleFlight,
		CacheZero:    cfg.CacheZero,
		Disabled:     cfg.Disabled,
	}
	return opts, nil
}
