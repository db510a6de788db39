// Package rediscache is a two-tier provider: Redis behind an in-process
// TinyLFU cache for hot keys, both managed by go-redis/cache.
//
// go-redis/cache cannot store entries without expiry: a nil expiration uses
// Config.DefaultTTL, falling back to the library default of one hour.
// TTLs below one second are rounded up to one second.
package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

type Config struct {
	Client     redis.UniversalClient
	DefaultTTL time.Duration
	// LocalSize is the capacity of the in-process TinyLFU; 0 disables it.
	LocalSize int
	// LocalTTL bounds how long a hot key is served from process memory.
	LocalTTL     time.Duration
	StatsEnabled bool
	CloseClient  bool
}

type Provider struct {
	data        *cache.Cache
	rdb         redis.UniversalClient
	defaultTTL  time.Duration
	closeClient bool
}

var _ pr.Provider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	if cfg.Client == nil {
		return nil, errors.New("rediscache provider: nil client")
	}
	opts := &cache.Options{Redis: cfg.Client, StatsEnabled: cfg.StatsEnabled}
	if cfg.LocalSize > 0 {
		ttl := cfg.LocalTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		opts.LocalCache = cache.NewTinyLFU(cfg.LocalSize, ttl)
	}
	return &Provider{
		data:        cache.New(opts),
		rdb:         cfg.Client,
		defaultTTL:  cfg.DefaultTTL,
		closeClient: cfg.CloseClient,
	}, nil
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var b []byte
	err := p.data.Get(ctx, key, &b)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if b == nil {
		b = []byte{}
	}
	return b, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, exp *pr.Expiration) (bool, error) {
	ttl := p.defaultTTL
	if exp != nil {
		if t := exp.TTL(time.Now()); t > 0 {
			ttl = t
		}
	}
	if ttl > 0 && ttl < time.Second {
		ttl = time.Second
	}
	err := p.data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	err := p.data.Delete(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Stats reports hit/miss counters; nil unless Config.StatsEnabled.
func (p *Provider) Stats() *cache.Stats { return p.data.Stats() }

func (p *Provider) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			return err
		}
	}
	return nil
}
