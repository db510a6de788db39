package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

type Provider struct {
	c          *rc.Cache
	cost       func(key string, value []byte) int64
	defaultTTL time.Duration
	syncWrites bool
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost computes the admission cost of an entry. nil => len(value).
	Cost func(key string, value []byte) int64
	// DefaultTTL is used when Set gets a nil expiration; 0 = no expiry.
	DefaultTTL time.Duration
	// SyncWrites waits for ristretto's write buffers after every Set so a
	// following Get observes the write.
	SyncWrites bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	cost := cfg.Cost
	if cost == nil {
		cost = func(_ string, v []byte) int64 { return int64(len(v)) }
	}
	return &Provider{c: c, cost: cost, defaultTTL: cfg.DefaultTTL, syncWrites: cfg.SyncWrites}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set admits the entry through ristretto's policy; ok=false means it was dropped.
// Sliding windows are applied as a plain TTL.
func (p *Provider) Set(_ context.Context, key string, value []byte, exp *pr.Expiration) (bool, error) {
	ttl := p.defaultTTL
	if exp != nil {
		ttl = exp.TTL(time.Now())
	}
	ok := p.c.SetWithTTL(key, value, p.cost(key, value), ttl)
	if ok && p.syncWrites {
		p.c.Wait()
	}
	return ok, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes ristretto's counters (nil unless Config.Metrics).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
