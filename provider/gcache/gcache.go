// Package gcache adapts bluele/gcache as an in-process provider with
// per-entry expiration and sliding windows refreshed on read.
package gcache

import (
	"context"
	"errors"
	"time"

	"github.com/bluele/gcache"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

type Policy string

const (
	LRU    Policy = "lru"
	LFU    Policy = "lfu"
	ARC    Policy = "arc"
	Simple Policy = "simple"
)

type Config struct {
	Size       int           // max entries; must be > 0
	Policy     Policy        // "" => LRU
	DefaultTTL time.Duration // used when Set gets a nil expiration; 0 = no expiry
}

type entry struct {
	b        []byte
	deadline time.Time
	sliding  time.Duration
}

type Provider struct {
	gc         gcache.Cache
	defaultTTL time.Duration
	now        func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

func New(cfg Config) (*Provider, error) {
	if cfg.Size <= 0 {
		return nil, errors.New("gcache: size must be positive")
	}
	b := gcache.New(cfg.Size)
	switch cfg.Policy {
	case "", LRU:
		b = b.LRU()
	case LFU:
		b = b.LFU()
	case ARC:
		b = b.ARC()
	case Simple:
		b = b.Simple()
	default:
		return nil, errors.New("gcache: unknown policy " + string(cfg.Policy))
	}
	return &Provider{gc: b.Build(), defaultTTL: cfg.DefaultTTL, now: time.Now}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := p.gc.Get(key)
	if errors.Is(err, gcache.KeyNotFoundError) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	e, ok := v.(entry)
	if !ok {
		p.gc.Remove(key)
		return nil, false, nil
	}
	if e.sliding > 0 {
		// push the idle timer forward, never past the absolute deadline
		if err := p.gc.SetWithExpire(key, e, pr.SlideTTL(p.now(), e.deadline, e.sliding)); err != nil {
			return nil, false, err
		}
	}
	return e.b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, exp *pr.Expiration) (bool, error) {
	now := p.now()
	e := entry{b: value}
	ttl := p.defaultTTL
	if exp != nil {
		e.deadline = exp.Deadline(now)
		e.sliding = exp.Sliding()
		ttl = exp.TTL(now)
	}
	var err error
	if ttl > 0 {
		err = p.gc.SetWithExpire(key, e, ttl)
	} else {
		err = p.gc.Set(key, e)
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.gc.Remove(key)
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.gc.Purge()
	return nil
}
