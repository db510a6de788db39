// Package lru is a bounded in-process provider on top of hashicorp/golang-lru.
// Expiry is checked lazily on read; sliding entries are refreshed on every hit.
package lru

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

type entry struct {
	b        []byte
	expires  time.Time // zero => no expiry
	deadline time.Time
	sliding  time.Duration
}

type Provider struct {
	c          *lru.Cache[string, entry]
	defaultTTL time.Duration
	now        func() time.Time
}

var _ pr.Provider = (*Provider)(nil)

// New returns a provider holding at most size entries.
// defaultTTL applies when Set gets a nil expiration (0 = no expiry).
func New(size int, defaultTTL time.Duration) (*Provider, error) {
	if size <= 0 {
		return nil, errors.New("lru: size must be positive")
	}
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, defaultTTL: defaultTTL, now: time.Now}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	now := p.now()
	if !e.expires.IsZero() && !now.Before(e.expires) {
		p.c.Remove(key)
		return nil, false, nil
	}
	if e.sliding > 0 {
		e.expires = now.Add(pr.SlideTTL(now, e.deadline, e.sliding))
		p.c.Add(key, e)
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
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	p.c.Add(key, e)
	return true, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Remove(key)
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Purge()
	return nil
}

// Len reports the number of entries, including expired ones not yet read.
func (p *Provider) Len() int { return p.c.Len() }
