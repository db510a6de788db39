// Package memcache adapts bradfitz/gomemcache.
//
// Memcached expirations are whole seconds and capped at 30 days (larger
// values would be read as a unix timestamp). Sliding-only entries record
// their window in the item flags and are touched on every hit.
package memcache

import (
	"context"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

const maxRelativeExpiry = 30*24*60*60 - 60 // 30 days minus a minute

type Provider struct {
	mc         *memcache.Client
	defaultTTL time.Duration
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	Servers    []string
	Timeout    time.Duration // 0 => client default
	MaxIdle    int           // 0 => client default
	DefaultTTL time.Duration // used when Set gets a nil expiration; 0 = no expiry
}

func New(cfg Config) (*Provider, error) {
	if len(cfg.Servers) == 0 {
		return nil, errors.New("memcache: at least one server is required")
	}
	mc := memcache.New(cfg.Servers...)
	if cfg.Timeout > 0 {
		mc.Timeout = cfg.Timeout
	}
	if cfg.MaxIdle > 0 {
		mc.MaxIdleConns = cfg.MaxIdle
	}
	return &Provider{mc: mc, defaultTTL: cfg.DefaultTTL}, nil
}

// seconds converts a TTL to memcached's relative expiry.
func seconds(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	s := int64((ttl + time.Second - 1) / time.Second) // round up; sub-second stays alive 1s
	if s > maxRelativeExpiry {
		s = maxRelativeExpiry
	}
	return int32(s)
}

func (p *Provider) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	it, err := p.mc.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if it.Flags > 0 {
		// best-effort refresh of a sliding entry
		_ = p.mc.Touch(key, int32(it.Flags))
	}
	return it.Value, true, nil
}

func (p *Provider) Set(ctx context.Context, key string, value []byte, exp *pr.Expiration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	it := &memcache.Item{Key: key, Value: value, Expiration: seconds(p.defaultTTL)}
	if exp != nil {
		now := time.Now()
		it.Expiration = seconds(exp.TTL(now))
		if exp.Deadline(now).IsZero() && exp.Sliding() > 0 {
			it.Flags = uint32(seconds(exp.Sliding()))
		}
	}
	if err := p.mc.Set(it); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Provider) Del(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.mc.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

func (p *Provider) Close(context.Context) error {
	return p.mc.Close()
}
