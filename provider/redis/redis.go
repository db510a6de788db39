package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis stores entries as plain Redis strings.
// Sliding windows are applied as a plain TTL on write (no refresh on read).
type Redis struct {
	rdb         goredis.UniversalClient
	defaultTTL  time.Duration
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	DefaultTTL  time.Duration // applied when Set gets a nil expiration; 0 = no expiry
	CloseClient bool          // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, defaultTTL: cfg.DefaultTTL, closeClient: cfg.CloseClient}, nil
}

// NewFromURL parses a redis:// URL, pings the server and returns a provider
// owning the client.
func NewFromURL(ctx context.Context, redisURL string, defaultTTL time.Duration) (*Redis, error) {
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := goredis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return New(Config{Client: rdb, DefaultTTL: defaultTTL, CloseClient: true})
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, exp *pr.Expiration) (bool, error) {
	ttl := p.defaultTTL
	if exp != nil {
		ttl = exp.TTL(time.Now())
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
