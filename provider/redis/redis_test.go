package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

func newTestProvider(t *testing.T, defaultTTL time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	p, err := New(Config{
		Client:      goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
		DefaultTTL:  defaultTTL,
		CloseClient: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p, mr
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t, 0)

	_, ok, err := p.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Set(ctx, "user:42", []byte(`{"id":42}`), &pr.Expiration{AbsoluteExpirationRelativeToNow: time.Minute})
	require.NoError(t, err)
	assert.True(t, ok)

	b, ok, err := p.Get(ctx, "user:42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":42}`, string(b))

	ttl := mr.TTL("user:42")
	assert.InDelta(t, time.Minute.Seconds(), ttl.Seconds(), 1)

	mr.FastForward(61 * time.Second)
	_, ok, err = p.Get(ctx, "user:42")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisDefaultTTL(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t, 5*time.Minute)

	_, err := p.Set(ctx, "k", []byte("v"), nil)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, mr.TTL("k"))

	require.NoError(t, p.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisServerError(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t, 0)
	mr.Close()

	_, _, err := p.Get(ctx, "k")
	assert.Error(t, err)
}
