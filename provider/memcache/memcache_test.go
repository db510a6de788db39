package memcache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

func TestSecondsConversion(t *testing.T) {
	cases := []struct {
		ttl  time.Duration
		want int32
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{60 * time.Second, 60},
		{90 * 24 * time.Hour, maxRelativeExpiry},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, seconds(tc.ttl), "ttl=%s", tc.ttl)
	}
}

func TestNewRequiresServers(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestCancelledContextSkipsNetwork(t *testing.T) {
	p, err := New(Config{Servers: []string{"127.0.0.1:1"}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Set(ctx, "k", []byte("v"), nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, _, err = p.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

// Requires a running memcached, e.g. CACHEASIDE_TEST_MEMCACHE=localhost:11211
func TestLiveMemcache(t *testing.T) {
	addr := os.Getenv("CACHEASIDE_TEST_MEMCACHE")
	if addr == "" {
		t.Skip("CACHEASIDE_TEST_MEMCACHE not set")
	}
	ctx := context.Background()
	p, err := New(Config{Servers: strings.Split(addr, ",")})
	require.NoError(t, err)
	defer p.Close(ctx)

	key := "cacheaside-live-" + time.Now().Format("150405.000000")
	_, ok, err := p.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.Set(ctx, key, []byte("v"), &pr.Expiration{SlidingExpiration: time.Minute})
	require.NoError(t, err)
	b, ok, err := p.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(b))

	require.NoError(t, p.Del(ctx, key))
	require.NoError(t, p.Del(ctx, key))
}
