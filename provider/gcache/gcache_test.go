package gcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pr "github.com/unkn0wn-root/cacheaside/provider"
)

func TestGcacheRejectsBadConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	_, err = New(Config{Size: 10, Policy: "mru"})
	assert.Error(t, err)
}

func TestGcacheRoundTripAllPolicies(t *testing.T) {
	ctx := context.Background()
	for _, pol := range []Policy{"", LRU, LFU, ARC, Simple} {
		p, err := New(Config{Size: 16, Policy: pol})
		require.NoError(t, err)

		_, ok, err := p.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = p.Set(ctx, "k", []byte("v"), nil)
		require.NoError(t, err)
		b, ok, err := p.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok, "policy %q", pol)
		assert.Equal(t, "v", string(b))

		require.NoError(t, p.Del(ctx, "k"))
		_, ok, _ = p.Get(ctx, "k")
		assert.False(t, ok)
		require.NoError(t, p.Close(ctx))
	}
}

func TestGcacheAbsoluteExpiry(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{Size: 4})
	require.NoError(t, err)

	_, err = p.Set(ctx, "k", []byte("v"), &pr.Expiration{AbsoluteExpirationRelativeToNow: 50 * time.Millisecond})
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	_, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGcacheSlidingRefreshOnRead(t *testing.T) {
	ctx := context.Background()
	p, err := New(Config{Size: 4})
	require.NoError(t, err)

	_, err = p.Set(ctx, "k", []byte("v"), &pr.Expiration{SlidingExpiration: 150 * time.Millisecond})
	require.NoError(t, err)

	// keep touching it past the initial window
	for i := 0; i < 4; i++ {
		time.Sleep(60 * time.Millisecond)
		_, ok, err := p.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok, "read %d should keep the entry alive", i)
	}

	time.Sleep(250 * time.Millisecond)
	_, ok, _ := p.Get(ctx, "k")
	assert.False(t, ok)
}
