package bigcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBigcacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	p, err := New(ctx, Config{LifeWindow: time.Minute})
	require.NoError(t, err)
	defer p.Close(ctx)

	_, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Set(ctx, "k", []byte("v"), nil)
	require.NoError(t, err)
	assert.True(t, ok)

	b, ok, err := p.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), b)

	require.NoError(t, p.Del(ctx, "k"))
	require.NoError(t, p.Del(ctx, "k"), "deleting a missing key is not an error")
}
