package promhook

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/cacheaside"
	"github.com/unkn0wn-root/cacheaside/provider/lru"
)

func TestCountersFollowCacheTraffic(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	h := New(reg, "users")

	p, err := lru.New(64, 0)
	require.NoError(t, err)
	cc, err := cacheaside.New[string](cacheaside.Options[string]{Provider: p, Hooks: h})
	require.NoError(t, err)

	load := cacheaside.LoaderFunc(func() (string, error) { return "Ann", nil })
	for i := 0; i < 3; i++ {
		_, err := cc.GetOrPopulate(ctx, "user:42", load, cacheaside.EntryOptions{})
		require.NoError(t, err)
	}
	empty := cacheaside.LoaderFunc(func() (string, error) { return "", nil })
	_, err = cc.GetOrPopulate(ctx, "user:0", empty, cacheaside.EntryOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(h.hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.populated))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.skipped.WithLabelValues("zero_value")))

	expected := `
# HELP cacheaside_hits_total Number of reads that found an entry
# TYPE cacheaside_hits_total counter
cacheaside_hits_total{cache="users"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "cacheaside_hits_total"))
}

func TestStoreErrorsByOp(t *testing.T) {
	h := New(prometheus.NewRegistry(), "x")
	h.StoreError("get", "k", errors.New("down"))
	h.StoreError("get", "k", errors.New("down"))
	h.StoreError("set", "k", errors.New("down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(h.storeErrors.WithLabelValues("get")))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.storeErrors.WithLabelValues("set")))
}

func TestTwoCachesShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.NotPanics(t, func() {
		New(reg, "a")
		New(reg, "b")
	})
}
