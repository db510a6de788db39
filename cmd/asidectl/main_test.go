package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	t.Setenv("CACHEASIDE_DRIVER", "redis")
	t.Setenv("CACHEASIDE_REDIS_URL", "redis://"+mr.Addr())
	t.Setenv("CACHEASIDE_NAMESPACE", "cli")
	t.Setenv("CACHEASIDE_LOG_LEVEL", "error")
	return mr
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"asidectl"}, args...), &out)
	return out.String(), err
}

func TestSetGetExistsDel(t *testing.T) {
	mr := setupRedis(t)

	_, err := runCmd(t, "set", "--ttl", "60", "user:42", `{"id":42,"name":"Ann"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"id":42,"name":"Ann"}`, mustGet(t, mr, "cli:user:42"))
	assert.Equal(t, 60*time.Second, mr.TTL("cli:user:42"))

	out, err := runCmd(t, "get", "user:42")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42,"name":"Ann"}`, out)

	out, err = runCmd(t, "exists", "user:42")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = runCmd(t, "del", "user:42")
	require.NoError(t, err)
	out, err = runCmd(t, "exists", "user:42")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	_, err = runCmd(t, "get", "user:42")
	assert.Error(t, err)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

func TestFetchPopulatesOnce(t *testing.T) {
	mr := setupRedis(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `{"id":7,"name":"Bo"}`)
	}))
	defer srv.Close()

	for i := 0; i < 3; i++ {
		out, err := runCmd(t, "fetch", "--ttl", "30", "user:7", srv.URL)
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":7,"name":"Bo"}`, out)
	}
	assert.Equal(t, int32(1), hits.Load())
	assert.True(t, mr.Exists("cli:user:7"))
}

func TestFetchOriginErrorWritesNothing(t *testing.T) {
	mr := setupRedis(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := runCmd(t, "fetch", "user:9", srv.URL)
	assert.Error(t, err)
	assert.False(t, mr.Exists("cli:user:9"))
}

func TestArgumentErrors(t *testing.T) {
	setupRedis(t)

	_, err := runCmd(t, "get")
	assert.Error(t, err)
	_, err = runCmd(t, "set", "k", "not json")
	assert.Error(t, err)
	_, err = runCmd(t, "set", "--ttl", "-1", "k", "1")
	assert.Error(t, err)
}
