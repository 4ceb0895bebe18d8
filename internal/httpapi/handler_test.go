package httpapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/memstore/cache"
	"github.com/IvanBrykalov/memstore/internal/httpapi"
	"github.com/IvanBrykalov/memstore/metrics/prom"
)

func newServer(t *testing.T) (*httptest.Server, *cache.Striped) {
	t.Helper()

	reg := prometheus.NewRegistry()
	c, err := cache.New(cache.Options{
		MemoryLimit:      64,
		Shards:           2,
		MinShardCapacity: 1,
		Metrics:          prom.New(reg, "memstore", "cache", nil),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(httpapi.New(c, reg, nil))
	t.Cleanup(srv.Close)
	return srv, c
}

func do(t *testing.T, method, url, body string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestHandler_CRUD(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t)
	kv := srv.URL + "/kv/"

	code, _ := do(t, http.MethodGet, kv+"a", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, http.MethodPut, kv+"a", "hello")
	assert.Equal(t, http.StatusNoContent, code)

	code, body := do(t, http.MethodGet, kv+"a", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "hello", body)

	code, _ = do(t, http.MethodPut, kv+"a?mode=add", "other")
	assert.Equal(t, http.StatusConflict, code)

	code, _ = do(t, http.MethodPut, kv+"b?mode=set", "x")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, http.MethodPut, kv+"a?mode=set", "bye")
	assert.Equal(t, http.StatusNoContent, code)
	_, body = do(t, http.MethodGet, kv+"a", "")
	assert.Equal(t, "bye", body)

	code, _ = do(t, http.MethodPut, kv+"a?mode=bogus", "x")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, http.MethodDelete, kv+"a", "")
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = do(t, http.MethodDelete, kv+"a", "")
	assert.Equal(t, http.StatusNotFound, code)
}

// Entries larger than a shard (32 bytes here) are refused before reaching the cache.
func TestHandler_Oversize(t *testing.T) {
	t.Parallel()

	srv, c := newServer(t)

	code, _ := do(t, http.MethodPut, srv.URL+"/kv/k", strings.Repeat("x", 31))
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = do(t, http.MethodPut, srv.URL+"/kv/k", strings.Repeat("x", 32))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)

	code, _ = do(t, http.MethodPut, srv.URL+"/kv/k", strings.Repeat("x", 4096))
	assert.Equal(t, http.StatusRequestEntityTooLarge, code)

	v, ok := c.Get([]byte("k"))
	require.True(t, ok)
	assert.Len(t, v, 31)
}

func TestHandler_EscapedKey(t *testing.T) {
	t.Parallel()

	srv, c := newServer(t)

	code, _ := do(t, http.MethodPut, srv.URL+"/kv/a%2Fb", "v")
	assert.Equal(t, http.StatusNoContent, code)
	_, ok := c.Get([]byte("a/b"))
	assert.True(t, ok)
}

func TestHandler_StatsAndMetrics(t *testing.T) {
	t.Parallel()

	srv, _ := newServer(t)
	do(t, http.MethodPut, srv.URL+"/kv/a", "1")
	do(t, http.MethodGet, srv.URL+"/kv/a", "")
	do(t, http.MethodGet, srv.URL+"/kv/missing", "")

	code, body := do(t, http.MethodGet, srv.URL+"/stats", "")
	require.Equal(t, http.StatusOK, code)

	var st httpapi.StatsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &st))
	assert.Equal(t, 1, st.Total.Entries)
	assert.Equal(t, int64(2), st.Total.Bytes)
	assert.Equal(t, uint64(1), st.Total.Hits)
	assert.Equal(t, uint64(1), st.Total.Misses)
	assert.Len(t, st.Shards, 2)

	code, body = do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "memstore_cache_hits_total 1")
	assert.Contains(t, body, "memstore_cache_size_bytes 2")
}
