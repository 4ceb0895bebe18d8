package prom

import (
	"testing"

	"github.com/IvanBrykalov/memstore/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_WiredIntoCache(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "memstore", "cache", prometheus.Labels{"app": "test"})

	c, err := cache.New(cache.Options{MemoryLimit: 40, Shards: 4, MinShardCapacity: 1, Metrics: m})
	require.NoError(t, err)

	k := func(s string) []byte { return []byte(s) }
	require.True(t, c.Put(k("a"), k("12345")))
	require.True(t, c.Put(k("b"), k("1")))
	_, ok := c.Get(k("a"))
	assert.True(t, ok)
	_, ok = c.Get(k("zzz"))
	assert.False(t, ok)
	assert.False(t, c.Put(k("big"), make([]byte, 10)))
	assert.False(t, c.Set(k("nope"), k("1")))
	assert.True(t, c.Delete(k("b")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejects.WithLabelValues("oversize")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejects.WithLabelValues("missing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sizeEnt))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.sizeBytes))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestAdapter_EvictionsCounted(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "", "", nil)
	c, err := cache.New(cache.Options{MemoryLimit: 6, Shards: 1, MinShardCapacity: 1, Metrics: m})
	require.NoError(t, err)

	for _, key := range []string{"a", "b", "c", "d"} {
		require.True(t, c.Put([]byte(key), []byte("xx")))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.evicts))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sizeEnt))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.sizeBytes))
}
