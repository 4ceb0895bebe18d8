// Package cache is the in-process storage engine of memstore: a byte-budgeted
// LRU shard composed into a striped, concurrently usable cache.
//
// Design
//
//   - Shard (LRU): entries live in an arena ([]node) addressed by integer
//     handles. The recency list runs from head (least recently used) to tail
//     (most recently used) through prev/next handles, and a map[string]handle
//     indexes it. Put, PutIfAbsent, Set, Delete and Get are O(1) plus O(1) per
//     evicted entry. An entry costs len(key)+len(value) bytes; the shard size
//     never exceeds its capacity.
//
//   - Locking (SafeLRU): one sync.Mutex per shard held for the whole
//     operation. Get takes it exclusively because a hit moves the entry to
//     the tail.
//
//   - Striping (Striped): the total budget is split evenly across N shards
//     and a key is routed to shard hash(key) mod N. N never changes, so the
//     route of a key is stable for the lifetime of the cache.
//
//   - Rejections are booleans, never errors. A false result means the store
//     was left unchanged. Only construction returns errors.
//
// Trade-off: there is no global LRU order. Each shard evicts its own least
// recently used entries, so a hot key in one shard does not protect cold keys
// in another, and a skewed key distribution leaves some shards full while
// others have room. This is the price of never taking more than one lock.
//
// Basic usage
//
//	c, err := cache.Build(64<<20, 16) // 64 MiB across 16 shards
//	if err != nil {
//	    return err // configuration error, e.g. cache.ErrShardTooSmall
//	}
//	c.Put([]byte("a"), []byte("1"))
//	if v, ok := c.Get([]byte("a")); ok {
//	    _ = v // read-only
//	}
//	c.Delete([]byte("a"))
//
// With metrics and a loader
//
//	c, err := cache.New(cache.Options{
//	    MemoryLimit: 64 << 20,
//	    Metrics:     prom.New(nil, "memstore", "cache", nil),
//	    Loader: func(ctx context.Context, k []byte) ([]byte, error) {
//	        return fetch(ctx, k)
//	    },
//	})
//	v, err := c.GetOrLoad(ctx, []byte("key"))
package cache
