package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IvanBrykalov/memstore/internal/singleflight"
	"github.com/IvanBrykalov/memstore/internal/util"
)

// Striped partitions the key space across a fixed set of SafeLRU shards.
// Each operation locks exactly one shard, so keys on different shards never
// contend. All methods are safe for concurrent use.
type Striped struct {
	shards   []*SafeLRU
	hash     func([]byte) uint64
	shardCap int64

	loader func(ctx context.Context, key []byte) ([]byte, error)
	log    *slog.Logger

	// coalesces concurrent loads in GetOrLoad
	sf singleflight.Group[string, []byte]
}

// Build creates a Striped cache of shards shards sharing memoryLimit bytes,
// with default options otherwise.
func Build(memoryLimit int64, shards int) (*Striped, error) {
	if shards < 1 {
		return nil, fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidShardCount, shards)
	}
	return New(Options{MemoryLimit: memoryLimit, Shards: shards})
}

// New validates opt and constructs the cache. Every shard receives
// MemoryLimit/Shards bytes; if that is below the minimum shard capacity a
// configuration error is returned and no cache is created.
//
// With Shards == 0 the count starts at util.ReasonableShardCount() and is
// reduced until each shard meets the minimum.
func New(opt Options) (*Striped, error) {
	if opt.MemoryLimit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opt.MemoryLimit)
	}
	if opt.Shards < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShardCount, opt.Shards)
	}
	if opt.MinShardCapacity <= 0 {
		opt.MinShardCapacity = DefaultMinShardCapacity
	}
	if opt.Hash == nil {
		opt.Hash = util.Sum64
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}

	n := opt.Shards
	if n == 0 {
		n = util.ReasonableShardCount()
		if most := opt.MemoryLimit / opt.MinShardCapacity; int64(n) > most {
			n = int(max(most, 1))
		}
	}

	perShard := opt.MemoryLimit / int64(n)
	if perShard < opt.MinShardCapacity {
		return nil, fmt.Errorf("%w: %d bytes / %d shards = %d < %d",
			ErrShardTooSmall, opt.MemoryLimit, n, perShard, opt.MinShardCapacity)
	}

	shards := make([]*SafeLRU, n)
	for i := range shards {
		shards[i] = newSafeLRU(perShard, opt)
	}

	opt.Logger.Info("cache: striped lru ready",
		slog.Int("shards", n),
		slog.Int64("shard_capacity", perShard),
		slog.Int64("capacity", perShard*int64(n)))

	return &Striped{
		shards:   shards,
		hash:     opt.Hash,
		shardCap: perShard,
		loader:   opt.Loader,
		log:      opt.Logger,
	}, nil
}

// Put implements Storage.
func (c *Striped) Put(key, value []byte) bool { return c.shard(key).Put(key, value) }

// PutIfAbsent implements Storage.
func (c *Striped) PutIfAbsent(key, value []byte) bool { return c.shard(key).PutIfAbsent(key, value) }

// Set implements Storage.
func (c *Striped) Set(key, value []byte) bool { return c.shard(key).Set(key, value) }

// Delete implements Storage.
func (c *Striped) Delete(key []byte) bool { return c.shard(key).Delete(key) }

// Get implements Storage.
func (c *Striped) Get(key []byte) ([]byte, bool) { return c.shard(key).Get(key) }

// GetOrLoad returns the value for key, loading it via Options.Loader on a
// miss. Concurrent loads of the same key are coalesced. A loaded value too
// large for the shard is returned but not cached.
func (c *Striped) GetOrLoad(ctx context.Context, key []byte) ([]byte, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	if c.loader == nil {
		return nil, ErrNoLoader
	}

	v, err := c.sf.Do(ctx, string(key), func() ([]byte, error) {
		// double-check after flight join
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := c.loader(ctx, key)
		if err != nil {
			return nil, err
		}
		if !c.Put(key, v) {
			c.log.Debug("cache: loaded value not cached", slog.Int("value_len", len(v)))
		}
		return v, nil
	})
	return v, err
}

// ShardFor returns the index of the shard key routes to.
func (c *Striped) ShardFor(key []byte) int {
	return util.ShardIndex(c.hash(key), len(c.shards))
}

// Shards returns the shard count.
func (c *Striped) Shards() int { return len(c.shards) }

// ShardCapacity returns the per-shard byte budget.
func (c *Striped) ShardCapacity() int64 { return c.shardCap }

// Capacity returns the usable total budget (ShardCapacity × Shards).
func (c *Striped) Capacity() int64 { return c.shardCap * int64(len(c.shards)) }

// Len returns the number of resident entries across all shards.
func (c *Striped) Len() int { return c.Stats().Entries }

// Size returns the resident bytes across all shards.
func (c *Striped) Size() int64 { return c.Stats().Bytes }

// Stats aggregates shard snapshots. Shards are locked one at a time, so the
// total is not an atomic view of the whole cache.
func (c *Striped) Stats() Stats {
	var total Stats
	for _, s := range c.shards {
		total.add(s.Stats())
	}
	return total
}

// ShardStats returns one snapshot per shard, in shard order.
func (c *Striped) ShardStats() []Stats {
	out := make([]Stats, len(c.shards))
	for i, s := range c.shards {
		out[i] = s.Stats()
	}
	return out
}

func (c *Striped) shard(key []byte) *SafeLRU {
	return c.shards[c.ShardFor(key)]
}
