package cache

import (
	"context"
	"log/slog"
)

// DefaultMinShardCapacity is the smallest per-shard byte budget New accepts
// unless Options.MinShardCapacity overrides it.
const DefaultMinShardCapacity int64 = 1 << 20

// RejectReason explains why a write (or Delete) returned false.
type RejectReason int

const (
	// RejectOversize — len(key)+len(value) exceeds the shard capacity.
	RejectOversize RejectReason = iota
	// RejectExists — PutIfAbsent on a key that is already present.
	RejectExists
	// RejectMissing — Set or Delete on a key that is not present.
	RejectMissing
)

func (r RejectReason) String() string {
	switch r {
	case RejectOversize:
		return "oversize"
	case RejectExists:
		return "exists"
	case RejectMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// Options configures a Striped cache. Zero values are safe; defaults are
// applied in New():
//   - Shards == 0           => auto (ReasonableShardCount, reduced until the floor holds)
//   - MinShardCapacity <= 0 => DefaultMinShardCapacity
//   - nil Hash              => xxHash64
//   - nil Metrics           => NoopMetrics
//   - nil Logger            => discard
type Options struct {
	// MemoryLimit is the total byte budget, split evenly (floor) across shards.
	MemoryLimit int64

	// Shards is the number of independently locked shards. Fixed for the
	// lifetime of the cache.
	Shards int

	// MinShardCapacity is the smallest useful per-shard budget.
	MinShardCapacity int64

	// Hash routes key bytes to a shard. It must be pure.
	Hash func(key []byte) uint64

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, key []byte) ([]byte, error)

	// OnEvict is called for every capacity eviction, under the shard lock;
	// keep callbacks lightweight and never call back into the cache.
	OnEvict func(key, value []byte)

	Metrics Metrics
	Logger  *slog.Logger
}
