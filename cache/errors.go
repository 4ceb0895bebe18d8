package cache

import "errors"

// Configuration errors returned by New and Build. The cache is never created
// when one of these is returned; wrap-aware callers test with errors.Is.
var (
	// ErrInvalidCapacity is returned when the total memory limit is not positive.
	ErrInvalidCapacity = errors.New("cache: memory limit must be > 0")

	// ErrInvalidShardCount is returned for a negative (New) or zero (Build) shard count.
	ErrInvalidShardCount = errors.New("cache: invalid shard count")

	// ErrShardTooSmall is returned when memoryLimit/shards is below the minimum shard capacity.
	ErrShardTooSmall = errors.New("cache: shard capacity below minimum")
)

// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
var ErrNoLoader = errors.New("cache: no Loader provided")
