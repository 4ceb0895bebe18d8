package cache

// Storage is the five-operation contract the command layer is written against.
//
// Every operation reports rejection through its boolean result; a false
// result guarantees the store was not modified (apart from Get, which only
// promotes on a hit). Whether an implementation is safe for concurrent use is
// documented on the implementation: LRU is not, SafeLRU and Striped are.
type Storage interface {
	// Put inserts or overwrites key→value and marks the entry most recently used.
	// Returns false only when len(key)+len(value) exceeds the shard capacity.
	Put(key, value []byte) bool

	// PutIfAbsent inserts key→value only if key is not present.
	// Returns false if the key exists or the entry is oversize.
	PutIfAbsent(key, value []byte) bool

	// Set replaces the value of an existing key and marks it most recently used.
	// Returns false if the key is absent or the entry is oversize.
	Set(key, value []byte) bool

	// Delete removes key. Returns false if it was not present.
	Delete(key []byte) bool

	// Get returns the value for key and promotes it to most recently used.
	// The returned slice is owned by the cache and must not be modified.
	Get(key []byte) ([]byte, bool)
}

// Compile-time checks.
var (
	_ Storage = (*LRU)(nil)
	_ Storage = (*SafeLRU)(nil)
	_ Storage = (*Striped)(nil)
)

// Stats is a point-in-time snapshot of a shard or of the whole cache.
type Stats struct {
	Entries    int    `json:"entries"`
	Bytes      int64  `json:"bytes"`
	Capacity   int64  `json:"capacity"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Evictions  uint64 `json:"evictions"`
	Rejections uint64 `json:"rejections"`
}

// add accumulates o into s.
func (s *Stats) add(o Stats) {
	s.Entries += o.Entries
	s.Bytes += o.Bytes
	s.Capacity += o.Capacity
	s.Hits += o.Hits
	s.Misses += o.Misses
	s.Evictions += o.Evictions
	s.Rejections += o.Rejections
}
