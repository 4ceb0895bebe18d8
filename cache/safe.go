package cache

import (
	"log/slog"
	"sync"

	"github.com/IvanBrykalov/memstore/internal/util"
)

// SafeLRU owns one LRU and the mutex guarding it. Every operation, Get
// included, holds the mutex for its whole duration; the wrapped LRU is never
// handed out.
type SafeLRU struct {
	// ---- guarded by mu ----
	mu  sync.Mutex
	lru *LRU

	metrics Metrics
	onEvict func(key, value []byte)
	log     *slog.Logger

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_       util.CacheLinePad
	hits    util.PaddedCounter
	misses  util.PaddedCounter
	evicts  util.PaddedCounter
	rejects util.PaddedCounter
}

// NewSafeLRU returns a lock-guarded shard with the given byte budget.
func NewSafeLRU(capacity int64) *SafeLRU {
	return newSafeLRU(capacity, Options{})
}

// newSafeLRU wires the shard to the hooks from opt. Nil hooks are replaced
// with no-ops.
func newSafeLRU(capacity int64, opt Options) *SafeLRU {
	s := &SafeLRU{
		lru:     NewLRU(capacity),
		metrics: opt.Metrics,
		onEvict: opt.OnEvict,
		log:     opt.Logger,
	}
	if s.metrics == nil {
		s.metrics = NoopMetrics{}
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	s.lru.onEvict = s.evicted
	return s
}

// Put implements Storage.
func (s *SafeLRU) Put(key, value []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.resized(s.lru.Len(), s.lru.Size())
	if !s.lru.Put(key, value) {
		s.rejected(key, value, RejectOversize)
		return false
	}
	return true
}

// PutIfAbsent implements Storage.
func (s *SafeLRU) PutIfAbsent(key, value []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.resized(s.lru.Len(), s.lru.Size())
	if !s.lru.PutIfAbsent(key, value) {
		s.rejected(key, value, s.writeReject(key, value, RejectExists))
		return false
	}
	return true
}

// Set implements Storage.
func (s *SafeLRU) Set(key, value []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.resized(s.lru.Len(), s.lru.Size())
	if !s.lru.Set(key, value) {
		s.rejected(key, value, s.writeReject(key, value, RejectMissing))
		return false
	}
	return true
}

// Delete implements Storage.
func (s *SafeLRU) Delete(key []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer s.resized(s.lru.Len(), s.lru.Size())
	if !s.lru.Delete(key) {
		s.rejected(key, nil, RejectMissing)
		return false
	}
	return true
}

// Get implements Storage. It takes the exclusive lock because a hit
// reorders the recency list.
func (s *SafeLRU) Get(key []byte) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.lru.Get(key)
	if !ok {
		s.misses.Add(1)
		s.metrics.Miss()
		return nil, false
	}
	s.hits.Add(1)
	s.metrics.Hit()
	return v, true
}

// Capacity returns the shard's byte budget.
func (s *SafeLRU) Capacity() int64 { return s.lru.capacity }

// Stats returns a consistent snapshot of the shard.
func (s *SafeLRU) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Entries:    s.lru.Len(),
		Bytes:      s.lru.Size(),
		Capacity:   s.lru.Capacity(),
		Hits:       s.hits.Load(),
		Misses:     s.misses.Load(),
		Evictions:  s.evicts.Load(),
		Rejections: s.rejects.Load(),
	}
}

// -------------------- internals (mu held) --------------------

// writeReject tells an oversize rejection apart from the key-state one.
// LRU checks the size first, so the same order applies here.
func (s *SafeLRU) writeReject(key, value []byte, otherwise RejectReason) RejectReason {
	if entryCost(key, value) > s.lru.capacity {
		return RejectOversize
	}
	return otherwise
}

func (s *SafeLRU) rejected(key, value []byte, reason RejectReason) {
	s.rejects.Add(1)
	s.metrics.Reject(reason)
	if reason == RejectOversize {
		s.log.Debug("cache: oversize entry rejected",
			slog.Int("key_len", len(key)),
			slog.Int("value_len", len(value)),
			slog.Int64("shard_capacity", s.lru.capacity))
	}
}

// resized reports the change since (entries, bytes) was captured.
func (s *SafeLRU) resized(entries int, bytes int64) {
	de, db := s.lru.Len()-entries, s.lru.Size()-bytes
	if de != 0 || db != 0 {
		s.metrics.Resize(de, db)
	}
}

func (s *SafeLRU) evicted(key string, value []byte) {
	s.evicts.Add(1)
	s.metrics.Evict()
	if s.onEvict != nil {
		s.onEvict([]byte(key), value)
	}
}
