package cache

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// A mixed workload of concurrent writes, reads and deletes on random keys.
// Should pass under `-race`; afterwards every shard must still be within budget.
func TestRace_Basic(t *testing.T) {
	c := mustNew(t, small(64<<10, 32))

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 50_000
	deadline := time.Now().Add(time.Second)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			val := make([]byte, 64)
			for time.Now().Before(deadline) {
				k := []byte("k:" + strconv.Itoa(r.Intn(keyspace)))
				v := val[:r.Intn(len(val))]
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4: // ~5% — Delete
					c.Delete(k)
				case 5, 6, 7, 8, 9: // ~5% — PutIfAbsent
					c.PutIfAbsent(k, v)
				case 10, 11, 12, 13, 14: // ~5% — Set
					c.Set(k, v)
				case 15, 16, 17, 18, 19, 20, 21, 22, 23, 24: // ~10% — Put
					c.Put(k, v)
				default: // ~75% — Get
					c.Get(k)
				}
			}
		}(w)
	}
	wg.Wait()

	for i, s := range c.ShardStats() {
		if s.Bytes > s.Capacity {
			t.Fatalf("shard %d over budget: %d > %d", i, s.Bytes, s.Capacity)
		}
	}
	for _, s := range c.shards {
		s.mu.Lock()
		checkInvariants(t, s.lru)
		s.mu.Unlock()
	}
}

// Writers on one key never expose a torn value: a Get observes exactly one
// of the values that were written.
func TestRace_SameKeyWriters(t *testing.T) {
	c := mustNew(t, small(1<<12, 1))
	values := [][]byte{[]byte("aaaaaaaa"), []byte("bbbb"), []byte("cccccccccccc")}

	var stop atomic.Bool
	var wg sync.WaitGroup
	for i := range values {
		wg.Add(1)
		go func(v []byte) {
			defer wg.Done()
			for !stop.Load() {
				c.Put([]byte("k"), v)
			}
		}(values[i])
	}

	for i := 0; i < 10_000; i++ {
		v, ok := c.Get([]byte("k"))
		if !ok {
			continue
		}
		s := string(v)
		if s != string(values[0]) && s != string(values[1]) && s != string(values[2]) {
			t.Fatalf("torn value %q", s)
		}
	}
	stop.Store(true)
	wg.Wait()
}

// One hundred goroutines call GetOrLoad on the same key concurrently.
// The Loader should run at most once.
func TestRace_GetOrLoad(t *testing.T) {
	var calls int64

	opt := small(1<<12, 8)
	opt.Loader = func(_ context.Context, k []byte) ([]byte, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(2 * time.Millisecond) // simulate I/O
		return []byte("v:" + string(k)), nil
	}
	c := mustNew(t, opt)

	const goroutines = 100
	key := "same-key"

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := c.GetOrLoad(context.Background(), []byte(key))
			if err != nil {
				t.Errorf("GetOrLoad error: %v", err)
				return
			}
			if string(v) != "v:"+key {
				t.Errorf("unexpected value: %q", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got > 1 {
		t.Fatalf("loader should run at most once, got %d", got)
	}
}
