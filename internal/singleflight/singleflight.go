// Package singleflight coalesces concurrent loads for the same key.
package singleflight

import (
	"context"
	"errors"
	"sync"
)

// ErrPanicked is handed to followers when the leader's fn panics. The leader
// itself re-panics.
var ErrPanicked = errors.New("singleflight: fn panicked")

// Group coalesces concurrent function calls for the same key K so that
// the supplied fn is executed at most once per flight. Other concurrent
// callers wait for the shared result.
//
// The first caller for a key becomes the leader and runs fn. Followers wait
// on c.done; publishing (val, err) happens-before close(c.done). Cancelling
// ctx in a follower unblocks only that follower and never cancels the
// leader's fn.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
}

// Do runs fn once for the given key. A follower whose ctx is cancelled
// returns ctx.Err() while the leader keeps running fn.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{}), err: ErrPanicked}
	g.m[key] = c
	g.mu.Unlock()

	// Runs on panic too, so the key never stays stuck in flight.
	defer func() {
		g.mu.Lock()
		delete(g.m, key)
		g.mu.Unlock()
		close(c.done)
	}()

	c.val, c.err = fn()
	return c.val, c.err
}

// InFlight reports the number of keys currently being loaded.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.m)
}
