// Package singleflight coalesces concurrent calls for the same key so the
// supplied function runs at most once while others wait for its result.
package singleflight

import (
	"context"
	"sync"
)

// Group coalesces concurrent Do calls per key K. The first caller for a key
// becomes the leader and runs fn; followers block until the leader publishes
// its result. Publishing (val, err) happens-before close(done), so a
// follower that returns after <-done observes the final values.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed once val/err are published
	val  V
	err  error
}

// Do runs fn once for key; concurrent calls with the same key share the
// result. Cancelling ctx unblocks only the waiting follower — it does not
// stop the leader's fn. If the work itself must honor cancellation, thread
// ctx into fn.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		done := c.done
		g.mu.Unlock()

		select {
		case <-done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}

	// Leader path.
	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	v, err := fn()

	c.val, c.err = v, err
	close(c.done)

	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()

	return v, err
}
