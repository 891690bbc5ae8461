package classify

import (
	"context"
	"sync"

	"github.com/mkorolik/typematch/internal/singleflight"
)

// Registry is a concurrent map from a caller-chosen identity key to a
// Classifier, built lazily with at-most-once construction per key. Callers
// that agree on a key share one cache and therefore one memoization table.
//
// The key is an explicit value rather than the category list itself: pick
// anything comparable that identifies the list (a name, a small constant, a
// content hash). An entry lives as long as the registry does.
type Registry[K comparable] struct {
	mu sync.RWMutex
	m  map[K]Classifier

	// coalesces concurrent first-use builds per key
	sf singleflight.Group[K, Classifier]
}

// NewRegistry returns an empty registry.
func NewRegistry[K comparable]() *Registry[K] {
	return &Registry[K]{m: make(map[K]Classifier)}
}

// GetOrCreate returns the classifier for key, constructing it with build on
// first use. Concurrent first-use calls for the same key run build at most
// once; the losers wait for the winner's result. A failed build stores
// nothing, so a later call retries.
//
// ctx bounds only the wait of a caller blocked on another caller's build;
// cancelling it does not abort the build itself.
func (r *Registry[K]) GetOrCreate(ctx context.Context, key K, build func() (Classifier, error)) (Classifier, error) {
	if build == nil {
		return nil, ErrNilBuilder
	}

	r.mu.RLock()
	c, ok := r.m[key]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	return r.sf.Do(ctx, key, func() (Classifier, error) {
		// Double-check after winning the flight: a previous flight may have
		// stored the classifier between our fast-path miss and now.
		r.mu.RLock()
		c, ok := r.m[key]
		r.mu.RUnlock()
		if ok {
			return c, nil
		}

		c, err := build()
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.m[key] = c
		r.mu.Unlock()
		return c, nil
	})
}

// Get returns the classifier for key without constructing one.
func (r *Registry[K]) Get(key K) (Classifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.m[key]
	return c, ok
}

// Len returns the number of registered classifiers.
func (r *Registry[K]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.m)
}
