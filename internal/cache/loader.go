package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Loader fronts an LRUCache so that concurrent misses for the same key share
// one call to the load function.
type Loader[T any] struct {
	cache *LRUCache[T]
	group singleflight.Group
	// gen is bumped by Invalidate; loads started under an older gen are not stored.
	gen atomic.Uint64
	mu  sync.Mutex
}

// NewLoader wraps c
func NewLoader[T any](c *LRUCache[T]) *Loader[T] {
	return &Loader[T]{cache: c}
}

// Get returns the cached value for key or runs load once for all waiters.
// Errors are returned to every waiter and never cached.
func (l *Loader[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	gen := l.gen.Load()
	flight := strconv.FormatUint(gen, 10) + "/" + key
	v, err, _ := l.group.Do(flight, func() (any, error) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		l.mu.Lock()
		if l.gen.Load() == gen {
			l.cache.Set(key, v)
		}
		l.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every cached value and detaches loads already in flight,
// so a load that read the store before a write never repopulates the cache.
func (l *Loader[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen.Add(1)
	l.cache.Purge()
}

// Cache exposes the underlying cache for registration with a Manager
func (l *Loader[T]) Cache() *LRUCache[T] {
	return l.cache
}
