// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"context"
	"fmt"
	"sync"
)

type (
	// Cache is a map of futures. Once a key enters the map every caller,
	// concurrent or later, receives the same pending or settled result.
	Cache[T any] struct {
		mu      sync.Mutex
		futures map[string]*future[T]
	}

	future[T any] struct {
		done  chan struct{}
		value T
		err   error
	}
)

// NewCache creates an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{futures: make(map[string]*future[T])}
}

// Do returns the result for key, running fn on first request only.
func (c *Cache[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	f, ok := c.futures[key]
	if !ok {
		f = &future[T]{done: make(chan struct{})}
		c.futures[key] = f
	}
	c.mu.Unlock()

	if !ok {
		f.settle(ctx, key, fn)
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// settle runs fn and always releases waiters; a panic becomes the stored
// error.
func (f *future[T]) settle(ctx context.Context, key string, fn func(context.Context) (T, error)) {
	defer close(f.done)
	defer func() {
		if r := recover(); r != nil {
			var zero T
			f.value, f.err = zero, fmt.Errorf("resolve %s: panic: %v", key, r)
		}
	}()
	f.value, f.err = fn(context.WithoutCancel(ctx))
}

// Len returns the number of keys ever requested.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.futures)
}
