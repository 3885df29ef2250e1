// SPDX-License-Identifier: MPL-2.0

package module

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

type (
	// Cache memoizes loaded modules by location. Concurrent requests for
	// the same location share one load; errors are memoized too.
	Cache struct {
		loader  Loader
		mu      sync.Mutex
		entries map[string]*cacheEntry
		loads   atomic.Int64
	}

	cacheEntry struct {
		done chan struct{}
		desc *Descriptor
		err  error
	}
)

// NewCache wraps loader.
func NewCache(loader Loader) *Cache {
	return &Cache{loader: loader, entries: make(map[string]*cacheEntry)}
}

// Load returns the module at src.Location, loading it on first request.
// A waiter whose context ends returns early; the load itself continues.
func (c *Cache) Load(ctx context.Context, src Source) (*Descriptor, error) {
	c.mu.Lock()
	entry, ok := c.entries[src.Location]
	if !ok {
		entry = &cacheEntry{done: make(chan struct{})}
		c.entries[src.Location] = entry
	}
	c.mu.Unlock()

	if !ok {
		c.loads.Add(1)
		c.settle(ctx, entry, src)
	}

	select {
	case <-entry.done:
		return entry.desc, entry.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// settle runs the loader and always releases waiters. A loader panic is
// stored as the entry's E_MODULE_LOAD error.
func (c *Cache) settle(ctx context.Context, entry *cacheEntry, src Source) {
	defer close(entry.done)
	defer func() {
		if r := recover(); r != nil {
			entry.desc, entry.err = nil, loadError(src, fmt.Errorf("panic: %v", r))
		}
	}()
	entry.desc, entry.err = c.loader.Load(context.WithoutCancel(ctx), src)
}

// Loads returns how many times the underlying loader was called.
func (c *Cache) Loads() int {
	return int(c.loads.Load())
}

// Loaded reports whether location has been loaded or is loading.
func (c *Cache) Loaded(location string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[location]
	return ok
}
