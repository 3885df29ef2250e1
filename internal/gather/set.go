// SPDX-License-Identifier: MPL-2.0

package gather

import (
	"context"
	"sync"

	"github.com/wirehook/wirehook/internal/plugin"
)

type (
	// Set builds registries lazily, once per category, for one plugin set.
	// It belongs to a single resolver instance.
	Set struct {
		gatherer *Gatherer
		plugins  []plugin.Descriptor
		mu       sync.Mutex
		entries  map[plugin.Category]*setEntry
	}

	setEntry struct {
		done chan struct{}
		reg  *Registry
		err  error
	}
)

// NewSet creates a lazy registry set.
func NewSet(g *Gatherer, plugins []plugin.Descriptor) *Set {
	return &Set{
		gatherer: g,
		plugins:  plugins,
		entries:  make(map[plugin.Category]*setEntry),
	}
}

// Plugins returns the plugin descriptors in rank order.
func (s *Set) Plugins() []plugin.Descriptor {
	return s.plugins
}

// Get returns the registry of a category, gathering it on first request.
// Concurrent callers share one gather; the outcome is retained.
func (s *Set) Get(ctx context.Context, c plugin.Category) (*Registry, error) {
	s.mu.Lock()
	entry, ok := s.entries[c]
	if !ok {
		entry = &setEntry{done: make(chan struct{})}
		s.entries[c] = entry
	}
	s.mu.Unlock()

	if !ok {
		func() {
			defer close(entry.done)
			entry.reg, entry.err = s.gatherer.Gather(context.WithoutCancel(ctx), c, s.plugins)
		}()
	}

	select {
	case <-entry.done:
		return entry.reg, entry.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
