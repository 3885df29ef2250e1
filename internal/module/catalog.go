// SPDX-License-Identifier: MPL-2.0

package module

import (
	"fmt"
	"sort"
	"sync"
)

type (
	// Options is the opaque options object a manifest passes to its factory.
	Options map[string]any

	// Factory is a compiled-in initializer constructor that manifests refer
	// to by name.
	Factory struct {
		// Kind of the initializers the factory produces. Empty means service.
		Kind Kind
		// Inject is the default dependency list. A manifest may replace it.
		Inject []string
		// New returns the InitFunc for one module.
		New func(Options) (InitFunc, error)
	}

	// Catalog maintains known factories.
	Catalog struct {
		mu        sync.RWMutex
		factories map[string]Factory
	}
)

// Func wraps a fixed InitFunc as a Factory that ignores options.
func Func(kind Kind, inject []string, fn InitFunc) Factory {
	return Factory{
		Kind:   kind,
		Inject: inject,
		New:    func(Options) (InitFunc, error) { return fn, nil },
	}
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{factories: map[string]Factory{}}
}

// Register installs a factory. Returns an error if the name already exists.
func (c *Catalog) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("catalog: name is required")
	}
	if factory.New == nil {
		return fmt.Errorf("catalog: constructor is required for %s", name)
	}
	if factory.Kind != "" && !factory.Kind.IsValid() {
		return fmt.Errorf("catalog: unknown kind %q for %s", factory.Kind, name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[name]; exists {
		return fmt.Errorf("catalog: %s already registered", name)
	}
	c.factories[name] = factory
	return nil
}

// MustRegister panics if registration fails.
func (c *Catalog) MustRegister(name string, factory Factory) {
	if err := c.Register(name, factory); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (c *Catalog) Lookup(name string) (Factory, bool) {
	if c == nil {
		return Factory{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[name]
	return f, ok
}

// Names returns a sorted list of registered factory names.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.factories))
	for name := range c.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
