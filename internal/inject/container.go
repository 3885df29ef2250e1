// SPDX-License-Identifier: MPL-2.0

package inject

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/wirehook/wirehook/internal/autoload"
	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/logging"
	"github.com/wirehook/wirehook/internal/module"

	"github.com/charmbracelet/log"
)

type (
	// Injector instantiates a list of dependency names. A "?" prefix marks
	// an optional name, which is nil when nothing provides it.
	Injector func(ctx context.Context, names []string) (map[string]any, error)

	// Container holds registered initializers and the instances built from
	// them. Instances are keyed by resolved name, so an alias and its target
	// share one value.
	Container struct {
		autoloader autoload.Autoloader
		logger     *log.Logger

		mu         sync.Mutex
		registered map[string]module.Initializer
		instances  map[string]*instance
		acyclic    map[string]bool
		disposers  []disposer
		destroyed  bool
	}

	// Option configures a Container.
	Option func(*Container)

	instance struct {
		done  chan struct{}
		value any
		err   error
	}

	disposer struct {
		name    string
		dispose func(context.Context) error
	}
)

// ErrDestroyed is returned by Inject after Destroy.
var ErrDestroyed = errors.New("container destroyed")

// WithAutoloader sets the fallback for unregistered names.
func WithAutoloader(a autoload.Autoloader) Option {
	return func(c *Container) { c.autoloader = a }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// New creates a container. INJECTOR, CONTAINER, AUTOLOADER and logger are
// registered as constants.
func New(opts ...Option) *Container {
	c := &Container{
		registered: make(map[string]module.Initializer),
		instances:  make(map[string]*instance),
		acyclic:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Component(c.logger, logging.PrefixInject)

	c.registered[module.NameInjector] = module.Constant(module.NameInjector, Injector(c.Inject))
	c.registered[module.NameContainer] = module.Constant(module.NameContainer, c)
	c.registered[module.NameLogger] = module.Constant(module.NameLogger, c.logger)
	if c.autoloader != nil {
		c.registered[module.NameAutoloader] = module.Constant(module.NameAutoloader, c.autoloader)
	}
	return c
}

// Register adds an initializer under name. Registering a name twice, or
// after it was instantiated, is an error.
func (c *Container) Register(name string, initializer module.Initializer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.registered[name]; ok {
		return fmt.Errorf("%s is already registered", name)
	}
	if _, ok := c.instances[name]; ok {
		return fmt.Errorf("%s is already instantiated", name)
	}
	if initializer.Name == "" {
		initializer.Name = name
	}
	c.registered[name] = initializer
	return nil
}

// RegisterConstant registers a constant value.
func (c *Container) RegisterConstant(name string, value any) error {
	return c.Register(name, module.Constant(name, value))
}

// Constant returns a registered constant. Autoloaded names are not
// consulted.
func (c *Container) Constant(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case module.NameInjector, module.NameContainer, module.NameAutoloader, module.NameLogger:
		return nil, false
	}
	ini, ok := c.registered[name]
	if !ok || !ini.IsConstant() {
		return nil, false
	}
	return ini.Value, true
}

// Inject instantiates names and returns them keyed by name without the
// optional marker.
func (c *Container) Inject(ctx context.Context, names []string) (map[string]any, error) {
	out := make(map[string]any, len(names))
	for _, raw := range names {
		dep := module.ParseDependency(raw)
		v, err := c.get(ctx, dep, nil)
		if err != nil {
			return nil, err
		}
		out[dep.Name] = v
	}
	return out, nil
}

// Resolve returns the entry that provides name without instantiating it.
func (c *Container) Resolve(ctx context.Context, name string) (autoload.Entry, error) {
	c.mu.Lock()
	ini, ok := c.registered[name]
	c.mu.Unlock()
	if ok {
		return autoload.Entry{Name: name, Resolved: name, Path: autoload.PathHost + name, Initializer: ini}, nil
	}
	if c.autoloader == nil {
		return autoload.Entry{}, issue.New(issue.ErrUnmatchedDependency, "no initializer registered for %q", name).
			WithResource(name)
	}
	return c.autoloader.Autoload(ctx, name)
}

// Destroy runs provider disposers in reverse instantiation order and
// rejects further injection. Every disposer runs; errors are joined.
func (c *Container) Destroy(ctx context.Context) error {
	c.mu.Lock()
	disposers := c.disposers
	c.disposers = nil
	c.destroyed = true
	c.mu.Unlock()

	var errs []error
	for _, d := range slices.Backward(disposers) {
		c.logger.Debug("dispose", "name", d.name)
		if err := d.dispose(ctx); err != nil {
			errs = append(errs, fmt.Errorf("dispose %s: %w", d.name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Container) get(ctx context.Context, dep module.Dependency, chain []string) (any, error) {
	entry, err := c.Resolve(ctx, dep.Name)
	if err != nil {
		if dep.Optional && issue.CodeOf(err) == issue.ErrUnmatchedDependency {
			c.logger.Debug("optional dependency missing", "name", dep.Name)
			return nil, nil
		}
		return nil, err
	}
	key := entry.Resolved
	if key == "" {
		key = dep.Name
	}

	if err := c.check(ctx, key, entry, chain); err != nil {
		return nil, err
	}
	return c.instance(ctx, key, entry, append(slices.Clone(chain), key))
}

// check walks the dependency graph below key and fails on a cycle. It runs
// before any instance is created, so cycles never block on a pending
// instance.
func (c *Container) check(ctx context.Context, key string, entry autoload.Entry, chain []string) error {
	if slices.Contains(chain, key) {
		cycle := append(slices.Clone(chain[slices.Index(chain, key):]), key)
		return issue.New(issue.ErrCircularDependency, "circular dependency: %s", strings.Join(cycle, " -> ")).
			WithResource(key).
			WithParam("chain", cycle)
	}

	c.mu.Lock()
	ok := c.acyclic[key]
	c.mu.Unlock()
	if ok {
		return nil
	}

	path := append(slices.Clone(chain), key)
	for _, dep := range entry.Initializer.Dependencies() {
		next, err := c.Resolve(ctx, dep.Name)
		if err != nil {
			if dep.Optional && issue.CodeOf(err) == issue.ErrUnmatchedDependency {
				continue
			}
			return err
		}
		nextKey := next.Resolved
		if nextKey == "" {
			nextKey = dep.Name
		}
		if err := c.check(ctx, nextKey, next, path); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.acyclic[key] = true
	c.mu.Unlock()
	return nil
}

func (c *Container) instance(ctx context.Context, key string, entry autoload.Entry, chain []string) (any, error) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil, ErrDestroyed
	}
	inst, ok := c.instances[key]
	if !ok {
		inst = &instance{done: make(chan struct{})}
		c.instances[key] = inst
	}
	c.mu.Unlock()

	if !ok {
		inst.value, inst.err = c.build(context.WithoutCancel(ctx), key, entry, chain)
		close(inst.done)
	}

	select {
	case <-inst.done:
		return inst.value, inst.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Container) build(ctx context.Context, key string, entry autoload.Entry, chain []string) (any, error) {
	ini := entry.Initializer
	if ini.IsConstant() {
		return ini.Value, nil
	}
	if ini.Init == nil {
		return nil, issue.New(issue.ErrNoInitializer, "%s has no initializer", key).WithResource(entry.Path)
	}

	deps := make(map[string]any, len(ini.Inject))
	for _, dep := range ini.Dependencies() {
		v, err := c.get(ctx, dep, chain)
		if err != nil {
			return nil, err
		}
		deps[dep.Name] = v
	}

	v, err := ini.Init(ctx, deps)
	if err != nil {
		if issue.CodeOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("initialize %s (%s): %w", key, entry.Path, err)
	}

	if ini.Kind == module.KindProvider {
		p, ok := provided(v)
		if !ok {
			return nil, issue.New(issue.ErrBadInjection, "provider %s returned %T, want module.Provided", key, v).
				WithResource(entry.Path)
		}
		if p.Dispose != nil {
			c.mu.Lock()
			c.disposers = append(c.disposers, disposer{name: key, dispose: p.Dispose})
			c.mu.Unlock()
		}
		v = p.Service
	}

	c.logger.Debug("instantiated", "name", key, "kind", ini.Kind, "path", entry.Path)
	return v, nil
}

func provided(v any) (module.Provided, bool) {
	switch p := v.(type) {
	case module.Provided:
		return p, true
	case *module.Provided:
		if p == nil {
			return module.Provided{}, false
		}
		return *p, true
	default:
		return module.Provided{}, false
	}
}
