// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/wirehook/wirehook/internal/gather"
	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/logging"
	"github.com/wirehook/wirehook/internal/module"
	"github.com/wirehook/wirehook/internal/plugin"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// handlerName matches names resolved under handlers/.
var handlerName = regexp.MustCompile(`^(get|post|put|patch|delete|head|options|trace)[A-Z]`)

// Resolver is the runtime autoloader. Create one per process or per watch
// cycle; it never shares caches with another instance.
type Resolver struct {
	fs        afero.Fs
	plugins   []plugin.Descriptor
	modules   *module.Cache
	set       *gather.Set
	entries   *Cache[Entry]
	constants map[string]any
	aliases   map[string]string
	overrides map[string]string
	wrappers  []string
	opts      Options
	logger    *log.Logger
}

var _ Autoloader = (*Resolver)(nil)

// New creates a resolver over plugins in rank order. loader is wrapped in
// a module cache owned by the resolver and shared with its gatherer.
func New(fsys afero.Fs, plugins []plugin.Descriptor, loader module.Loader, opts Options) *Resolver {
	logger := logging.Component(opts.Logger, logging.PrefixAutoload)
	modules := module.NewCache(loader)

	gopts := []gather.Option{
		gather.WithIgnore(gather.NewIgnore(opts.Ignore)),
		gather.WithLogger(opts.Logger),
	}
	for c, p := range opts.Predicates {
		gopts = append(gopts, gather.WithPredicate(c, p))
	}
	g := gather.New(fsys, modules, opts.Environment, gopts...)

	r := &Resolver{
		fs:        fsys,
		plugins:   slices.Clone(plugins),
		modules:   modules,
		set:       gather.NewSet(g, plugins),
		entries:   NewCache[Entry](),
		aliases:   maps.Clone(opts.Aliases),
		overrides: maps.Clone(opts.PathOverrides),
		wrappers:  slices.Clone(opts.Wrappers),
		opts:      opts,
		logger:    logger,
	}
	r.constants = r.builtinConstants()
	maps.Copy(r.constants, opts.Constants)
	return r
}

// Autoload resolves name. The outcome, success or failure, is memoized.
func (r *Resolver) Autoload(ctx context.Context, name string) (Entry, error) {
	return r.entries.Do(ctx, name, func(ctx context.Context) (Entry, error) {
		resolved := name
		if target, ok := r.aliases[name]; ok && target != name {
			r.logger.Debug("alias", "name", name, "to", target)
			resolved = target
		}

		entry, err := r.resolve(ctx, resolved)
		if err != nil {
			return Entry{}, err
		}
		entry.Name = name
		entry.Resolved = resolved
		r.logger.Debug("resolved", "name", name, "as", resolved, "path", entry.Path)
		return entry, nil
	})
}

// Constant returns a value from the constant table.
func (r *Resolver) Constant(name string) (any, bool) {
	v, ok := r.constants[name]
	return v, ok
}

// Registry returns the gathered registry of a category.
func (r *Resolver) Registry(ctx context.Context, c plugin.Category) (*gather.Registry, error) {
	return r.set.Get(ctx, c)
}

// Plugins returns the plugin descriptors in rank order.
func (r *Resolver) Plugins() []plugin.Descriptor {
	return r.plugins
}

// Loads returns how many module files this resolver has loaded.
func (r *Resolver) Loads() int {
	return r.modules.Loads()
}

// Environment returns the environment modules are gated by.
func (r *Resolver) Environment() string {
	return r.opts.Environment
}

func (r *Resolver) resolve(ctx context.Context, name string) (Entry, error) {
	if v, ok := r.constants[name]; ok {
		return Entry{Path: PathConstant + name, Initializer: module.Constant(name, v)}, nil
	}

	switch name {
	case module.NameHandlers:
		return r.handlers(ctx)
	case module.NameAPIDefinitions:
		return r.apiDefinitions(ctx)
	}

	if base, ok := strings.CutSuffix(name, module.WrappedSuffix); ok && base != "" {
		return r.wrapped(name, base), nil
	}

	return r.locate(ctx, name)
}

func (r *Resolver) builtinConstants() map[string]any {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return map[string]any{
		module.NameEnv:        env,
		module.NameAppEnv:     r.opts.Environment,
		module.NameProjectDir: r.opts.ProjectDir,
		module.NamePlugins:    slices.Clone(r.plugins),
	}
}

// wrapped composes the configured wrappers around the base handler,
// outermost first: w0(w1(...(base))).
func (r *Resolver) wrapped(name, base string) Entry {
	inject := append([]string{base}, r.wrappers...)
	wrappers := slices.Clone(r.wrappers)

	compose := func(_ context.Context, deps map[string]any) (any, error) {
		h, err := module.AsHandler(deps[base])
		if err != nil {
			return nil, issue.New(issue.ErrBadInjection, "%s: %v", base, err).WithResource(name)
		}
		for i := len(wrappers) - 1; i >= 0; i-- {
			w, err := module.AsWrapper(deps[wrappers[i]])
			if err != nil {
				return nil, issue.New(issue.ErrBadInjection, "wrapper %s: %v", wrappers[i], err).WithResource(name)
			}
			h = w(h)
		}
		return h, nil
	}

	return Entry{
		Path: PathAggregate + name,
		Initializer: module.Initializer{
			Name:   name,
			Kind:   module.KindService,
			Inject: inject,
			Init:   compose,
		},
	}
}

// categoryOf returns the directory a name is looked up in.
func categoryOf(name string) plugin.Category {
	if handlerName.MatchString(name) {
		return plugin.Handler
	}
	return plugin.Service
}

// locate resolves a name to a module file: the path override first, then
// each plugin in rank order with each known extension.
func (r *Resolver) locate(ctx context.Context, name string) (Entry, error) {
	c := categoryOf(name)
	var attempts []string

	if override, ok := r.overrides[name]; ok {
		loc := r.anchor(override)
		desc, err := r.try(ctx, module.Source{
			LogicalName: name,
			Category:    c,
			Plugin:      r.project(),
			Location:    loc,
		}, &attempts)
		if err != nil || desc != nil {
			return entryOf(desc), err
		}
	}

	for _, p := range r.plugins {
		if !p.Declares(c) {
			attempts = append(attempts, fmt.Sprintf("%s (%s does not provide %s)", p.Dir(c), p.Name, c.Dir()))
			continue
		}
		for _, ext := range module.Extensions() {
			desc, err := r.try(ctx, module.Source{
				LogicalName: name,
				Category:    c,
				Plugin:      p,
				Location:    filepath.Join(p.Dir(c), name+ext),
			}, &attempts)
			if err != nil || desc != nil {
				return entryOf(desc), err
			}
		}
	}

	return Entry{}, issue.New(issue.ErrUnmatchedDependency, "no module provides %q", name).
		WithResource(name).
		WithAttempts(attempts...)
}

// try loads src if the file exists and is enabled in the environment. A
// miss returns a nil descriptor and is appended to attempts. A stat failure
// other than not-exist is E_BAD_PLUGIN_DIR.
func (r *Resolver) try(ctx context.Context, src module.Source, attempts *[]string) (*module.Descriptor, error) {
	ok, err := afero.Exists(r.fs, src.Location)
	if err != nil {
		return nil, issue.New(issue.ErrBadPluginDir, "cannot stat %s", src.Location).
			WithResource(src.Plugin.Name).
			WithAttempts(append(*attempts, src.Location)...).
			Wrap(err)
	}
	if !ok {
		*attempts = append(*attempts, src.Location)
		return nil, nil
	}

	desc, err := r.modules.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if !desc.Definition.EnabledIn(r.opts.Environment) {
		*attempts = append(*attempts, fmt.Sprintf("%s (disabled in %s)", src.Location, r.opts.Environment))
		return nil, nil
	}
	return desc, nil
}

func entryOf(desc *module.Descriptor) Entry {
	if desc == nil {
		return Entry{}
	}
	return Entry{Path: desc.Location, Initializer: desc.Initializer}
}

func (r *Resolver) anchor(p string) string {
	if filepath.IsAbs(p) || r.opts.ProjectDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(r.opts.ProjectDir, p)
}

func (r *Resolver) project() plugin.Descriptor {
	for _, p := range r.plugins {
		if p.IsProject() {
			return p
		}
	}
	return plugin.Descriptor{Name: plugin.ProjectName, Base: r.opts.ProjectDir}
}
