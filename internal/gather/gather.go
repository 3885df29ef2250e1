// SPDX-License-Identifier: MPL-2.0

package gather

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/logging"
	"github.com/wirehook/wirehook/internal/module"
	"github.com/wirehook/wirehook/internal/plugin"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

type (
	// Predicate is a caller-supplied filter. It returns false to exclude a
	// module.
	Predicate func(*module.Descriptor) bool

	// Gatherer scans plugin category directories and merges them.
	Gatherer struct {
		fs          afero.Fs
		loader      module.Loader
		environment string
		ignore      Ignore
		predicates  map[plugin.Category]Predicate
		logger      *log.Logger
	}

	// Option configures a Gatherer.
	Option func(*Gatherer)

	// candidate is one listed file that survived the ignore rules.
	candidate struct {
		name string
		file string
		src  module.Source
	}
)

// WithIgnore sets the directory entry exclusion rules.
func WithIgnore(ignore Ignore) Option {
	return func(g *Gatherer) { g.ignore = ignore }
}

// WithPredicate adds a filter for one category.
func WithPredicate(c plugin.Category, p Predicate) Option {
	return func(g *Gatherer) { g.predicates[c] = p }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Gatherer) { g.logger = logger }
}

// New creates a gatherer. The loader is usually a *module.Cache shared with
// the resolver that owns this gatherer.
func New(fsys afero.Fs, loader module.Loader, environment string, opts ...Option) *Gatherer {
	g := &Gatherer{
		fs:          fsys,
		loader:      loader,
		environment: environment,
		predicates:  make(map[plugin.Category]Predicate),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.Component(g.logger, logging.PrefixGather)
	return g
}

// Gather builds the registry of one category. On error no registry is
// returned.
func (g *Gatherer) Gather(ctx context.Context, category plugin.Category, plugins []plugin.Descriptor) (*Registry, error) {
	listings, err := g.listAll(ctx, category, plugins)
	if err != nil {
		return nil, err
	}

	reg := &Registry{
		Category:   category,
		Modules:    make(map[string]*module.Descriptor),
		Components: make(map[string]map[string]module.Aside),
	}

	for i, p := range plugins {
		var pending []candidate
		for _, c := range listings[i] {
			if winner, claimed := reg.Modules[c.name]; claimed {
				g.logger.Debug(fmt.Sprintf("skipped %s since already loaded upstream", c.file),
					"plugin", p.Name, "name", c.name, "upstream", winner.Plugin.Name)
				reg.Shadowed = append(reg.Shadowed, Shadow{
					Name:     c.name,
					Plugin:   p.Name,
					Location: c.src.Location,
					By:       winner.Plugin.Name,
				})
				continue
			}
			pending = append(pending, c)
		}

		loaded, err := g.loadAll(ctx, pending)
		if err != nil {
			return nil, err
		}

		for _, desc := range loaded {
			if reason, excluded := g.exclude(desc); excluded {
				g.logger.Debug(fmt.Sprintf("excluded %s: %s", desc.RelLocation(), reason),
					"plugin", p.Name, "name", desc.LogicalName)
				reg.Excluded = append(reg.Excluded, Exclusion{
					Name:     desc.LogicalName,
					Plugin:   p.Name,
					Location: desc.Location,
					Reason:   reason,
				})
				continue
			}
			reg.Modules[desc.LogicalName] = desc
			g.addAsides(reg, desc)
		}
	}

	reg.Names = make([]string, 0, len(reg.Modules))
	for name := range reg.Modules {
		reg.Names = append(reg.Names, name)
	}
	slices.Sort(reg.Names)

	g.logger.Debug("gathered", "category", category, "modules", len(reg.Names),
		"shadowed", len(reg.Shadowed), "excluded", len(reg.Excluded))
	return reg, nil
}

// listAll lists every plugin's category directory concurrently. The result
// is indexed like plugins.
func (g *Gatherer) listAll(ctx context.Context, category plugin.Category, plugins []plugin.Descriptor) ([][]candidate, error) {
	listings := make([][]candidate, len(plugins))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, p := range plugins {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			list, err := g.list(category, p)
			if err != nil {
				return err
			}
			listings[i] = list
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return listings, nil
}

// list returns one plugin's candidates sorted by logical name. Within the
// plugin, the preferred extension wins for a duplicate logical name.
func (g *Gatherer) list(category plugin.Category, p plugin.Descriptor) ([]candidate, error) {
	if !p.Declares(category) {
		g.logger.Debug("plugin does not declare category", "plugin", p.Name, "category", category)
		return nil, nil
	}

	if ok, err := afero.DirExists(g.fs, p.Base); err != nil || !ok {
		return nil, issue.New(issue.ErrBadPluginDir, "plugin %q root is missing", p.Name).
			WithResource(p.Base).
			Wrap(err)
	}

	dir := p.Dir(category)
	entries, err := afero.ReadDir(g.fs, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, issue.New(issue.ErrBadPluginDir, "cannot list plugin %q", p.Name).
			WithResource(dir).
			Wrap(err)
	}

	byName := make(map[string]candidate)
	for _, entry := range entries {
		file := entry.Name()
		if entry.IsDir() {
			continue
		}
		if ignored, rule := g.ignore.Match(file); ignored {
			g.logger.Debug("ignored "+file, "plugin", p.Name, "rule", rule)
			continue
		}
		ext := filepath.Ext(file)
		if module.ExtensionRank(ext) < 0 {
			g.logger.Debug("ignored "+file, "plugin", p.Name, "rule", "unknown extension")
			continue
		}

		c := candidate{name: module.LogicalName(file), file: file, src: module.NewSource(p, category, file)}
		if prev, ok := byName[c.name]; ok {
			if module.ExtensionRank(filepath.Ext(prev.file)) <= module.ExtensionRank(ext) {
				g.logger.Debug(fmt.Sprintf("skipped %s since %s is preferred", file, prev.file), "plugin", p.Name)
				continue
			}
			g.logger.Debug(fmt.Sprintf("skipped %s since %s is preferred", prev.file, file), "plugin", p.Name)
		}
		byName[c.name] = c
	}

	list := make([]candidate, 0, len(byName))
	for _, c := range byName {
		list = append(list, c)
	}
	slices.SortFunc(list, func(a, b candidate) int {
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		default:
			return 0
		}
	})
	return list, nil
}

// loadAll loads candidates concurrently and returns them in input order.
func (g *Gatherer) loadAll(ctx context.Context, pending []candidate) ([]*module.Descriptor, error) {
	loaded := make([]*module.Descriptor, len(pending))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, c := range pending {
		eg.Go(func() error {
			desc, err := g.loader.Load(egCtx, c.src)
			if err != nil {
				return err
			}
			loaded[i] = desc
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return loaded, nil
}

// exclude applies the environment gate then the category predicate.
func (g *Gatherer) exclude(desc *module.Descriptor) (string, bool) {
	if !desc.Definition.EnabledIn(g.environment) {
		return fmt.Sprintf("disabled in environment %q (enabled in %v)", g.environment, desc.Definition.Environments()), true
	}
	if p, ok := g.predicates[desc.Category]; ok && !p(desc) {
		return "rejected by predicate", true
	}
	return "", false
}

// addAsides merges a module's aside components. Later modules overwrite
// earlier ones with the same declared name.
func (g *Gatherer) addAsides(reg *Registry, desc *module.Descriptor) {
	for _, aside := range desc.Asides {
		byName, ok := reg.Components[aside.Kind]
		if !ok {
			byName = make(map[string]module.Aside)
			reg.Components[aside.Kind] = byName
		}
		if prev, ok := byName[aside.Name]; ok {
			g.logger.Debug("aside component overridden",
				"kind", aside.Kind, "name", aside.Name, "previous", prev.Export, "by", desc.Location)
		}
		byName[aside.Name] = aside
	}
}
