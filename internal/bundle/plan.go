// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wirehook/wirehook/internal/autoload"
	"github.com/wirehook/wirehook/internal/dag"
	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/module"

	"github.com/google/uuid"
)

type (
	// Option configures Plan.
	Option func(*planner)

	planner struct {
		newID func() string
	}
)

// WithBuildID fixes the build id generator.
func WithBuildID(fn func() string) Option {
	return func(p *planner) { p.newID = fn }
}

// Plan walks the dependency graph from roots with a build-time resolver.
// Optional dependencies that nothing provides are left out. The result is
// deterministic apart from the build id.
func Plan(ctx context.Context, b *autoload.BuildResolver, roots []string, opts ...Option) (*Manifest, error) {
	p := planner{newID: func() string { return uuid.NewString() }}
	for _, opt := range opts {
		opt(&p)
	}

	base := b.Base()
	m := &Manifest{
		Version:     ManifestVersion,
		BuildID:     p.newID(),
		Environment: base.Environment(),
		ProjectDir:  projectDir(base),
		Roots:       slices.Clone(roots),
	}
	for _, pl := range base.Plugins() {
		m.Plugins = append(m.Plugins, PluginRef{Name: pl.Name, Rank: pl.Rank, Base: pl.Base})
	}

	graph := dag.New()
	seen := make(map[string]bool)
	queue := make([]module.Dependency, 0, len(roots))
	for _, root := range roots {
		queue = append(queue, module.ParseDependency(root))
	}

	for len(queue) > 0 {
		dep := queue[0]
		queue = queue[1:]
		if seen[dep.Name] {
			continue
		}
		seen[dep.Name] = true

		e, err := b.Autoload(ctx, dep.Name)
		if err != nil {
			if dep.Optional && issue.CodeOf(err) == issue.ErrUnmatchedDependency {
				continue
			}
			return nil, err
		}

		entry := Entry{
			Name:     e.Name,
			Kind:     string(e.Initializer.Kind),
			Location: relative(m.ProjectDir, e.Path),
			Inject:   slices.Clone(e.Initializer.Inject),
		}
		if e.Resolved != "" && e.Resolved != e.Name {
			entry.Resolved = e.Resolved
		}
		if e.Initializer.IsConstant() {
			entry.Constant = e.Initializer.Value
			entry.Folded = strings.HasPrefix(e.Path, autoload.PathBuild) || strings.HasPrefix(e.Path, autoload.PathHost)
			_, entry.Placeholder = e.Initializer.Value.(autoload.Placeholder)
		}
		m.Entries = append(m.Entries, entry)

		graph.Add(dep.Name)
		for _, d := range e.Initializer.Dependencies() {
			queue = append(queue, d)
			graph.Add(dep.Name, d.Name)
		}
	}

	order, err := graph.Order()
	if err != nil {
		var cycle *dag.CycleError
		if errors.As(err, &cycle) {
			return nil, issue.New(issue.ErrCircularDependency, "%v", err).
				WithParam("chain", cycle.Cycle).
				Wrap(err)
		}
		return nil, err
	}
	// Skipped optional names are nodes without an entry.
	m.Order = slices.DeleteFunc(order, func(name string) bool { return !hasEntry(m.Entries, name) })

	slices.SortFunc(m.Entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return m, nil
}

func hasEntry(entries []Entry, name string) bool {
	return slices.ContainsFunc(entries, func(e Entry) bool { return e.Name == name })
}

func projectDir(r *autoload.Resolver) string {
	v, ok := r.Constant(module.NameProjectDir)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// relative returns path relative to dir when path is a file below dir.
func relative(dir, path string) string {
	if dir == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}
