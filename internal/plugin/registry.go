// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wirehook/wirehook/internal/config"
	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Registry locates plugins on a filesystem.
type Registry struct {
	fs          afero.Fs
	projectDir  string
	searchPaths []string
	locations   map[string]string
	logger      *log.Logger
}

// NewRegistry creates a registry for the project described by cfg.
// Relative plugin_paths and plugin_locations are anchored at the project
// directory.
func NewRegistry(fsys afero.Fs, cfg *config.Config, logger *log.Logger) *Registry {
	r := &Registry{
		fs:         fsys,
		projectDir: cfg.ProjectDir,
		locations:  make(map[string]string, len(cfg.PluginLocations)),
		logger:     logging.Component(logger, logging.PrefixPlugins),
	}
	for _, p := range cfg.PluginPaths {
		r.searchPaths = append(r.searchPaths, r.anchor(p))
	}
	for name, p := range cfg.PluginLocations {
		r.locations[name] = r.anchor(p)
	}
	return r
}

func (r *Registry) anchor(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.projectDir, p)
}

// Resolve returns the project followed by the named plugins, ranked by
// declaration order. Any failure aborts the whole set.
func (r *Registry) Resolve(names []string) ([]Descriptor, error) {
	project, err := r.describe(ProjectName, 0, r.projectDir, []string{r.projectDir})
	if err != nil {
		return nil, err
	}

	descriptors := make([]Descriptor, 0, len(names)+1)
	descriptors = append(descriptors, project)

	seen := map[string]bool{ProjectName: true}
	for i, name := range names {
		if seen[name] {
			return nil, issue.New(issue.ErrBadPlugin, "plugin %q is declared more than once", name).
				WithResource(name)
		}
		seen[name] = true

		base, attempts, err := r.locate(name)
		if err != nil {
			return nil, err
		}
		d, err := r.describe(name, i+1, base, attempts)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}

	for _, d := range descriptors {
		r.logger.Debug("plugin resolved", "name", d.Name, "rank", d.Rank, "base", d.URI(), "categories", d.Capabilities)
	}
	return descriptors, nil
}

// locate finds the base directory of a named plugin.
func (r *Registry) locate(name string) (string, []string, error) {
	if err := validateName(name); err != nil {
		return "", nil, issue.New(issue.ErrBadPlugin, "invalid plugin name").WithResource(name).Wrap(err)
	}

	var candidates []string
	if loc, ok := r.locations[name]; ok {
		candidates = append(candidates, loc)
	}
	for _, p := range r.searchPaths {
		candidates = append(candidates, filepath.Join(p, filepath.FromSlash(name)))
	}

	for _, c := range candidates {
		if ok, _ := afero.DirExists(r.fs, c); ok {
			return c, candidates, nil
		}
	}

	return "", nil, issue.New(issue.ErrBadPlugin, "plugin %q could not be located", name).
		WithResource(name).
		WithAttempts(candidates...)
}

func (r *Registry) describe(name string, rank int, base string, attempts []string) (Descriptor, error) {
	if ok, _ := afero.DirExists(r.fs, base); !ok {
		return Descriptor{}, issue.New(issue.ErrBadPlugin, "plugin %q base is not a directory", name).
			WithResource(base).
			WithAttempts(attempts...)
	}

	manifest, err := readManifest(r.fs, base)
	if err != nil {
		return Descriptor{}, issue.New(issue.ErrBadPlugin, "invalid plugin manifest").WithResource(base).Wrap(err)
	}
	if manifest != nil && manifest.Name != "" && rank > 0 && manifest.Name != name {
		return Descriptor{}, issue.New(issue.ErrBadPlugin, "manifest declares name %q, want %q", manifest.Name, name).
			WithResource(filepath.Join(base, ManifestFileName))
	}

	caps, err := manifest.capabilities()
	if err != nil {
		return Descriptor{}, issue.New(issue.ErrBadPlugin, "invalid plugin manifest").
			WithResource(filepath.Join(base, ManifestFileName)).
			Wrap(err)
	}

	d := Descriptor{
		Name:         name,
		Rank:         rank,
		Base:         base,
		Capabilities: caps,
	}
	if manifest != nil {
		d.Description = manifest.Description
	}
	return d, nil
}

// validateName rejects names that would escape the search directories.
func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if filepath.IsAbs(name) || strings.Contains(name, "\\") {
		return fmt.Errorf("name %q must be a relative slash-separated name", name)
	}
	if slices.Contains(strings.Split(name, "/"), "..") {
		return fmt.Errorf("name %q must not contain '..'", name)
	}
	if scoped, ok := strings.CutPrefix(name, "@"); ok {
		parts := strings.Split(scoped, "/")
		if len(parts) > 2 || slices.Contains(parts, "") {
			return fmt.Errorf("scoped name %q must have the form @name or @scope/name", name)
		}
	}
	return nil
}
