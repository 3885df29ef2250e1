// SPDX-License-Identifier: MPL-2.0

package gather

import (
	"github.com/wirehook/wirehook/internal/module"
	"github.com/wirehook/wirehook/internal/plugin"
)

type (
	// Registry is the merged module set of one category. It is read-only
	// once Gather returns.
	Registry struct {
		Category plugin.Category
		// Modules maps logical names to the accepted module.
		Modules map[string]*module.Descriptor
		// Names lists the logical names in sorted order.
		Names []string
		// Components maps aside kind to declared name to component.
		Components map[string]map[string]module.Aside
		// Shadowed lists files skipped because a lower rank claimed the name.
		Shadowed []Shadow
		// Excluded lists loaded modules rejected by a filter.
		Excluded []Exclusion
	}

	// Shadow records a skipped file.
	Shadow struct {
		Name     string
		Plugin   string
		Location string
		// By is the plugin whose module claimed the name.
		By string
	}

	// Exclusion records a filtered module.
	Exclusion struct {
		Name     string
		Plugin   string
		Location string
		Reason   string
	}
)

// Lookup returns the module registered under name.
func (r *Registry) Lookup(name string) (*module.Descriptor, bool) {
	d, ok := r.Modules[name]
	return d, ok
}

// Component returns the aside component of a kind by declared name.
func (r *Registry) Component(kind, name string) (module.Aside, bool) {
	a, ok := r.Components[kind][name]
	return a, ok
}

// Descriptors returns the modules in name order.
func (r *Registry) Descriptors() []*module.Descriptor {
	out := make([]*module.Descriptor, 0, len(r.Names))
	for _, name := range r.Names {
		out = append(out, r.Modules[name])
	}
	return out
}
