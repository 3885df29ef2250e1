// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"net/url"
	"path/filepath"
	"slices"
)

// ProjectName is the implicit name of the rank 0 plugin.
const ProjectName = "project"

// Descriptor is a located plugin. It is immutable once resolved.
type Descriptor struct {
	// Name is the declared plugin name.
	Name string
	// Rank is the declaration order. Lower rank wins on name collisions.
	Rank int
	// Base is the absolute base directory.
	Base string
	// Description comes from the plugin manifest, if any.
	Description string
	// Capabilities are the categories this plugin contributes to.
	Capabilities []Category
}

// URI renders the base directory as a file URI for diagnostics.
func (d Descriptor) URI() string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(d.Base)}
	return u.String()
}

// Declares reports whether the plugin contributes to the category.
func (d Descriptor) Declares(c Category) bool {
	return slices.Contains(d.Capabilities, c)
}

// Dir returns the plugin's subdirectory for a category.
func (d Descriptor) Dir(c Category) string {
	return filepath.Join(d.Base, c.Dir())
}

// IsProject reports whether this is the implicit project plugin.
func (d Descriptor) IsProject() bool {
	return d.Rank == 0
}
