// SPDX-License-Identifier: MPL-2.0

package module

import (
	"path/filepath"
	"strings"

	"github.com/wirehook/wirehook/internal/plugin"
)

type (
	// Source identifies a module file before it is loaded.
	Source struct {
		LogicalName string
		Category    plugin.Category
		Plugin      plugin.Descriptor
		// Location is the absolute file path.
		Location string
	}

	// Descriptor is a loaded module.
	Descriptor struct {
		LogicalName string
		Category    plugin.Category
		Plugin      plugin.Descriptor
		Location    string
		Definition  Definition
		Asides      []Aside
		Initializer Initializer
	}
)

// NewSource builds the source for a file in a plugin's category directory.
func NewSource(p plugin.Descriptor, c plugin.Category, fileName string) Source {
	return Source{
		LogicalName: LogicalName(fileName),
		Category:    c,
		Plugin:      p,
		Location:    filepath.Join(p.Dir(c), fileName),
	}
}

// Extensions returns the known source extensions in preference order.
func Extensions() []string {
	return []string{".cue", ".json", ".yaml", ".yml", ".go"}
}

// LogicalName strips a known source extension from a file name. Names
// without a known extension are returned unchanged.
func LogicalName(fileName string) string {
	ext := filepath.Ext(fileName)
	if ext == "" || ExtensionRank(ext) < 0 {
		return fileName
	}
	return strings.TrimSuffix(fileName, ext)
}

// ExtensionRank returns the preference index of ext, or -1 if unknown.
func ExtensionRank(ext string) int {
	for i, known := range Extensions() {
		if ext == known {
			return i
		}
	}
	return -1
}

// RelLocation returns the location relative to the plugin base, for
// messages.
func (d *Descriptor) RelLocation() string {
	rel, err := filepath.Rel(d.Plugin.Base, d.Location)
	if err != nil {
		return d.Location
	}
	return filepath.ToSlash(rel)
}
