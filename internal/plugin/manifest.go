// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// ManifestFileName is the optional plugin manifest at a plugin base.
const ManifestFileName = "wirehook-plugin.toml"

// Manifest is the decoded plugin manifest.
type Manifest struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Categories  []string `toml:"categories"`
}

// readManifest loads the manifest at base. A missing manifest returns nil
// without error.
func readManifest(fsys afero.Fs, base string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, filepath.Join(base, ManifestFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ManifestFileName, err)
	}

	var m Manifest
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFileName, err)
	}
	return &m, nil
}

// capabilities returns the declared categories. A nil manifest, or one that
// lists no categories, declares every category.
func (m *Manifest) capabilities() ([]Category, error) {
	if m == nil || len(m.Categories) == 0 {
		return Categories(), nil
	}

	caps := make([]Category, 0, len(m.Categories))
	for _, name := range m.Categories {
		c, err := ParseCategory(name)
		if err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	return caps, nil
}
