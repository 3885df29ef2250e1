// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

type (
	// Manifest is the build plan handed to the bundler.
	Manifest struct {
		Version     int         `json:"version"`
		BuildID     string      `json:"buildId"`
		Environment string      `json:"environment"`
		ProjectDir  string      `json:"projectDir"`
		Roots       []string    `json:"roots"`
		Plugins     []PluginRef `json:"plugins"`
		// Entries are sorted by name.
		Entries []Entry `json:"entries"`
		// Order lists resolved names, dependencies first.
		Order []string `json:"order"`
	}

	// PluginRef identifies a plugin that took part in the build.
	PluginRef struct {
		Name string `json:"name"`
		Rank int    `json:"rank"`
		Base string `json:"base"`
	}

	// Entry is one resolved dependency.
	Entry struct {
		Name     string `json:"name"`
		Resolved string `json:"resolved,omitempty"`
		Kind     string `json:"kind"`
		// Location is relative to the project directory when the module
		// lives below it.
		Location string   `json:"location"`
		Inject   []string `json:"inject,omitempty"`
		// Constant is the folded value of constant entries.
		Constant any  `json:"constant,omitempty"`
		Folded   bool `json:"folded,omitempty"`
		// Placeholder marks a name that only exists at runtime.
		Placeholder bool `json:"placeholder,omitempty"`
	}
)

// Write encodes m as indented JSON.
func Write(w io.Writer, m *Manifest) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// WriteFile writes m to path, creating parent directories.
func WriteFile(fsys afero.Fs, path string, m *Manifest) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, m); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Read decodes a manifest.
func Read(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return &m, nil
}
