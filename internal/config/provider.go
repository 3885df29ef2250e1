// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration comes from. ConfigFilePath,
	// when set, is the only file read; otherwise wirehook.cue in ProjectDir
	// (the working directory when empty) is used if present.
	LoadOptions struct {
		ConfigFilePath string
		ProjectDir     string
	}

	// Provider is the seam the CLI loads configuration through, so tests can
	// substitute a fixed Config.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// ProviderFunc adapts a function to Provider.
	ProviderFunc func(ctx context.Context, opts LoadOptions) (*Config, error)
)

// Load calls f.
func (f ProviderFunc) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return f(ctx, opts)
}

// NewProvider returns the file-backed Provider.
func NewProvider() Provider {
	return ProviderFunc(func(ctx context.Context, opts LoadOptions) (*Config, error) {
		cfg, _, err := loadWithOptions(ctx, opts)
		return cfg, err
	})
}

// LoadWithSource loads like NewProvider().Load and also reports the file
// the config came from, empty when only defaults and environment applied.
func LoadWithSource(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}
