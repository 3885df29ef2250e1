// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"context"
	"encoding/json"
	"maps"

	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/logging"
	"github.com/wirehook/wirehook/internal/module"

	"github.com/charmbracelet/log"
)

type (
	// ConstantSource exposes constants already registered in a host
	// container.
	ConstantSource interface {
		Constant(name string) (any, bool)
	}

	// Placeholder stands in for a dependency that only exists at runtime.
	Placeholder struct {
		Placeholder string `json:"placeholder"`
	}

	// BuildResolver resolves names for the build manifest. Constants are
	// folded into literals instead of being loaded.
	BuildResolver struct {
		base      *Resolver
		host      ConstantSource
		constants map[string]any
		entries   *Cache[Entry]
		logger    *log.Logger
	}
)

var _ Autoloader = (*BuildResolver)(nil)

// unbuildable names only exist in a running process.
var unbuildable = map[string]bool{
	module.NameInjector:    true,
	module.NameContainer:   true,
	module.NameAutoloader:  true,
	module.NameEnv:         true,
	module.NameProcess:     true,
	module.NameCommand:     true,
	module.NameCommandArgs: true,
}

// Unbuildable reports whether name is replaced by a placeholder at build
// time.
func Unbuildable(name string) bool {
	return unbuildable[name]
}

// NewBuildResolver wraps base, which must be a resolver created for the
// build alone. host may be nil.
func NewBuildResolver(base *Resolver, host ConstantSource, buildConstants map[string]any) *BuildResolver {
	return &BuildResolver{
		base:      base,
		host:      host,
		constants: maps.Clone(buildConstants),
		entries:   NewCache[Entry](),
		logger:    logging.Component(base.opts.Logger, logging.PrefixBuild),
	}
}

// Autoload resolves name for the build.
func (b *BuildResolver) Autoload(ctx context.Context, name string) (Entry, error) {
	return b.entries.Do(ctx, name, func(ctx context.Context) (Entry, error) {
		if b.host != nil {
			if v, ok := b.host.Constant(name); ok {
				return b.fold(name, PathHost+name, v)
			}
		}
		if v, ok := b.constants[name]; ok {
			return b.fold(name, PathBuild+name, v)
		}
		if unbuildable[name] {
			b.logger.Warn("dependency is not available at build time", "name", name)
			return Entry{
				Name:        name,
				Resolved:    name,
				Path:        PathBuiltin + "placeholder",
				Initializer: module.Constant(name, Placeholder{Placeholder: name}),
			}, nil
		}

		entry, err := b.base.Autoload(ctx, name)
		if err != nil {
			return Entry{}, err
		}
		if entry.Initializer.IsConstant() {
			if err := serializable(name, entry.Initializer.Value); err != nil {
				return Entry{}, err
			}
		}
		return entry, nil
	})
}

// Base returns the wrapped resolver.
func (b *BuildResolver) Base() *Resolver {
	return b.base
}

func (b *BuildResolver) fold(name, path string, v any) (Entry, error) {
	if err := serializable(name, v); err != nil {
		return Entry{}, err
	}
	b.logger.Debug("folded", "name", name, "path", path)
	return Entry{
		Name:        name,
		Resolved:    name,
		Path:        path,
		Initializer: module.Constant(name, v),
	}, nil
}

func serializable(name string, v any) error {
	if _, err := json.Marshal(v); err != nil {
		return issue.New(issue.ErrUnserializable, "constant %s cannot be serialized: %v", name, err).
			WithResource(name).
			Wrap(err)
	}
	return nil
}
