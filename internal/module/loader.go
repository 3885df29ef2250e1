// SPDX-License-Identifier: MPL-2.0

package module

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/logging"
	"github.com/wirehook/wirehook/internal/plugin"
	"github.com/wirehook/wirehook/internal/shell"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// Loader evaluates one module file.
	Loader interface {
		Load(ctx context.Context, src Source) (*Descriptor, error)
	}

	// LoaderFunc adapts a function to the Loader interface.
	LoaderFunc func(ctx context.Context, src Source) (*Descriptor, error)

	// ScriptIO is the standard IO command scripts run with.
	ScriptIO struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// FileLoader loads manifests and interpreted Go files from a filesystem.
	FileLoader struct {
		fs      afero.Fs
		catalog *Catalog
		stdio   ScriptIO
		logger  *log.Logger
	}

	// LoaderOption configures a FileLoader.
	LoaderOption func(*FileLoader)
)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, src Source) (*Descriptor, error) {
	return f(ctx, src)
}

// WithScriptIO sets the IO used by command scripts.
func WithScriptIO(stdio ScriptIO) LoaderOption {
	return func(l *FileLoader) { l.stdio = stdio }
}

// WithLogger sets the loader's logger.
func WithLogger(logger *log.Logger) LoaderOption {
	return func(l *FileLoader) { l.logger = logger }
}

// NewFileLoader creates a loader reading from fsys and resolving factory
// references against catalog.
func NewFileLoader(fsys afero.Fs, catalog *Catalog, opts ...LoaderOption) *FileLoader {
	l := &FileLoader{fs: fsys, catalog: catalog}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrDiscard(l.logger)
	return l
}

// Load reads and evaluates the module at src.Location.
func (l *FileLoader) Load(ctx context.Context, src Source) (*Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(l.fs, src.Location)
	if err != nil {
		return nil, loadError(src, err)
	}

	l.logger.Debug("loading module", "name", src.LogicalName, "plugin", src.Plugin.Name, "location", src.Location)

	switch ext := filepath.Ext(src.Location); ext {
	case ".cue", ".json":
		exports, err := decodeCUE(data, src.Location)
		if err != nil {
			return nil, loadError(src, err)
		}
		return l.fromManifest(src, exports)
	case ".yaml", ".yml":
		exports, err := decodeYAML(data, src.Location)
		if err != nil {
			return nil, loadError(src, err)
		}
		return l.fromManifest(src, exports)
	case ".go":
		return loadInterpreted(src, data)
	default:
		return nil, loadError(src, fmt.Errorf("unsupported module extension %q", ext))
	}
}

// fromManifest interprets decoded manifest exports.
func (l *FileLoader) fromManifest(src Source, exports map[string]any) (*Descriptor, error) {
	desc := &Descriptor{
		LogicalName: src.LogicalName,
		Category:    src.Category,
		Plugin:      src.Plugin,
		Location:    src.Location,
	}

	if def, ok := exports["definition"].(map[string]any); ok {
		desc.Definition = Definition(def)
	} else if src.Category.RequiresDefinition() {
		return nil, issue.New(issue.ErrNoDefinition, "%s module %q has no definition", src.Category, src.LogicalName).
			WithResource(src.Location)
	}

	asides, err := extractAsides(exports)
	if err != nil {
		return nil, badModule(src, err)
	}
	desc.Asides = asides

	initializer, err := l.initializer(src, desc.Definition, exports)
	if err != nil {
		return nil, err
	}
	desc.Initializer = initializer
	return desc, nil
}

func (l *FileLoader) initializer(src Source, def Definition, exports map[string]any) (Initializer, error) {
	kind := Kind(stringField(exports, "kind"))
	inject, hasInject := stringList(exports["inject"])
	factoryName := stringField(exports, "factory")

	if value, ok := exports["value"]; ok && factoryName == "" {
		if kind != "" && kind != KindConstant {
			return Initializer{}, badModule(src, fmt.Errorf("a %s module cannot declare a value", kind))
		}
		return Constant(src.LogicalName, value), nil
	}

	if script, ok := exports["script"].(string); ok && factoryName == "" {
		if src.Category != plugin.Command {
			return Initializer{}, badModule(src, fmt.Errorf("only command modules may declare a script"))
		}
		if err := shell.Validate(script, src.Location); err != nil {
			return Initializer{}, loadError(src, err)
		}
		return l.scriptInitializer(src, def, script, inject), nil
	}

	if factoryName == "" && src.Category == plugin.Route {
		return Constant(src.LogicalName, map[string]any(def)), nil
	}
	if factoryName == "" {
		factoryName = src.LogicalName
	}
	factory, ok := l.catalog.Lookup(factoryName)
	if !ok {
		return Initializer{}, issue.New(issue.ErrNoInitializer, "no initializer for module %q", src.LogicalName).
			WithResource(src.Location).
			WithParam("factory", factoryName)
	}

	if kind == "" {
		kind = factory.Kind
	}
	if kind == "" {
		kind = KindService
	}
	if !hasInject {
		inject = factory.Inject
	}

	options, _ := exports["options"].(map[string]any)
	fn, err := factory.New(Options(options))
	if err != nil {
		return Initializer{}, badModule(src, fmt.Errorf("factory %s: %w", factoryName, err))
	}

	return Initializer{
		Name:   src.LogicalName,
		Kind:   kind,
		Inject: append([]string(nil), inject...),
		Init:   fn,
	}, nil
}

func loadError(src Source, err error) error {
	return issue.New(issue.ErrModuleLoad, "failed to load module %q", src.LogicalName).
		WithResource(src.Location).
		WithParam("plugin", src.Plugin.Name).
		Wrap(err)
}

func badModule(src Source, err error) error {
	return issue.New(issue.ErrBadModule, "invalid module %q", src.LogicalName).
		WithResource(src.Location).
		WithParam("plugin", src.Plugin.Name).
		Wrap(err)
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// stringList converts a decoded list to []string. The bool reports whether
// the value was present.
func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	default:
		return nil, false
	}
}
