// SPDX-License-Identifier: MPL-2.0

package module

import (
	"context"
	"fmt"
	"strings"
)

const (
	// KindConstant initializers carry a ready value and have no dependencies.
	KindConstant Kind = "constant"
	// KindService initializers build a value from their dependencies.
	KindService Kind = "service"
	// KindProvider initializers return a Provided value whose Dispose hook
	// runs when the container is destroyed.
	KindProvider Kind = "provider"

	// optionalPrefix marks a dependency that may be missing.
	optionalPrefix = "?"
)

type (
	// Kind classifies an initializer.
	Kind string

	// InitFunc builds a value from the injected dependencies, keyed by
	// dependency name without the optional marker.
	InitFunc func(ctx context.Context, deps map[string]any) (any, error)

	// Initializer is the constructor the container calls for a name.
	Initializer struct {
		// Name is the dependency name the initializer was resolved for.
		Name string
		// Kind classifies the initializer.
		Kind Kind
		// Inject lists dependency names. A "?" prefix marks an optional one.
		Inject []string
		// Init builds the value. It is nil for constants.
		Init InitFunc
		// Value is the constant value.
		Value any
	}

	// Provided is what provider initializers return.
	Provided struct {
		Service any
		Dispose func(ctx context.Context) error
	}

	// Dependency is one parsed Inject entry.
	Dependency struct {
		Name     string
		Optional bool
	}

	// Handler serves one API operation.
	Handler func(ctx context.Context, params map[string]any) (any, error)

	// Wrapper decorates a handler.
	Wrapper func(Handler) Handler

	// Command is the value of a command initializer.
	Command func(ctx context.Context) error

	// Args are parsed command line arguments.
	Args struct {
		Command    string         `json:"command"`
		Named      map[string]any `json:"named"`
		Positional []string       `json:"positional"`
	}
)

// String returns the kind name.
func (k Kind) String() string { return string(k) }

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindConstant, KindService, KindProvider:
		return true
	default:
		return false
	}
}

// Constant returns a constant initializer for value.
func Constant(name string, value any) Initializer {
	return Initializer{Name: name, Kind: KindConstant, Value: value}
}

// Dependencies parses the Inject list.
func (i Initializer) Dependencies() []Dependency {
	deps := make([]Dependency, 0, len(i.Inject))
	for _, raw := range i.Inject {
		deps = append(deps, ParseDependency(raw))
	}
	return deps
}

// IsConstant reports whether the initializer carries a ready value.
func (i Initializer) IsConstant() bool { return i.Kind == KindConstant }

// ParseDependency splits an Inject entry into name and optional flag.
func ParseDependency(raw string) Dependency {
	if name, ok := strings.CutPrefix(raw, optionalPrefix); ok {
		return Dependency{Name: name, Optional: true}
	}
	return Dependency{Name: raw}
}

// String renders the dependency back in Inject form.
func (d Dependency) String() string {
	if d.Optional {
		return optionalPrefix + d.Name
	}
	return d.Name
}

// AsHandler converts v to a Handler. Interpreted modules return the plain
// func type, which is accepted too.
func AsHandler(v any) (Handler, error) {
	switch h := v.(type) {
	case Handler:
		return h, nil
	case func(context.Context, map[string]any) (any, error):
		return h, nil
	default:
		return nil, fmt.Errorf("value of type %T is not a handler", v)
	}
}

// AsWrapper converts v to a Wrapper.
func AsWrapper(v any) (Wrapper, error) {
	switch w := v.(type) {
	case Wrapper:
		return w, nil
	case func(Handler) Handler:
		return w, nil
	default:
		return nil, fmt.Errorf("value of type %T is not a handler wrapper", v)
	}
}

// AsCommand converts v to a Command.
func AsCommand(v any) (Command, error) {
	switch c := v.(type) {
	case Command:
		return c, nil
	case func(context.Context) error:
		return c, nil
	default:
		return nil, fmt.Errorf("value of type %T is not a command", v)
	}
}
