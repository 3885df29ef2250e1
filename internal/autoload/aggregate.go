// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"cmp"
	"context"
	"slices"

	"github.com/wirehook/wirehook/internal/issue"
	"github.com/wirehook/wirehook/internal/module"
	"github.com/wirehook/wirehook/internal/plugin"
)

type (
	// Operation is one gathered route definition.
	Operation struct {
		OperationID string            `json:"operationId"`
		Path        string            `json:"path"`
		Method      string            `json:"method"`
		Plugin      string            `json:"plugin"`
		Definition  module.Definition `json:"definition"`
	}

	// APIDefinitions is the value of API_DEFINITIONS.
	APIDefinitions struct {
		// Operations are sorted by path then method.
		Operations []Operation `json:"operations"`
		// Components maps aside kind to declared name to component.
		Components map[string]map[string]map[string]any `json:"components"`
	}
)

// handlers synthesizes HANDLERS: every routed operation plus every handler
// no route references, merged into one map keyed by operation id.
func (r *Resolver) handlers(ctx context.Context) (Entry, error) {
	routes, err := r.set.Get(ctx, plugin.Route)
	if err != nil {
		return Entry{}, err
	}
	handlers, err := r.set.Get(ctx, plugin.Handler)
	if err != nil {
		return Entry{}, err
	}

	var ops []string
	seen := make(map[string]bool)
	for _, desc := range routes.Descriptors() {
		op := desc.Definition.OperationID()
		if op == "" {
			return Entry{}, issue.New(issue.ErrBadModule, "route %s has no operation.operationId", desc.RelLocation()).
				WithResource(desc.Location)
		}
		if !seen[op] {
			seen[op] = true
			ops = append(ops, op)
		}
	}
	for _, name := range handlers.Names {
		if !seen[name] {
			seen[name] = true
			ops = append(ops, name)
		}
	}

	inject := make([]string, len(ops))
	for i, op := range ops {
		inject[i] = r.handlerDependency(op)
	}

	merge := func(_ context.Context, deps map[string]any) (any, error) {
		out := make(map[string]module.Handler, len(ops))
		for i, op := range ops {
			h, err := module.AsHandler(deps[inject[i]])
			if err != nil {
				return nil, issue.New(issue.ErrBadInjection, "%s: %v", inject[i], err).WithResource(module.NameHandlers)
			}
			out[op] = h
		}
		return out, nil
	}

	return Entry{
		Path: PathAggregate + module.NameHandlers,
		Initializer: module.Initializer{
			Name:   module.NameHandlers,
			Kind:   module.KindService,
			Inject: inject,
			Init:   merge,
		},
	}, nil
}

func (r *Resolver) handlerDependency(op string) string {
	if len(r.wrappers) == 0 {
		return op
	}
	return op + module.WrappedSuffix
}

// apiDefinitions synthesizes API_DEFINITIONS from the route registry.
func (r *Resolver) apiDefinitions(ctx context.Context) (Entry, error) {
	routes, err := r.set.Get(ctx, plugin.Route)
	if err != nil {
		return Entry{}, err
	}

	defs := APIDefinitions{
		Operations: make([]Operation, 0, len(routes.Names)),
		Components: make(map[string]map[string]map[string]any, len(routes.Components)),
	}
	for _, desc := range routes.Descriptors() {
		defs.Operations = append(defs.Operations, Operation{
			OperationID: desc.Definition.OperationID(),
			Path:        desc.Definition.Path(),
			Method:      desc.Definition.Method(),
			Plugin:      desc.Plugin.Name,
			Definition:  desc.Definition,
		})
	}
	slices.SortStableFunc(defs.Operations, func(a, b Operation) int {
		return cmp.Or(cmp.Compare(a.Path, b.Path), cmp.Compare(a.Method, b.Method))
	})
	for kind, byName := range routes.Components {
		m := make(map[string]map[string]any, len(byName))
		for name, aside := range byName {
			m[name] = aside.Value
		}
		defs.Components[kind] = m
	}

	return Entry{
		Path:        PathAggregate + module.NameAPIDefinitions,
		Initializer: module.Constant(module.NameAPIDefinitions, defs),
	}, nil
}

func badDefinition(desc *module.Descriptor, err error) error {
	return issue.New(issue.ErrBadModule, "%s: %v", desc.RelLocation(), err).
		WithResource(desc.Location).
		Wrap(err)
}
