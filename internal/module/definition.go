// SPDX-License-Identifier: MPL-2.0

package module

import (
	"fmt"
	"strings"
)

// AllEnvironments is the environments value that enables a module everywhere.
const AllEnvironments = "all"

// Argument types accepted in command definitions.
const (
	ArgString  = "string"
	ArgNumber  = "number"
	ArgBoolean = "boolean"
)

type (
	// Definition is the structured metadata a module declares. It is kept
	// opaque; the accessors read the well-known fields.
	Definition map[string]any

	// Argument is one declared command argument.
	Argument struct {
		Name        string
		Type        string
		Required    bool
		Default     any
		Description string
	}
)

// Lookup returns the value at a dotted path of nested objects.
func (d Definition) Lookup(path ...string) (any, bool) {
	var cur any = map[string]any(d)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func (d Definition) str(path ...string) string {
	v, _ := d.Lookup(path...)
	s, _ := v.(string)
	return s
}

// Environments returns the allow-list from config.environments. A nil
// result means every environment.
func (d Definition) Environments() []string {
	v, ok := d.Lookup("config", "environments")
	if !ok {
		return nil
	}
	switch envs := v.(type) {
	case string:
		if envs == AllEnvironments {
			return nil
		}
		return []string{envs}
	case []string:
		return envs
	case []any:
		out := make([]string, 0, len(envs))
		for _, e := range envs {
			out = append(out, fmt.Sprint(e))
		}
		return out
	default:
		return nil
	}
}

// EnabledIn reports whether the module is enabled in env.
func (d Definition) EnabledIn(env string) bool {
	envs := d.Environments()
	if envs == nil {
		return true
	}
	for _, e := range envs {
		if e == env || e == AllEnvironments {
			return true
		}
	}
	return false
}

// OperationID returns operation.operationId.
func (d Definition) OperationID() string { return d.str("operation", "operationId") }

// Path returns the route path.
func (d Definition) Path() string { return d.str("path") }

// Method returns the lower-cased HTTP method.
func (d Definition) Method() string { return strings.ToLower(d.str("method")) }

// Name returns the declared name, if any.
func (d Definition) Name() string { return d.str("name") }

// Description returns description, falling back to operation.summary.
func (d Definition) Description() string {
	if s := d.str("description"); s != "" {
		return s
	}
	return d.str("operation", "summary")
}

// Parameters returns operation.parameters.
func (d Definition) Parameters() []any {
	v, _ := d.Lookup("operation", "parameters")
	params, _ := v.([]any)
	return params
}

// Arguments returns the declared command arguments in declaration order.
func (d Definition) Arguments() ([]Argument, error) {
	v, ok := d.Lookup("arguments")
	if !ok {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("arguments must be a list, got %T", v)
	}

	args := make([]Argument, 0, len(list))
	for i, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("arguments[%d] must be an object", i)
		}
		arg := Argument{Type: ArgString, Default: m["default"]}
		arg.Name, _ = m["name"].(string)
		arg.Description, _ = m["description"].(string)
		arg.Required, _ = m["required"].(bool)
		if t, ok := m["type"].(string); ok && t != "" {
			arg.Type = t
		}
		if arg.Name == "" {
			return nil, fmt.Errorf("arguments[%d]: name is required", i)
		}
		switch arg.Type {
		case ArgString, ArgNumber, ArgBoolean:
		default:
			return nil, fmt.Errorf("arguments[%d]: unknown type %q", i, arg.Type)
		}
		args = append(args, arg)
	}
	return args, nil
}
