// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"fmt"
	"strings"
)

const (
	// Route modules declare an API operation. They have a definition and may
	// carry aside components.
	Route Category = "route"
	// Handler modules implement an operation. Names are verb-prefixed.
	Handler Category = "handler"
	// Command modules implement a CLI command.
	Command Category = "command"
	// Service modules provide any other dependency.
	Service Category = "service"
)

// Category is a kind of discoverable artifact. It fixes the subdirectory
// name modules of that kind live in.
type Category string

// Categories returns every category in canonical order.
func Categories() []Category {
	return []Category{Route, Handler, Command, Service}
}

// Dir returns the plugin subdirectory holding modules of this category.
func (c Category) Dir() string {
	return string(c) + "s"
}

// RequiresDefinition reports whether modules of this category must carry
// a definition.
func (c Category) RequiresDefinition() bool {
	return c != Service
}

// String returns the category name.
func (c Category) String() string { return string(c) }

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	switch c {
	case Route, Handler, Command, Service:
		return true
	default:
		return false
	}
}

// ParseCategory accepts a category name in singular or directory form.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q (valid: route, handler, command, service)", s)
	}
	return c, nil
}
