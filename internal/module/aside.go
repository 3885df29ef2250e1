// SPDX-License-Identifier: MPL-2.0

package module

import (
	"fmt"
	"slices"
	"strings"
)

// Aside component kinds, recognized by export name suffix.
const (
	AsideSchema      = "Schema"
	AsideParameter   = "Parameter"
	AsideHeader      = "Header"
	AsideResponse    = "Response"
	AsideRequestBody = "RequestBody"
	AsideCallback    = "Callback"
)

// asideSuffixes is ordered so that the longest suffix is tried first.
var asideSuffixes = []string{
	AsideRequestBody, AsideParameter, AsideResponse, AsideCallback, AsideHeader, AsideSchema,
}

// Aside is a named sub-export attached to a module.
type Aside struct {
	// Kind is the suffix the export matched.
	Kind string
	// Name is the declared name; it is the registry key.
	Name string
	// Export is the export identifier in the module file.
	Export string
	// Value is the exported object.
	Value map[string]any
}

// AsideKinds returns every aside kind.
func AsideKinds() []string {
	kinds := slices.Clone(asideSuffixes)
	slices.Sort(kinds)
	return kinds
}

// asideKind returns the kind of an export name, or "" if it is not an
// aside export. A bare suffix ("Schema") does not count.
func asideKind(export string) string {
	for _, suffix := range asideSuffixes {
		if strings.HasSuffix(export, suffix) && len(export) > len(suffix) {
			return suffix
		}
	}
	return ""
}

// extractAsides collects the aside components from a module's exports in
// export name order.
func extractAsides(exports map[string]any) ([]Aside, error) {
	names := make([]string, 0, len(exports))
	for name := range exports {
		if asideKind(name) != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	asides := make([]Aside, 0, len(names))
	for _, export := range names {
		kind := asideKind(export)
		value, ok := exports[export].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s: aside component must be an object", export)
		}
		name, _ := value["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("%s: aside component must declare a name", export)
		}
		if kind == AsideParameter {
			if _, ok := value["schema"]; !ok {
				return nil, fmt.Errorf("%s: parameter %q has no schema", export, name)
			}
		}
		asides = append(asides, Aside{Kind: kind, Name: name, Export: export, Value: value})
	}
	return asides, nil
}
