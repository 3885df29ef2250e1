// SPDX-License-Identifier: MPL-2.0

package autoload

import (
	"context"

	"github.com/wirehook/wirehook/internal/module"
)

// Path prefixes of entries that do not come from a file.
const (
	PathConstant  = "constant:"
	PathAggregate = "aggregate:"
	PathBuild     = "build:"
	PathHost      = "host:"
	PathBuiltin   = "builtin:"
)

type (
	// Entry is the unit handed to the dependency container.
	Entry struct {
		// Name is the requested name.
		Name string
		// Resolved is the name after alias substitution. Containers key
		// instances by it so that an alias and its target share one value.
		Resolved string
		// Path is a diagnostic location; it is never parsed.
		Path string
		// Initializer builds the value.
		Initializer module.Initializer
	}

	// Autoloader resolves one name at a time.
	Autoloader interface {
		Autoload(ctx context.Context, name string) (Entry, error)
	}
)
