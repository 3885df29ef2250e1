// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type (
	// MarkdownMsg is Markdown help text rendered for a code.
	MarkdownMsg string

	// Issue is a catalog entry describing how to react to a coded failure.
	Issue struct {
		code  Code
		mdMsg MarkdownMsg
	}
)

var (
	render = glamour.Render

	issues = map[Code]*Issue{
		ErrBadPlugin: {code: ErrBadPlugin, mdMsg: `
# A plugin could not be located

Every name listed in ` + "`plugins`" + ` must resolve to a directory. Locations
are tried in this order:

1. ` + "`plugin_locations`" + ` entries
2. each ` + "`plugin_paths`" + ` directory joined with the plugin name

## Things you can try
- Check the spelling of the plugin name
- Add an explicit location:
~~~cue
plugin_locations: "@acme/auth": "/opt/plugins/auth"
~~~`},
		ErrBadPluginDir: {code: ErrBadPluginDir, mdMsg: `
# A plugin directory could not be read

The plugin root exists in the configuration but listing it failed.

## Things you can try
- Check directory permissions
- Make sure the plugin was installed completely`},
		ErrNoDefinition: {code: ErrNoDefinition, mdMsg: `
# A module has no definition

Routes, handlers and commands must declare a ` + "`definition`" + `.

~~~cue
definition: {
	path:   "/ping"
	method: "get"
	operation: operationId: "getPing"
}
~~~`},
		ErrNoInitializer: {code: ErrNoInitializer, mdMsg: `
# A module has no initializer

A module must name a compiled-in ` + "`factory`" + `, carry a command ` + "`script`" + `,
declare a constant ` + "`value`" + `, or (for Go modules) define ` + "`Initialize`" + `.`},
		ErrModuleLoad: {code: ErrModuleLoad, mdMsg: `
# A module failed to load

The file could not be parsed or evaluated. The error above points at the
offending field.`},
		ErrBadModule: {code: ErrBadModule, mdMsg: `
# A module is inconsistent

The module loaded but some of its data is unusable, for example a
` + "`...Parameter`" + ` component without a ` + "`schema`" + ` or an aside component without a
` + "`name`" + `.`},
		ErrUnmatchedDependency: {code: ErrUnmatchedDependency, mdMsg: `
# A dependency could not be resolved

No constant, aggregate, override or plugin module provides this name. Every
attempted location is listed above, in plugin rank order.

## Things you can try
- Add the module under ` + "`services/`" + ` or ` + "`handlers/`" + ` of a plugin
- Declare the value in ` + "`constants`" + `
- Remap the name with ` + "`aliases`" + `
- Mark the dependency optional with a leading ` + "`?`"},
		ErrCircularDependency: {code: ErrCircularDependency, mdMsg: `
# Circular dependency

An initializer transitively injects itself. Break the cycle by moving shared
state into a separate service.`},
		ErrBadInjection: {code: ErrBadInjection, mdMsg: `
# Unexpected injected value

A dependency resolved to a value of the wrong shape, for example a handler
wrapper that is not a wrapper function.`},
		ErrUnserializable: {code: ErrUnserializable, mdMsg: `
# Value cannot be folded at build time

Build constants must be JSON-serializable.`},
		ErrBadConfig: {code: ErrBadConfig, mdMsg: `
# Invalid configuration

Check ` + "`wirehook.cue`" + ` against the documented schema, or run
` + "`wirehook config show`" + ` to inspect the effective configuration.`},
	}
)

// Code returns the code this entry documents.
func (i *Issue) Code() Code {
	return i.code
}

// MarkdownMsg returns the raw Markdown help text.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the help text for a terminal using the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

// Codes returns every catalogued code in sorted order.
func Codes() []Code {
	codes := maps.Keys(issues)
	slices.Sort(codes)
	return codes
}

// Get returns the catalog entry for code, or nil.
func Get(code Code) *Issue {
	return issues[code]
}
