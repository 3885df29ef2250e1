// SPDX-License-Identifier: MPL-2.0

// Package plugin resolves the ordered set of plugins that contribute modules.
//
// The project itself is always rank 0. Named plugins follow in declaration
// order and are located through explicit plugin_locations entries first,
// then through each plugin_paths directory. Names may carry an "@" prefix:
// "@pluginA" is a directory of that name and the scoped "@acme/auth" maps to
// the nested directory "@acme/auth". Resolution is all or nothing: one
// missing plugin fails the whole set with E_BAD_PLUGIN.
//
// A plugin may restrict the categories it contributes to with a
// wirehook-plugin.toml manifest at its base directory.
package plugin
