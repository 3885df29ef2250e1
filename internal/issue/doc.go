// SPDX-License-Identifier: MPL-2.0

// Package issue provides the wirehook error taxonomy.
//
// Every fatal condition raised by plugin lookup, module gathering and
// dependency resolution carries a Code (E_BAD_PLUGIN, E_UNMATCHED_DEPENDENCY,
// ...) together with the locations that were attempted, so that a failed boot
// can be diagnosed without re-running it. Codes double as sentinel errors for
// errors.Is. The package also keeps the CLI-facing ActionableError builder and
// a catalog of Markdown help pages keyed by code.
package issue
