// SPDX-License-Identifier: MPL-2.0

// Package builtin holds the factories compiled into the wirehook binary.
// Manifests reference them with `factory: "<name>"`.
package builtin
