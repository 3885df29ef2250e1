// SPDX-License-Identifier: MPL-2.0

// Package bundle produces the build manifest: the dependency graph reachable
// from a set of root names, resolved with a build-time resolver. An external
// bundler reads the manifest; nothing here copies or compiles modules.
package bundle
