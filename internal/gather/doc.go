// SPDX-License-Identifier: MPL-2.0

// Package gather builds the per-category module registry across plugins.
//
// Directory listing runs concurrently, but the merge is computed in plugin
// rank order, one rank at a time, so the outcome never depends on I/O
// timing. A name accepted from a lower rank shadows every later plugin's
// module of the same name, and the shadowed file is never loaded. A module
// excluded by the environment gate or the caller predicate does not claim
// its name, so a later plugin may still provide it. Every skip and
// exclusion is logged at debug level.
package gather
