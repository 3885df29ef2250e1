// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that fail the test on setup
// errors, reducing fixture boilerplate.
//
// MemFs and WriteTree lay out project trees in memory or on disk; Logger
// captures debug output for assertions on diagnostics.
package testutil
