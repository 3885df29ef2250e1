// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the wirehook CLI.
//
// Every subcommand builds its own dependency graph from the project
// configuration through App; nothing is shared between invocations.
package cmd
