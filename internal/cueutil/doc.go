// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the shared CUE compile / unify / decode flow used
// by the config loader and the module manifest loader:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with a schema definition
//  3. Validate and decode to a Go value
//
// Errors are rewritten to "<file>: <json-path>: <message>" so that a failing
// manifest points at the offending field.
package cueutil
