// SPDX-License-Identifier: MPL-2.0

// Package module defines the unit of discovery: a file under a plugin's
// category directory that yields a definition, optional aside components,
// and an initializer.
//
// Module files are manifests, not compiled code. A manifest names a Go
// factory registered in a Catalog, carries a shell script (commands only),
// or is an interpreted Go file. Supported extensions, in preference order:
//
//	.cue   CUE, validated against the embedded #Module schema
//	.json  JSON, validated against the same schema
//	.yaml  YAML, converted then validated against the same schema
//	.yml   same as .yaml
//	.go    interpreted with yaegi; must be package main and define
//	       Initialize(map[string]any) (any, error) and, for routes,
//	       handlers and commands, Definition() map[string]any
//
// A Cache wraps a Loader so that each file is evaluated at most once per
// resolver instance.
package module
