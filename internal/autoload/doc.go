// SPDX-License-Identifier: MPL-2.0

// Package autoload resolves dependency names to initializers.
//
// A Resolver tries, in order: the alias table, the constant table, the
// reserved aggregates (HANDLERS, API_DEFINITIONS), the "<name>Wrapped"
// convention, and finally module files. Verb-prefixed names such as
// getPing are looked up under handlers/, everything else under services/.
// The path override table is tried before the plugins, which are tried in
// rank order with each known extension. Every attempted location is kept on
// the E_UNMATCHED_DEPENDENCY error.
//
// Results are memoized per name for the life of the resolver, failures
// included. Each resolver owns its module cache and registries; two
// resolvers never share state.
//
// CommandResolver and BuildResolver wrap a Resolver for the run and build
// commands.
package autoload
