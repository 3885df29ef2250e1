// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"slices"
	"strings"
)

// ArgEnvPrefix prefixes the environment variables that carry named
// command arguments.
const ArgEnvPrefix = "WIREHOOK_ARG_"

// EnvToSlice converts an environment map to a sorted KEY=VALUE slice.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// ArgEnvName returns the variable name for a named argument:
// "dry-run" becomes WIREHOOK_ARG_DRY_RUN.
func ArgEnvName(name string) string {
	upper := strings.ToUpper(name)
	return ArgEnvPrefix + strings.NewReplacer("-", "_", ".", "_").Replace(upper)
}

// FilterArgVars removes WIREHOOK_ARG_* variables from environ so that a
// script starting another wirehook command does not leak its arguments.
func FilterArgVars(environ []string) []string {
	result := make([]string, 0, len(environ))
	for _, e := range environ {
		name, _, found := strings.Cut(e, "=")
		if found && strings.HasPrefix(name, ArgEnvPrefix) {
			continue
		}
		result = append(result, e)
	}
	return result
}
