// SPDX-License-Identifier: MPL-2.0

package module

// Dependency names with a fixed meaning.
const (
	// NameEnv is the process environment as map[string]string.
	NameEnv = "ENV"
	// NameAppEnv is the application environment name.
	NameAppEnv = "APP_ENV"
	// NameProjectDir is the absolute project directory.
	NameProjectDir = "PROJECT_DIR"
	// NamePlugins is the ordered plugin descriptors.
	NamePlugins = "PLUGINS"
	// NameHandlers is the consolidated operation id to handler map.
	NameHandlers = "HANDLERS"
	// NameAPIDefinitions is the gathered route definitions and components.
	NameAPIDefinitions = "API_DEFINITIONS"
	// NameCommand is the command selected on the command line.
	NameCommand = "COMMAND"
	// NameCommandArgs is the parsed command line.
	NameCommandArgs = "COMMAND_ARGS"
	// NameInjector is the container's inject primitive.
	NameInjector = "INJECTOR"
	// NameContainer is the container itself.
	NameContainer = "CONTAINER"
	// NameAutoloader is the resolver itself.
	NameAutoloader = "AUTOLOADER"
	// NameProcess is process-level state (signals, exit).
	NameProcess = "PROCESS"
	// NameLogger is the component logger.
	NameLogger = "logger"

	// WrappedSuffix marks a handler name that must be passed through the
	// configured wrappers.
	WrappedSuffix = "Wrapped"
)
