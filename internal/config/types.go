// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// LogLevelDebug reports every resolution and filter decision.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn reports only warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError reports only errors.
	LogLevelError LogLevel = "error"

	// LogFormatText is human-readable output.
	LogFormatText LogFormat = "text"
	// LogFormatJSON emits one JSON object per line.
	LogFormatJSON LogFormat = "json"
	// LogFormatLogfmt emits logfmt key=value pairs.
	LogFormatLogfmt LogFormat = "logfmt"

	// DefaultEnvironment is used when no environment is configured.
	DefaultEnvironment = "development"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidLogFormat is returned when a LogFormat value is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level written by the logger.
	LogLevel string

	// LogFormat selects the log line encoding.
	LogFormat string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidLogFormatError is returned when a LogFormat value is not recognized.
	InvalidLogFormatError struct {
		Value LogFormat
	}

	// InvalidConfigError collects field-level validation errors.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// IgnoreConfig lists the rules that exclude directory entries from gathering.
	IgnoreConfig struct {
		// Prefixes excludes file names starting with any of these strings.
		Prefixes []string `json:"prefixes" mapstructure:"prefixes"`
		// Suffixes excludes file names ending with any of these strings.
		Suffixes []string `json:"suffixes" mapstructure:"suffixes"`
		// Patterns are doublestar globs matched against the file name.
		Patterns []string `json:"patterns" mapstructure:"patterns"`
	}

	// LogConfig configures the process logger.
	LogConfig struct {
		Level  LogLevel  `json:"level" mapstructure:"level"`
		Format LogFormat `json:"format" mapstructure:"format"`
	}

	// Config is the resolved project configuration.
	Config struct {
		// Environment is the application environment used for module gating.
		Environment string `json:"environment" mapstructure:"environment"`
		// Plugins are the named plugins in declaration order. The project
		// itself is implicit and always ranks first.
		Plugins []string `json:"plugins" mapstructure:"plugins"`
		// PluginPaths are the directories searched for named plugins,
		// relative to the project directory unless absolute.
		PluginPaths []string `json:"plugin_paths" mapstructure:"plugin_paths"`
		// Ignore holds the directory entry exclusion rules.
		Ignore IgnoreConfig `json:"ignore" mapstructure:"ignore"`
		// Wrappers are handler wrapper service names, outermost first.
		Wrappers []string `json:"wrappers" mapstructure:"wrappers"`
		// Log configures the logger.
		Log LogConfig `json:"log" mapstructure:"log"`

		// PluginLocations maps plugin names to explicit base directories.
		PluginLocations map[string]string `json:"plugin_locations" mapstructure:"-"`
		// Aliases remaps dependency names before resolution.
		Aliases map[string]string `json:"aliases" mapstructure:"-"`
		// PathOverrides maps dependency names to explicit module files.
		PathOverrides map[string]string `json:"path_overrides" mapstructure:"-"`
		// Constants is the constant table consulted before any module lookup.
		Constants map[string]any `json:"constants" mapstructure:"-"`
		// BuildConstants are folded into literals by the build-time resolver.
		BuildConstants map[string]any `json:"build_constants" mapstructure:"-"`

		// ProjectDir is the absolute project directory. It is set by the
		// loader, never read from the file.
		ProjectDir string `json:"-" mapstructure:"-"`
	}

	// tables holds the case-sensitive sections decoded directly from CUE.
	tables struct {
		PluginLocations map[string]string `json:"plugin_locations"`
		Aliases         map[string]string `json:"aliases"`
		PathOverrides   map[string]string `json:"path_overrides"`
		Constants       map[string]any    `json:"constants"`
		BuildConstants  map[string]any    `json:"build_constants"`
	}
)

// tableKeys are the top-level keys kept out of Viper.
var tableKeys = []string{"plugin_locations", "aliases", "path_overrides", "constants", "build_constants"}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is recognized, and the validation
// errors if it is not.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the LogFormat.
func (f LogFormat) String() string { return string(f) }

// IsValid returns whether the LogFormat is recognized, and the validation
// errors if it is not.
func (f LogFormat) IsValid() (bool, []error) {
	switch f {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt:
		return true, nil
	default:
		return false, []error{&InvalidLogFormatError{Value: f}}
	}
}

// Error implements the error interface.
func (e *InvalidLogFormatError) Error() string {
	return fmt.Sprintf("invalid log format %q (valid: text, json, logfmt)", e.Value)
}

// Unwrap returns ErrInvalidLogFormat for errors.Is() compatibility.
func (e *InvalidLogFormatError) Unwrap() error { return ErrInvalidLogFormat }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid checks the constraints that the CUE schema cannot express:
// plugin name uniqueness, alias loops, and glob syntax.
func (c *Config) IsValid() (bool, []error) {
	var errs []error

	if strings.TrimSpace(c.Environment) == "" {
		errs = append(errs, errors.New("environment must not be empty"))
	}
	if ok, fieldErrs := c.Log.Level.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := c.Log.Format.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}

	seen := make(map[string]int, len(c.Plugins))
	for i, name := range c.Plugins {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("plugins[%d]: name must not be empty", i))
			continue
		}
		if first, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("plugins[%d]: duplicate plugin %q (same as plugins[%d])", i, name, first))
			continue
		}
		seen[name] = i
	}

	for from, to := range c.Aliases {
		if from == to {
			errs = append(errs, fmt.Errorf("aliases: %q maps to itself", from))
		}
	}

	for i, pattern := range c.Ignore.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("ignore.patterns[%d]: invalid glob %q", i, pattern))
		}
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Environment: DefaultEnvironment,
		Plugins:     []string{},
		PluginPaths: []string{"plugins"},
		Ignore: IgnoreConfig{
			Prefixes: []string{"."},
			Suffixes: []string{".map"},
			Patterns: []string{"*_test.*", "*.test.*", "*.d.*"},
		},
		Wrappers: []string{},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
		PluginLocations: map[string]string{},
		Aliases:         map[string]string{},
		PathOverrides:   map[string]string{},
		Constants:       map[string]any{},
		BuildConstants:  map[string]any{},
	}
}
