// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	// ErrBadPlugin is raised when a declared plugin cannot be located.
	ErrBadPlugin Code = "E_BAD_PLUGIN"
	// ErrBadPluginDir is raised when a plugin root cannot be listed.
	ErrBadPluginDir Code = "E_BAD_PLUGIN_DIR"
	// ErrNoDefinition is raised when a route, handler or command module has no definition.
	ErrNoDefinition Code = "E_NO_DEFINITION"
	// ErrNoInitializer is raised when a module provides no initializer.
	ErrNoInitializer Code = "E_NO_INITIALIZER"
	// ErrModuleLoad is raised when a module file cannot be parsed or evaluated.
	ErrModuleLoad Code = "E_MODULE_LOAD"
	// ErrBadModule is raised when a module is loadable but carries inconsistent data.
	ErrBadModule Code = "E_BAD_MODULE"
	// ErrUnmatchedDependency is raised when no strategy resolves a dependency name.
	ErrUnmatchedDependency Code = "E_UNMATCHED_DEPENDENCY"
	// ErrCircularDependency is raised when an initializer transitively depends on itself.
	ErrCircularDependency Code = "E_CIRCULAR_DEPENDENCY"
	// ErrBadInjection is raised when an injected value does not have the expected shape.
	ErrBadInjection Code = "E_BAD_INJECTION"
	// ErrUnserializable is raised when a build-time constant cannot be encoded.
	ErrUnserializable Code = "E_UNSERIALIZABLE"
	// ErrBadConfig is raised when the project configuration is invalid.
	ErrBadConfig Code = "E_BAD_CONFIG"
)

type (
	// Code identifies a class of failure. A Code is itself an error so that
	// callers can test for it with errors.Is regardless of wrapping.
	Code string

	// Error is a coded failure. Attempts and Params are structured data kept
	// for diagnostics; they are never parsed back out of the message.
	Error struct {
		// Code classifies the failure.
		Code Code
		// Message is the human-readable summary.
		Message string
		// Resource is the file, plugin or dependency name involved (optional).
		Resource string
		// Attempts lists every location tried, in the order it was tried.
		Attempts []string
		// Params holds additional named values (optional).
		Params map[string]any
		// Cause is the underlying error (optional).
		Cause error
	}
)

// Error implements the error interface.
func (c Code) Error() string { return string(c) }

// New creates a coded error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithResource sets the resource involved in the failure.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithAttempts appends attempted locations.
func (e *Error) WithAttempts(attempts ...string) *Error {
	e.Attempts = append(e.Attempts, attempts...)
	return e
}

// WithParam records a named diagnostic value.
func (e *Error) WithParam(key string, value any) *Error {
	if e.Params == nil {
		e.Params = make(map[string]any)
	}
	e.Params[key] = value
	return e
}

// Wrap sets the underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Cause = err
	return e
}

// Error implements the error interface with a one-line summary.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Resource != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Resource)
		sb.WriteString(")")
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap exposes both the code and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Code}
	}
	return []error{e.Code, e.Cause}
}

// Detail renders the error with every attempted location. In verbose mode
// the params and the full cause chain are appended.
func (e *Error) Detail(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Attempts) > 0 {
		sb.WriteString("\n\nAttempted:")
		for _, attempt := range e.Attempts {
			sb.WriteString("\n  - ")
			sb.WriteString(attempt)
		}
	}

	if !verbose {
		return sb.String()
	}

	if len(e.Params) > 0 {
		keys := make([]string, 0, len(e.Params))
		for k := range e.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("\n\nParams:")
		for _, k := range keys {
			fmt.Fprintf(&sb, "\n  %s: %v", k, e.Params[k])
		}
	}

	if e.Cause != nil {
		sb.WriteString("\n\nError chain:")
		err := e.Cause
		depth := 1
		for err != nil {
			fmt.Fprintf(&sb, "\n  %d. %s", depth, err.Error())
			err = errors.Unwrap(err)
			depth++
		}
	}

	return sb.String()
}

// CodeOf returns the code of the first coded error in err's chain, or the
// empty code when there is none.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	var code Code
	if errors.As(err, &code) {
		return code
	}
	return ""
}

// AttemptsOf returns the attempted locations recorded on err, if any.
func AttemptsOf(err error) []string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Attempts
	}
	return nil
}
