// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// ActionableError wraps a failure with the operation the CLI was
// performing, the resource involved and hints for fixing it:
//
//	issue.Actionable("load configuration", err).
//		On("./wirehook.cue").
//		Suggest("Run 'wirehook config init' to create one")
type ActionableError struct {
	Operation   string
	Resource    string
	Suggestions []string
	Cause       error
}

// Actionable starts an ActionableError for operation.
func Actionable(operation string, cause error) *ActionableError {
	return &ActionableError{Operation: operation, Cause: cause}
}

// WrapWithOperation is Actionable that passes a nil err through.
func WrapWithOperation(err error, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	return Actionable(operation, err)
}

// On records the resource involved.
func (e *ActionableError) On(resource string) *ActionableError {
	e.Resource = resource
	return e
}

// Suggest appends fix hints.
func (e *ActionableError) Suggest(hints ...string) *ActionableError {
	e.Suggestions = append(e.Suggestions, hints...)
	return e
}

func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error { return e.Cause }

// Code returns the code carried by the cause chain, if any.
func (e *ActionableError) Code() Code { return CodeOf(e.Cause) }

// Format renders the message followed by the attempted locations of a
// coded cause and the suggestions. Verbose output also lists every error
// in the cause chain.
func (e *ActionableError) Format(verbose bool) string {
	sections := []string{e.Error()}

	if attempts := AttemptsOf(e.Cause); len(attempts) > 0 {
		sections = append(sections, "Attempted:\n  - "+strings.Join(attempts, "\n  - "))
	}
	if len(e.Suggestions) > 0 {
		sections = append(sections, "  • "+strings.Join(e.Suggestions, "\n  • "))
	}
	if verbose && e.Cause != nil {
		var chain []string
		for err, n := e.Cause, 1; err != nil; err, n = errors.Unwrap(err), n+1 {
			chain = append(chain, fmt.Sprintf("  %d. %s", n, err))
		}
		sections = append(sections, "Error chain:\n"+strings.Join(chain, "\n"))
	}
	return strings.Join(sections, "\n\n")
}
