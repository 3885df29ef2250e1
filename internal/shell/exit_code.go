// SPDX-License-Identifier: MPL-2.0

package shell

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNonZeroExit is the sentinel error wrapped by ExitError.
var ErrNonZeroExit = errors.New("script exited with non-zero status")

type (
	// ExitCode represents a script exit status code. The zero value means
	// success.
	ExitCode int

	// ExitError is returned when a script finishes with a non-zero status.
	ExitError struct {
		Code ExitCode
	}
)

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("script exited with status %d", e.Code)
}

// Unwrap returns ErrNonZeroExit for errors.Is() compatibility.
func (e *ExitError) Unwrap() error { return ErrNonZeroExit }
