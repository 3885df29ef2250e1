// SPDX-License-Identifier: MPL-2.0

package cmd

import "strconv"

// ExitError makes Run exit with Code. With a nil Err nothing is printed,
// since the failing command already wrote its own output.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
