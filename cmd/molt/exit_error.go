// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"molt-cli/pkg/types"
)

// ExitError carries a process exit code out of a RunE handler. Execute
// unwraps it after fang has rendered the error, so session failures (a
// missing library, a trapped command) set the exit status without any
// handler calling os.Exit directly.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the underlying message, or a generic one for a bare code.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap exposes the wrapped error to errors.Is/As chains.
func (e *ExitError) Unwrap() error {
	return e.Err
}
