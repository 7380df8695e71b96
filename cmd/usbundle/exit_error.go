// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/usbundle/usbundle/internal/bundler"
	"github.com/usbundle/usbundle/pkg/usermeta"
)

// Process exit codes.
const (
	ExitOK ExitCode = 0
	// ExitFailure covers configuration, I/O and other errors.
	ExitFailure ExitCode = 1
	// ExitInvalidMetadata reports package metadata validation failures.
	ExitInvalidMetadata ExitCode = 1
	// ExitBundleFailed reports bundler errors.
	ExitBundleFailed ExitCode = 2
)

type (
	// ExitCode is a process exit status.
	ExitCode int

	// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
	ExitError struct {
		Code ExitCode
		Err  error
	}
)

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor maps an error to the process exit code.
func exitCodeFor(err error) ExitCode {
	var (
		exitErr       *ExitError
		validationErr *usermeta.ValidationError
	)
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &validationErr):
		return ExitInvalidMetadata
	case errors.Is(err, bundler.ErrBundleFailed):
		return ExitBundleFailed
	default:
		return ExitFailure
	}
}
