// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrEntryPointMissing indicates the core's CLI entry file is absent.
	ErrEntryPointMissing = errors.New("core entry point missing")

	// ErrTSNodeMissing indicates a source-mode core without ts-node installed.
	ErrTSNodeMissing = errors.New("ts-node not installed in core")

	// ErrUnsupportedShell is returned for completion requests of unknown shells.
	ErrUnsupportedShell = errors.New("unsupported shell")
)

type (
	// LoadError reports that the core could not be loaded.
	LoadError struct {
		Mode Mode
		Path string
		Err  error
	}

	// ExitCodeError carries a non-zero exit status of the core process.
	ExitCodeError struct {
		Code int
	}
)

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("loading core (%s mode) from %s: %v", e.Mode, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("core exited with status %d", e.Code)
}
