// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"

	"github.com/Thermoquad/hexlink/pkg/hexframe"
)

// Process exit codes
const (
	ExitComplete   = 0 // full 8-byte response received
	ExitIncomplete = 1 // short or missing response
	ExitTransport  = 2 // link could not be opened or the write failed
	ExitInvalid    = 3 // bad input, settings or side file
)

// ExitError carries a process exit code out of a command.
// A nil Err means the command already reported the outcome.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by Execute to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitComplete
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitInvalid
}

// classify wraps a transaction error with the exit code for its kind.
// Errors without a kind come from the device layer.
func classify(err error) error {
	kind := hexframe.KindOf(err)
	if kind == 0 {
		return &ExitError{Code: ExitTransport, Err: err}
	}
	switch kind.Class() {
	case hexframe.ClassValidation, hexframe.ClassEncoding:
		return &ExitError{Code: ExitInvalid, Err: err}
	case hexframe.ClassTransport:
		return &ExitError{Code: ExitTransport, Err: err}
	default:
		return &ExitError{Code: ExitIncomplete, Err: err}
	}
}

func invalid(err error) error {
	return &ExitError{Code: ExitInvalid, Err: err}
}
