// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
)

// ExitCodeUsage is the exit code for command-line usage errors. It
// shares the class of INVALID_ARGS.
const ExitCodeUsage = 2

// ExitCodeInterrupted is the exit code when the command was cancelled
// by SIGINT or SIGTERM.
const ExitCodeInterrupted = 130

// ExitError signals a non-zero exit without printing anything: the
// command has already written its own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// UsageError is a malformed command line.
type UsageError struct {
	message string
}

func (e *UsageError) Error() string { return e.message }

// ExitCode returns ExitCodeUsage.
func (e *UsageError) ExitCode() int { return ExitCodeUsage }

// Usagef creates a UsageError.
func Usagef(format string, args ...any) error {
	return &UsageError{message: fmt.Sprintf(format, args...)}
}

// ExitCode maps err to the process exit code. The first error in the
// chain with an ExitCode method decides, which covers daemon errors
// and the CLI's own error types. Cancellation exits 130; anything else
// exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	if errors.Is(err, context.Canceled) {
		return ExitCodeInterrupted
	}
	return 1
}

// IsSilent reports whether err has already been reported to the user.
func IsSilent(err error) bool {
	var exitError *ExitError
	return errors.As(err, &exitError)
}
