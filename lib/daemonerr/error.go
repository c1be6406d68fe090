// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package daemonerr

import (
	"errors"
	"fmt"
	"time"
)

// Error is a typed failure with a machine-readable kind, a human
// message, structured details, and an optional remediation hint.
type Error struct {
	Kind       Kind
	Message    string
	Details    map[string]any
	Suggestion string

	// Cause is the local error that produced this one (a dial error, a
	// decode error). Nil for errors reported by the daemon.
	Cause error
}

// Error returns "KIND: message", followed by the cause when present.
// The suggestion is not included; CLI rendering prints it separately.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the local cause, if any.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error target with the same kind, so that
// errors.Is(err, &daemonerr.Error{Kind: daemonerr.Timeout}) works
// through wrapping.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}

// ExitCode satisfies the interface main() checks for.
func (e *Error) ExitCode() int { return e.Kind.ExitCode() }

// Hint returns the suggestion, falling back to the kind's default.
func (e *Error) Hint() string {
	if e.Suggestion != "" {
		return e.Suggestion
	}
	return e.Kind.DefaultSuggestion()
}

// New creates an error of the given kind with no details.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Details: map[string]any{}}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// WithDetail sets one detail entry and returns e for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets the remediation hint and returns e.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// WithCause records the underlying local error and returns e.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// NotRunning is the error for an unreachable or vanished daemon.
func NotRunning(socketPath, message string, cause error) *Error {
	return New(DaemonNotRunning, message).
		WithDetail("socket_path", socketPath).
		WithSuggestion(DaemonNotRunning.DefaultSuggestion()).
		WithCause(cause)
}

// TimedOut is the error for a wait that exceeded its deadline.
func TimedOut(timeout time.Duration) *Error {
	return Newf(Timeout, "no response from daemon within %s", timeout).
		WithDetail("timeout_ms", timeout.Milliseconds()).
		WithSuggestion(Timeout.DefaultSuggestion())
}

// Internal is the error for malformed payloads and protocol violations.
func Internal(message string, cause error) *Error {
	return New(InternalError, message).WithCause(cause)
}

// FromResponse maps the error object of an ok=false response to an
// *Error. Codes outside the taxonomy become InternalError with the
// original code kept in Details["code"]. An empty code means the
// daemon sent ok=false without a usable error object.
func FromResponse(code, message string, details map[string]any, suggestion string) *Error {
	if code == "" {
		return New(InternalError, "daemon reported failure without an error payload")
	}

	kind := ParseKind(code)
	copied := make(map[string]any, len(details)+1)
	for key, value := range details {
		copied[key] = value
	}
	if string(kind) != code {
		copied["code"] = code
		if message == "" {
			message = fmt.Sprintf("unrecognized daemon error code %q", code)
		}
	}
	if message == "" {
		message = string(kind)
	}

	return &Error{
		Kind:       kind,
		Message:    message,
		Details:    copied,
		Suggestion: suggestion,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or
// ("", false) when err carries no daemon error.
func KindOf(err error) (Kind, bool) {
	var daemonError *Error
	if errors.As(err, &daemonError) {
		return daemonError.Kind, true
	}
	return "", false
}

// Is reports whether err's chain contains an *Error of the given kind.
func Is(err error, kind Kind) bool {
	found, ok := KindOf(err)
	return ok && found == kind
}

// ExitCode returns the process exit code for err: 0 for nil, the kind's
// class for daemon errors, 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if kind, ok := KindOf(err); ok {
		return kind.ExitCode()
	}
	return 1
}
