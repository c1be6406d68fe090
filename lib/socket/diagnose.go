// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package socket

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"

	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

// DiagnoseDialError converts a connect failure into a
// DAEMON_NOT_RUNNING error. Details carry "socket_path" and a short
// "reason"; the suggestion depends on the errno.
func DiagnoseDialError(socketPath string, err error) *daemonerr.Error {
	reason, suggestion := diagnose(socketPath, err)
	return daemonerr.NotRunning(socketPath, "cannot connect to daemon at "+socketPath, err).
		WithDetail("reason", reason).
		WithSuggestion(suggestion)
}

func diagnose(socketPath string, err error) (reason, suggestion string) {
	switch {
	case errors.Is(err, unix.ENOENT):
		return "socket file does not exist",
			"The daemon is not running. Start it with 'tradedeskd start', or pass --socket if it listens elsewhere."
	case errors.Is(err, unix.ECONNREFUSED):
		return "no daemon listening on socket",
			"The socket file is stale: the daemon exited without removing it. Restart the daemon with 'tradedeskd start'."
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return "permission denied",
			"Check the socket's ownership and mode: ls -la " + socketPath
	case errors.Is(err, context.DeadlineExceeded):
		return "connect timed out",
			"The daemon did not accept the connection in time. Check that it is responsive with 'tradedesk status'."
	case errors.Is(err, context.Canceled):
		return "connect cancelled", daemonerr.DaemonNotRunning.DefaultSuggestion()
	default:
		return err.Error(), daemonerr.DaemonNotRunning.DefaultSuggestion()
	}
}
