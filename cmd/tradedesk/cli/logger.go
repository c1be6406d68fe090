// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the CLI's logger on w. On a terminal it
// uses slog.TextHandler for humans; when w is piped, redirected or not
// a file at all it uses slog.JSONHandler so scripts can parse it.
func NewCommandLogger(w io.Writer, level slog.Level) *slog.Logger {
	return newLogger(w, isTerminal(w), level)
}

func newLogger(w io.Writer, terminal bool, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
