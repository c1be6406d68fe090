// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Tradedesk is the command-line client for the tradedeskd trading
// daemon. See "tradedesk --help" for the command list and exit codes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tradedesk/tradedesk/cmd/tradedesk/commands"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return commands.New(os.Stdin, os.Stdout, os.Stderr).Main(ctx, os.Args[1:])
}
