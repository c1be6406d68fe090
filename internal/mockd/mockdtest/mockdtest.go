// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package mockdtest runs a mock daemon on a temporary Unix socket for
// the duration of a test.
package mockdtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tradedesk/tradedesk/internal/mockd"
	"github.com/tradedesk/tradedesk/lib/service"
	"github.com/tradedesk/tradedesk/lib/testutil"
)

// Start serves a new mock daemon and returns it with its socket path.
// The server is shut down when the test completes.
func Start(t *testing.T, options mockd.Options) (*mockd.Daemon, string) {
	t.Helper()
	socketPath := testutil.SocketPath(t, "tradedeskd.sock")
	daemon := mockd.New(options)
	server := service.NewSocketServer(socketPath, options.Logger)
	daemon.Register(server)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Serve(ctx); err != nil {
			t.Errorf("mock daemon: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	testutil.RequireClosed(t, server.Listening(), 5*time.Second, "mock daemon did not start listening")
	return daemon, socketPath
}
