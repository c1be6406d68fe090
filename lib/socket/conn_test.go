// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package socket

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/tradedesk/tradedesk/lib/daemonerr"
	"github.com/tradedesk/tradedesk/lib/frame"
	"github.com/tradedesk/tradedesk/lib/testutil"
)

// pipeDialer returns a dialer handing out the client side of a
// net.Pipe and a channel delivering the server side.
func pipeDialer() (DialFunc, <-chan net.Conn) {
	servers := make(chan net.Conn, 1)
	dial := func(ctx context.Context, socketPath string) (net.Conn, error) {
		client, server := net.Pipe()
		servers <- server
		return client, nil
	}
	return dial, servers
}

func TestDialMissingSocket(t *testing.T) {
	socketPath := testutil.SocketPath(t, "missing.sock")

	_, err := Dial(context.Background(), socketPath, Options{})
	var daemonError *daemonerr.Error
	if !errors.As(err, &daemonError) {
		t.Fatalf("Dial error = %v, want *daemonerr.Error", err)
	}
	if daemonError.Kind != daemonerr.DaemonNotRunning {
		t.Errorf("Kind = %s, want DAEMON_NOT_RUNNING", daemonError.Kind)
	}
	if daemonError.Details["socket_path"] != socketPath {
		t.Errorf("socket_path = %v, want %q", daemonError.Details["socket_path"], socketPath)
	}
	if daemonError.Details["reason"] != "socket file does not exist" {
		t.Errorf("reason = %v", daemonError.Details["reason"])
	}
	if daemonError.ExitCode() != 3 {
		t.Errorf("ExitCode = %d, want 3", daemonError.ExitCode())
	}
}

func TestDialStaleSocket(t *testing.T) {
	socketPath := testutil.SocketPath(t, "stale.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	listener.(*net.UnixListener).SetUnlinkOnClose(false)
	listener.Close()
	if _, err := os.Stat(socketPath); err != nil {
		t.Fatalf("socket file should remain after close: %v", err)
	}

	_, err = Dial(context.Background(), socketPath, Options{})
	var daemonError *daemonerr.Error
	if !errors.As(err, &daemonError) {
		t.Fatalf("Dial error = %v, want *daemonerr.Error", err)
	}
	if daemonError.Details["reason"] != "no daemon listening on socket" {
		t.Errorf("reason = %v", daemonError.Details["reason"])
	}
	if daemonError.Hint() == "" {
		t.Error("stale socket error has no hint")
	}
}

func TestDialCustomDialerFailure(t *testing.T) {
	cause := errors.New("dial exploded")
	_, err := Dial(context.Background(), "/nowhere.sock", Options{
		Dial: func(context.Context, string) (net.Conn, error) { return nil, cause },
	})
	if !daemonerr.Is(err, daemonerr.DaemonNotRunning) {
		t.Fatalf("Dial error = %v, want DAEMON_NOT_RUNNING", err)
	}
	if !errors.Is(err, cause) {
		t.Error("Dial error does not wrap the dialer's error")
	}
}

func TestConnRoundTripOverUnixSocket(t *testing.T) {
	socketPath := testutil.SocketPath(t, "echo.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer listener.Close()

	// Echo every frame back, split into single-byte writes to exercise
	// reassembly over a real socket.
	served := make(chan error, 1)
	go func() {
		server, err := listener.Accept()
		if err != nil {
			served <- err
			return
		}
		defer server.Close()
		payload, err := frame.Read(server)
		if err != nil {
			served <- err
			return
		}
		encoded, _ := frame.Encode(payload)
		for _, b := range encoded {
			if _, err := server.Write([]byte{b}); err != nil {
				served <- err
				return
			}
		}
		served <- nil
	}()

	conn, err := Dial(context.Background(), socketPath, Options{})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteFrame([]byte("ping")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	got, err := conn.Next(context.Background(), 5*time.Second)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !bytes.Equal(got, []byte("ping")) {
		t.Errorf("Next = %q, want %q", got, "ping")
	}
	if err := testutil.RequireReceive(t, served, 5*time.Second, "waiting for server"); err != nil {
		t.Fatalf("server: %v", err)
	}
}

func TestConnServerCloseEndsStream(t *testing.T) {
	dial, servers := pipeDialer()
	conn, err := Dial(context.Background(), "/pipe.sock", Options{Dial: dial})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	server := testutil.RequireReceive(t, servers, time.Second)

	go func() {
		frame.Write(server, []byte("last"))
		server.Close()
	}()

	got, err := conn.Next(context.Background(), 5*time.Second)
	if err != nil || string(got) != "last" {
		t.Fatalf("Next = %q, %v; want \"last\"", got, err)
	}
	testutil.RequireClosed(t, conn.Done(), 5*time.Second, "reader did not exit after server close")

	_, err = conn.Next(context.Background(), 5*time.Second)
	if !errors.Is(err, frame.ErrClosed) {
		t.Fatalf("Next after close = %v, want ErrClosed", err)
	}
	if !daemonerr.Is(err, daemonerr.DaemonNotRunning) {
		t.Errorf("Next after close kind = %v, want DAEMON_NOT_RUNNING", err)
	}
}

func TestConnCloseFailsPendingNext(t *testing.T) {
	dial, servers := pipeDialer()
	conn, err := Dial(context.Background(), "/pipe.sock", Options{Dial: dial})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	server := testutil.RequireReceive(t, servers, time.Second)
	defer server.Close()

	results := make(chan error, 1)
	go func() {
		_, err := conn.Next(context.Background(), 0)
		results <- err
	}()

	// Give Next a moment to register; the outcome is the same even if
	// Close wins the race.
	time.Sleep(10 * time.Millisecond)
	conn.Close()

	err = testutil.RequireReceive(t, results, 5*time.Second, "pending Next did not return after Close")
	if !errors.Is(err, frame.ErrClosed) {
		t.Errorf("pending Next = %v, want ErrClosed", err)
	}
}

func TestConnCloseIsIdempotent(t *testing.T) {
	dial, servers := pipeDialer()
	conn, err := Dial(context.Background(), "/pipe.sock", Options{Dial: dial})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	server := testutil.RequireReceive(t, servers, time.Second)
	defer server.Close()

	first := conn.Close()
	for range 3 {
		if got := conn.Close(); got != first {
			t.Errorf("repeated Close = %v, want %v", got, first)
		}
	}
}

func TestConnOversizedFrameDropsConnection(t *testing.T) {
	dial, servers := pipeDialer()
	conn, err := Dial(context.Background(), "/pipe.sock", Options{Dial: dial})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	server := testutil.RequireReceive(t, servers, time.Second)
	defer server.Close()

	go server.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	_, err = conn.Next(context.Background(), 5*time.Second)
	if !daemonerr.Is(err, daemonerr.InternalError) {
		t.Fatalf("Next = %v, want INTERNAL_ERROR", err)
	}
	testutil.RequireClosed(t, conn.Done(), 5*time.Second, "reader did not exit after framing error")
}
