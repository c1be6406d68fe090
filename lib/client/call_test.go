// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tradedesk/tradedesk/lib/clock"
	"github.com/tradedesk/tradedesk/lib/codec"
	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
	"github.com/tradedesk/tradedesk/lib/frame"
	"github.com/tradedesk/tradedesk/lib/metrics"
	"github.com/tradedesk/tradedesk/lib/testutil"
)

type callResult struct {
	value map[string]any
	err   error
}

func callAsync(c *Client, commandName string, params any, options ...CallOption) <-chan callResult {
	results := make(chan callResult, 1)
	go func() {
		var value map[string]any
		err := c.Call(context.Background(), commandName, params, &value, options...)
		results <- callResult{value: value, err: err}
	}()
	return results
}

func TestCallResponseSplitAcrossChunks(t *testing.T) {
	daemon := newFakeDaemon()
	c := New(testSocket, WithDialer(daemon.dial))
	results := callAsync(c, "daemon.status", nil)

	server := daemon.accept(t)
	request, _ := readRequest(t, server)

	payload, _ := codec.Marshal(map[string]any{
		"request_id": request.RequestID,
		"ok":         true,
		"data":       map[string]any{"x": 1},
	})
	encoded, _ := frame.Encode(payload)
	// Two chunks, the first ending inside the length prefix.
	for _, chunk := range [][]byte{encoded[:2], encoded[2:]} {
		if _, err := server.Write(chunk); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	result := testutil.RequireReceive(t, results, 5*time.Second)
	if result.err != nil {
		t.Fatalf("Call: %v", result.err)
	}
	if x, _ := result.value["x"].(uint64); x != 1 {
		t.Errorf("data = %v, want {x: 1}", result.value)
	}
	testutil.RequireClosed(t, waitClosed(daemon, 1), 5*time.Second, "connection not closed")
}

func TestCallDaemonError(t *testing.T) {
	daemon := newFakeDaemon()
	c := New(testSocket, WithDialer(daemon.dial))
	results := callAsync(c, "order.place", map[string]any{"symbol": "AAPL"})

	server := daemon.accept(t)
	request, _ := readRequest(t, server)
	writeValue(t, server, map[string]any{
		"request_id": request.RequestID,
		"ok":         false,
		"error": map[string]any{
			"code":       "RISK_HALTED",
			"message":    "Trading is halted",
			"details":    map[string]any{"halted_at": "2026-03-02T14:00:00Z"},
			"suggestion": "Run 'tradedesk risk resume' once the issue is resolved.",
		},
	})

	result := testutil.RequireReceive(t, results, 5*time.Second)
	var daemonError *daemonerr.Error
	if !errors.As(result.err, &daemonError) {
		t.Fatalf("Call error = %v, want *daemonerr.Error", result.err)
	}
	if daemonError.Kind != daemonerr.RiskHalted || daemonError.Message != "Trading is halted" {
		t.Errorf("error = %+v", daemonError)
	}
	if daemonError.Details["halted_at"] != "2026-03-02T14:00:00Z" {
		t.Errorf("details = %v", daemonError.Details)
	}
	if daemonError.Details["request_id"] != request.RequestID {
		t.Errorf("request_id detail = %v", daemonError.Details["request_id"])
	}
	if daemonError.Hint() != "Run 'tradedesk risk resume' once the issue is resolved." {
		t.Errorf("hint = %q", daemonError.Hint())
	}
	if daemonerr.ExitCode(result.err) != 5 {
		t.Errorf("exit code = %d, want 5", daemonerr.ExitCode(result.err))
	}
	testutil.RequireClosed(t, waitClosed(daemon, 1), 5*time.Second, "connection not closed")
}

func TestCallUnknownErrorCode(t *testing.T) {
	daemon := newFakeDaemon()
	c := New(testSocket, WithDialer(daemon.dial))
	results := callAsync(c, "daemon.status", nil)

	server := daemon.accept(t)
	request, _ := readRequest(t, server)
	writeValue(t, server, map[string]any{
		"request_id": request.RequestID,
		"ok":         false,
		"error":      map[string]any{"code": "MARKET_ON_FIRE", "message": "?"},
	})

	err := testutil.RequireReceive(t, results, 5*time.Second).err
	var daemonError *daemonerr.Error
	if !errors.As(err, &daemonError) || daemonError.Kind != daemonerr.InternalError {
		t.Fatalf("Call error = %v, want INTERNAL_ERROR", err)
	}
	if daemonError.Details["code"] != "MARKET_ON_FIRE" {
		t.Errorf("details = %v, want original code preserved", daemonError.Details)
	}
	if daemonerr.ExitCode(err) != 1 {
		t.Errorf("exit code = %d, want 1", daemonerr.ExitCode(err))
	}
}

func TestCallTimeout(t *testing.T) {
	fakeClock := clock.Fake(epoch)
	daemon := newFakeDaemon()
	c := New(testSocket, WithDialer(daemon.dial), WithClock(fakeClock))
	results := callAsync(c, "quote.snapshot", nil, WithCallTimeout(250*time.Millisecond))

	server := daemon.accept(t)
	readRequest(t, server)

	// The daemon never answers.
	fakeClock.WaitForTimers(1)
	fakeClock.Advance(250 * time.Millisecond)

	err := testutil.RequireReceive(t, results, 5*time.Second).err
	var daemonError *daemonerr.Error
	if !errors.As(err, &daemonError) || daemonError.Kind != daemonerr.Timeout {
		t.Fatalf("Call error = %v, want TIMEOUT", err)
	}
	if daemonError.Details["timeout_ms"] != int64(250) {
		t.Errorf("timeout_ms = %#v, want 250", daemonError.Details["timeout_ms"])
	}
	if daemonerr.ExitCode(err) != 4 {
		t.Errorf("exit code = %d, want 4", daemonerr.ExitCode(err))
	}
	testutil.RequireClosed(t, waitClosed(daemon, 1), 5*time.Second, "connection not closed after timeout")
}

func TestCallDaemonClosesWithoutResponse(t *testing.T) {
	daemon := newFakeDaemon()
	c := New(testSocket, WithDialer(daemon.dial))
	results := callAsync(c, "daemon.status", nil)

	server := daemon.accept(t)
	readRequest(t, server)
	server.Close()

	err := testutil.RequireReceive(t, results, 5*time.Second).err
	if !daemonerr.Is(err, daemonerr.DaemonNotRunning) {
		t.Fatalf("Call error = %v, want DAEMON_NOT_RUNNING", err)
	}
	if !errors.Is(err, frame.ErrClosed) {
		t.Error("error does not identify the closed transport")
	}
}

func TestCallMalformedResponse(t *testing.T) {
	for _, test := range []struct {
		name  string
		value any
	}{
		{"array", []any{1, 2, 3}},
		{"string", "ok"},
		{"null", nil},
	} {
		t.Run(test.name, func(t *testing.T) {
			daemon := newFakeDaemon()
			c := New(testSocket, WithDialer(daemon.dial))
			results := callAsync(c, "daemon.status", nil)

			server := daemon.accept(t)
			readRequest(t, server)
			writeValue(t, server, test.value)

			err := testutil.RequireReceive(t, results, 5*time.Second).err
			var daemonError *daemonerr.Error
			if !errors.As(err, &daemonError) || daemonError.Kind != daemonerr.InternalError {
				t.Fatalf("Call error = %v, want INTERNAL_ERROR", err)
			}
			if daemonError.Message != "invalid response payload" {
				t.Errorf("message = %q", daemonError.Message)
			}
		})
	}
}

func TestCallDaemonNotRunning(t *testing.T) {
	c := New(testutil.SocketPath(t, "absent.sock"))

	err := c.Call(context.Background(), "daemon.status", nil, nil)
	if !daemonerr.Is(err, daemonerr.DaemonNotRunning) {
		t.Fatalf("Call error = %v, want DAEMON_NOT_RUNNING", err)
	}
	if daemonerr.ExitCode(err) != 3 {
		t.Errorf("exit code = %d, want 3", daemonerr.ExitCode(err))
	}
}

func TestCallContextCancelled(t *testing.T) {
	daemon := newFakeDaemon()
	c := New(testSocket, WithDialer(daemon.dial))

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- c.Call(ctx, "daemon.status", nil, nil) }()

	server := daemon.accept(t)
	readRequest(t, server)
	cancel()

	err := testutil.RequireReceive(t, errs, 5*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Call error = %v, want context.Canceled", err)
	}
	testutil.RequireClosed(t, waitClosed(daemon, 1), 5*time.Second, "connection not closed after cancel")
}

func TestInvokeTyped(t *testing.T) {
	daemon := newFakeDaemon()
	c := New(testSocket, WithDialer(daemon.dial))

	type invokeResult struct {
		result command.QuoteSnapshotResult
		err    error
	}
	results := make(chan invokeResult, 1)
	go func() {
		result, err := Invoke(context.Background(), c, command.QuoteSnapshot,
			command.QuoteSnapshotParams{Symbols: []string{"AAPL", "MSFT"}})
		results <- invokeResult{result, err}
	}()

	server := daemon.accept(t)
	request, params := readRequest(t, server)
	if request.Command != "quote.snapshot" {
		t.Errorf("command = %q", request.Command)
	}
	if symbols, _ := params["symbols"].([]any); len(symbols) != 2 {
		t.Errorf("params = %v", params)
	}
	writeValue(t, server, map[string]any{
		"request_id": request.RequestID,
		"ok":         true,
		"data": map[string]any{"quotes": []any{
			map[string]any{"symbol": "AAPL", "bid": 189.5, "ask": 189.52},
		}},
	})

	got := testutil.RequireReceive(t, results, 5*time.Second)
	if got.err != nil {
		t.Fatalf("Invoke: %v", got.err)
	}
	if len(got.result.Quotes) != 1 || got.result.Quotes[0].Symbol != "AAPL" || got.result.Quotes[0].Ask != 189.52 {
		t.Errorf("result = %+v", got.result)
	}
}

func TestInvokeRejectsStreamCommand(t *testing.T) {
	c := New(testSocket)
	_, err := Invoke(context.Background(), c, command.EventsSubscribe, command.EventsSubscribeParams{})
	if !daemonerr.Is(err, daemonerr.InvalidArgs) {
		t.Fatalf("Invoke(events.subscribe) = %v, want INVALID_ARGS", err)
	}
}

func TestCallDecodeMismatch(t *testing.T) {
	daemon := newFakeDaemon()
	c := New(testSocket, WithDialer(daemon.dial))

	errs := make(chan error, 1)
	go func() {
		var result command.OrderPlaceResult
		errs <- c.Call(context.Background(), "order.place", nil, &result)
	}()

	server := daemon.accept(t)
	request, _ := readRequest(t, server)
	writeValue(t, server, map[string]any{"request_id": request.RequestID, "ok": true, "data": "not a struct"})

	err := testutil.RequireReceive(t, errs, 5*time.Second)
	if !daemonerr.Is(err, daemonerr.InternalError) {
		t.Fatalf("Call error = %v, want INTERNAL_ERROR", err)
	}
}

func TestCallRecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}

	c := New(testutil.SocketPath(t, "absent.sock"), WithMetrics(m))
	c.Call(context.Background(), "daemon.status", nil, nil)

	expected := `
# HELP tradedesk_client_calls_total Daemon calls by command and outcome (ok or error kind).
# TYPE tradedesk_client_calls_total counter
tradedesk_client_calls_total{command="daemon.status",outcome="DAEMON_NOT_RUNNING"} 1
`
	if err := promtestutil.GatherAndCompare(registry, strings.NewReader(expected), "tradedesk_client_calls_total"); err != nil {
		t.Error(err)
	}
}
