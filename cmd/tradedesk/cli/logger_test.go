// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestCommandLoggerJSONWhenNotTerminal(t *testing.T) {
	var output bytes.Buffer
	logger := NewCommandLogger(&output, slog.LevelDebug)
	logger.Debug("dialing daemon", "socket_path", "/tmp/tradedesk/tradedeskd.sock")

	var record map[string]any
	if err := json.Unmarshal(output.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, output.String())
	}
	if record["msg"] != "dialing daemon" || record["socket_path"] != "/tmp/tradedesk/tradedeskd.sock" {
		t.Errorf("record = %v", record)
	}
}

func TestCommandLoggerLevel(t *testing.T) {
	var output bytes.Buffer
	logger := NewCommandLogger(&output, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(output.String(), "hidden") || !strings.Contains(output.String(), "shown") {
		t.Errorf("output = %q", output.String())
	}
}

func TestTextLoggerOnTerminal(t *testing.T) {
	var output bytes.Buffer
	newLogger(&output, true, slog.LevelInfo).Info("connected", "symbols", 3)
	if !strings.Contains(output.String(), "msg=connected symbols=3") {
		t.Errorf("output = %q", output.String())
	}
}
