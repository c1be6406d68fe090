// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

func TestRenderDaemonError(t *testing.T) {
	err := daemonerr.New(daemonerr.RiskHalted, "Trading is halted").
		WithDetail("reason", "manual").
		WithDetail("halted_at", "2026-03-02T14:00:00Z").
		WithSuggestion("Run 'tradedesk risk resume'.")

	var output bytes.Buffer
	RenderError(&output, err)

	want := "error: RISK_HALTED: Trading is halted\n" +
		"  halted_at: 2026-03-02T14:00:00Z\n" +
		"  reason: manual\n" +
		"hint: Run 'tradedesk risk resume'.\n"
	if output.String() != want {
		t.Errorf("rendered:\n%q\nwant:\n%q", output.String(), want)
	}
}

func TestRenderPlainError(t *testing.T) {
	var output bytes.Buffer
	RenderError(&output, errors.New("reading params file: no such file"))
	if output.String() != "error: reading params file: no such file\n" {
		t.Errorf("rendered %q", output.String())
	}
}

func TestRenderUsesDefaultHint(t *testing.T) {
	var output bytes.Buffer
	RenderError(&output, daemonerr.New(daemonerr.IBDisconnected, "gateway down"))
	if !strings.Contains(output.String(), "hint: "+daemonerr.IBDisconnected.DefaultSuggestion()) {
		t.Errorf("rendered %q, want default hint", output.String())
	}
}

func TestErrorObjectJSON(t *testing.T) {
	object := NewErrorObject(daemonerr.New(daemonerr.RateLimited, "slow down").WithDetail("retry_after_ms", 500))

	var output bytes.Buffer
	if err := WriteJSON(&output, object); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(output.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["code"] != "RATE_LIMITED" || decoded["exit_code"] != float64(4) {
		t.Errorf("decoded = %v", decoded)
	}

	plain := NewErrorObject(errors.New("boom"))
	if plain.Code != "INTERNAL_ERROR" || plain.ExitCode != 1 || plain.Details == nil {
		t.Errorf("plain = %+v", plain)
	}
}

func TestEmitJSONNormalizesNilSlice(t *testing.T) {
	output := JSONOutput{OutputJSON: true}
	var buffer bytes.Buffer
	var positions []string
	done, err := output.EmitJSON(&buffer, positions)
	if !done || err != nil {
		t.Fatalf("EmitJSON = %v, %v", done, err)
	}
	if strings.TrimSpace(buffer.String()) != "[]" {
		t.Errorf("output = %q, want []", buffer.String())
	}

	done, _ = (&JSONOutput{}).EmitJSON(&buffer, positions)
	if done {
		t.Error("EmitJSON without --json reported done")
	}
}
