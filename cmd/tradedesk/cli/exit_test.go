// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"usage", Usagef("bad flag"), 2},
		{"silent", &ExitError{Code: 7}, 7},
		{"invalid symbol", daemonerr.New(daemonerr.InvalidSymbol, "ZZZZ"), 2},
		{"not running", daemonerr.NotRunning("/x.sock", "gone", nil), 3},
		{"timeout", daemonerr.TimedOut(time.Second), 4},
		{"risk", fmt.Errorf("placing: %w", daemonerr.New(daemonerr.RiskCheckFailed, "too big")), 5},
		{"duplicate", daemonerr.New(daemonerr.DuplicateOrder, "dup"), 6},
		{"internal", daemonerr.Internal("bad payload", nil), 1},
		{"cancelled", fmt.Errorf("watch: %w", context.Canceled), 130},
	}
	for _, test := range tests {
		if got := ExitCode(test.err); got != test.want {
			t.Errorf("%s: ExitCode = %d, want %d", test.name, got, test.want)
		}
	}
}

func TestIsSilent(t *testing.T) {
	if !IsSilent(fmt.Errorf("wrapped: %w", &ExitError{Code: 1})) {
		t.Error("wrapped ExitError not silent")
	}
	if IsSilent(errors.New("loud")) {
		t.Error("plain error reported silent")
	}
}
