// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

type allTypesParams struct {
	JSONOutput
	Symbol   string        `flag:"symbol,s" desc:"ticker"`
	Confirm  bool          `flag:"yes,y" desc:"skip confirmation"`
	Count    int           `flag:"count" default:"3" desc:"count"`
	Qty      int64         `flag:"qty" default:"100" desc:"quantity"`
	Limit    float64       `flag:"limit" default:"189.5" desc:"limit price"`
	Timeout  time.Duration `flag:"timeout" default:"10s" desc:"timeout"`
	Topics   []string      `flag:"topic" default:"orders,fills" desc:"topics"`
	Untagged string
}

func TestBindFlagsDefaults(t *testing.T) {
	var params allTypesParams
	flagSet := FlagsFromParams("test", &params)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if params.Count != 3 || params.Qty != 100 || params.Limit != 189.5 || params.Timeout != 10*time.Second {
		t.Errorf("defaults = %+v", params)
	}
	if !slices.Equal(params.Topics, []string{"orders", "fills"}) {
		t.Errorf("topics default = %v", params.Topics)
	}
	if flagSet.Lookup("json") == nil {
		t.Error("embedded JSONOutput did not contribute --json")
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlagsParse(t *testing.T) {
	var params allTypesParams
	flagSet := FlagsFromParams("test", &params)
	err := flagSet.Parse([]string{"-s", "AAPL", "-y", "--qty=5", "--limit", "1.25", "--timeout", "250ms", "--topic", "risk", "--json"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if params.Symbol != "AAPL" || !params.Confirm || params.Qty != 5 || params.Limit != 1.25 {
		t.Errorf("params = %+v", params)
	}
	if params.Timeout != 250*time.Millisecond {
		t.Errorf("timeout = %v", params.Timeout)
	}
	if !slices.Equal(params.Topics, []string{"risk"}) {
		t.Errorf("topics = %v", params.Topics)
	}
	if !params.OutputJSON {
		t.Error("--json not set")
	}
}

func TestBindFlagsRejectsNonStruct(t *testing.T) {
	var value string
	if err := BindFlags(&value, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("expected error for non-struct params")
	}
}

func TestBindFlagsRejectsUnsupportedType(t *testing.T) {
	var params struct {
		Weights map[string]int `flag:"weights"`
	}
	err := BindFlags(&params, pflag.NewFlagSet("x", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Errorf("error = %v, want unsupported type", err)
	}
}

func TestBindFlagsBadDefault(t *testing.T) {
	var params struct {
		Qty int64 `flag:"qty" default:"lots"`
	}
	err := BindFlags(&params, pflag.NewFlagSet("x", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "--qty") {
		t.Errorf("error = %v, want default parse error naming --qty", err)
	}
}
