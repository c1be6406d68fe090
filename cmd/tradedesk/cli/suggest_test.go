// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"quote", "", 5},
		{"", "risk", 4},
		{"order", "order", 0},
		{"ordre", "order", 2},
		{"positons", "positions", 1},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "quote"}, {Name: "order"}, {Name: "watch"}}
	if got := suggestCommand("qoute", commands); got != "quote" {
		t.Errorf("suggestCommand(qoute) = %q", got)
	}
	if got := suggestCommand("completely-different", commands); got != "" {
		t.Errorf("suggestCommand(far) = %q, want none", got)
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("x", pflag.ContinueOnError)
	flagSet.String("socket", "", "")
	flagSet.BoolP("json", "j", false, "")

	if got := suggestFlag([]string{"-j", "--sokcet=/tmp/d.sock"}, flagSet); got != "--socket" {
		t.Errorf("suggestFlag = %q, want --socket", got)
	}
	if got := suggestFlag([]string{"--", "--sokcet"}, flagSet); got != "" {
		t.Errorf("suggestFlag after -- = %q, want none", got)
	}
}
