// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	root := &Command{
		Name: "tradedesk",
		Subcommands: []*Command{
			{Name: "status", Run: func(context.Context, []string) error { called = "status"; return nil }},
			{Name: "positions", Run: func(context.Context, []string) error { called = "positions"; return nil }},
		},
	}

	if err := root.Execute(context.Background(), []string{"positions"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "positions" {
		t.Errorf("dispatched to %q, want %q", called, "positions")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var receivedArgs []string
	var fullName string
	var place *Command
	place = &Command{
		Name: "place",
		Run: func(ctx context.Context, args []string) error {
			receivedArgs = args
			fullName = place.FullName()
			return nil
		},
	}
	root := &Command{
		Name:        "tradedesk",
		Subcommands: []*Command{{Name: "order", Subcommands: []*Command{place}}},
	}

	if err := root.Execute(context.Background(), []string{"order", "place", "AAPL"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "AAPL" {
		t.Errorf("args = %v, want [AAPL]", receivedArgs)
	}
	if fullName != "tradedesk order place" {
		t.Errorf("FullName() = %q", fullName)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var params struct {
		Qty  int64  `flag:"qty,q" desc:"quantity"`
		Side string `flag:"side" default:"buy" desc:"order side"`
	}
	var receivedArgs []string
	command := &Command{
		Name:  "place",
		Flags: func() *pflag.FlagSet { return FlagsFromParams("place", &params) },
		Run: func(ctx context.Context, args []string) error {
			receivedArgs = args
			return nil
		},
	}

	if err := command.Execute(context.Background(), []string{"-q", "25", "MSFT"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.Qty != 25 || params.Side != "buy" {
		t.Errorf("params = %+v", params)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "MSFT" {
		t.Errorf("args = %v", receivedArgs)
	}
}

func TestCommand_Execute_UnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name: "tradedesk",
		Subcommands: []*Command{
			{Name: "positions", Run: func(context.Context, []string) error { return nil }},
			{Name: "status", Run: func(context.Context, []string) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"postions"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "positions"`) {
		t.Errorf("error = %q, want suggestion", err)
	}
	if ExitCode(err) != ExitCodeUsage {
		t.Errorf("ExitCode = %d, want %d", ExitCode(err), ExitCodeUsage)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	var params struct {
		Timeout string `flag:"timeout" desc:"response timeout"`
	}
	command := &Command{
		Name:  "status",
		Flags: func() *pflag.FlagSet { return FlagsFromParams("status", &params) },
		Run:   func(context.Context, []string) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--timeuot", "5s"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --timeout?") {
		t.Errorf("error = %q, want flag suggestion", err)
	}
}

func TestCommand_Execute_GroupWithoutSubcommandPrintsHelp(t *testing.T) {
	var help bytes.Buffer
	root := &Command{
		Name:       "risk",
		HelpOutput: &help,
		Subcommands: []*Command{
			{Name: "halt", Summary: "Halt trading"},
			{Name: "resume", Summary: "Resume trading"},
		},
	}

	err := root.Execute(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %v, want subcommand required", err)
	}
	for _, want := range []string{"Commands:", "halt", "Resume trading"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help missing %q:\n%s", want, help.String())
		}
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	var help bytes.Buffer
	ran := false
	var params struct {
		JSONOutput
	}
	command := &Command{
		Name:        "positions",
		Description: "List open positions.",
		HelpOutput:  &help,
		Flags:       func() *pflag.FlagSet { return FlagsFromParams("positions", &params) },
		Examples:    []Example{{Description: "As JSON", Command: "tradedesk positions --json"}},
		Run:         func(context.Context, []string) error { ran = true; return nil },
	}

	if err := command.Execute(context.Background(), []string{"--help"}); err != nil {
		t.Fatalf("Execute(--help) error: %v", err)
	}
	if ran {
		t.Error("Run called for --help")
	}
	for _, want := range []string{"List open positions.", "--json", "# As JSON"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help missing %q:\n%s", want, help.String())
		}
	}
}

func TestCommand_Execute_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "value")
	var got any
	root := &Command{
		Name: "tradedesk",
		Subcommands: []*Command{{
			Name: "watch",
			Run:  func(ctx context.Context, args []string) error { got = ctx.Value(key{}); return nil },
		}},
	}
	if err := root.Execute(ctx, []string{"watch"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got != "value" {
		t.Errorf("context value = %v", got)
	}
}
