// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tradedesk/tradedesk/cmd/tradedesk/cli"
	"github.com/tradedesk/tradedesk/lib/client"
	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

func (a *App) riskCommand() *cli.Command {
	return &cli.Command{
		Name:    "risk",
		Summary: "Dry-run orders and halt or resume trading",
		Subcommands: []*cli.Command{
			a.riskCheckCommand(),
			a.riskHaltCommand(),
			a.riskResumeCommand(),
		},
	}
}

type riskCheckParams struct {
	connectionParams
	cli.JSONOutput
	orderFlags
}

func (a *App) riskCheckCommand() *cli.Command {
	var params riskCheckParams
	return &cli.Command{
		Name:    "check",
		Summary: "Dry-run an order through risk checks",
		Description: `Evaluate an order against the daemon's risk rules without placing it.
Takes the same flags as 'tradedesk order place'. Exits 5 when the order
would be refused.`,
		Usage: "tradedesk risk check SYMBOL --side buy|sell --qty N [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("check", &params) },
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			orderParams, err := params.orderParams("risk check", args)
			if err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			result, err := client.Invoke(ctx, session.client, command.RiskCheck, orderParams)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(a.Stdout, result); done {
				if err == nil && !result.Allowed {
					return &cli.ExitError{Code: daemonerr.RiskCheckFailed.ExitCode()}
				}
				return err
			}
			if result.Allowed {
				_, err := fmt.Fprintln(a.Stdout, "allowed")
				return err
			}
			fmt.Fprintln(a.Stdout, "refused:")
			for _, reason := range result.Reasons {
				fmt.Fprintf(a.Stdout, "  %s\n", reason)
			}
			return &cli.ExitError{Code: daemonerr.RiskCheckFailed.ExitCode()}
		},
	}
}

type riskHaltParams struct {
	connectionParams
	cli.JSONOutput
	Reason string `flag:"reason" desc:"recorded with the halt and shown in RISK_HALTED errors"`
}

func (a *App) riskHaltCommand() *cli.Command {
	var params riskHaltParams
	return &cli.Command{
		Name:    "halt",
		Summary: "Halt trading",
		Usage:   "tradedesk risk halt [REASON...] [flags]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("halt", &params) },
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			reason := params.Reason
			if reason == "" {
				reason = strings.Join(args, " ")
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			state, err := client.Invoke(ctx, session.client, command.RiskHalt, command.RiskHaltParams{Reason: reason})
			if err != nil {
				return err
			}
			return a.printRiskState(params.JSONOutput, state)
		},
	}
}

type riskResumeParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *App) riskResumeCommand() *cli.Command {
	var params riskResumeParams
	return &cli.Command{
		Name:    "resume",
		Summary: "Resume trading",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("resume", &params) },
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if err := requireArgs("risk resume", args, 0, 0, "takes no arguments"); err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			state, err := client.Invoke(ctx, session.client, command.RiskResume, command.Empty{})
			if err != nil {
				return err
			}
			return a.printRiskState(params.JSONOutput, state)
		},
	}
}

func (a *App) printRiskState(output cli.JSONOutput, state command.RiskStateResult) error {
	if done, err := output.EmitJSON(a.Stdout, state); done {
		return err
	}
	if !state.Halted {
		_, err := fmt.Fprintln(a.Stdout, "trading enabled")
		return err
	}
	if state.Reason == "" {
		_, err := fmt.Fprintln(a.Stdout, "trading halted")
		return err
	}
	_, err := fmt.Fprintf(a.Stdout, "trading halted: %s\n", state.Reason)
	return err
}
