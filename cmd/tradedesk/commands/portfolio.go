// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/tradedesk/tradedesk/cmd/tradedesk/cli"
	"github.com/tradedesk/tradedesk/lib/client"
	"github.com/tradedesk/tradedesk/lib/command"
)

type portfolioParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *App) positionsCommand() *cli.Command {
	var params portfolioParams
	return &cli.Command{
		Name:    "positions",
		Summary: "List open positions",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("positions", &params) },
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if err := requireArgs("positions", args, 0, 0, "takes no arguments"); err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			result, err := client.Invoke(ctx, session.client, command.PositionList, command.Empty{})
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(a.Stdout, result.Positions); done {
				return err
			}
			if len(result.Positions) == 0 {
				_, err := fmt.Fprintln(a.Stdout, "no open positions")
				return err
			}

			writer := tabwriter.NewWriter(a.Stdout, 2, 0, 3, ' ', tabwriter.AlignRight)
			fmt.Fprintf(writer, "SYMBOL\tQTY\tAVG COST\tMARKET VALUE\tUNREALIZED\t\n")
			for _, position := range result.Positions {
				fmt.Fprintf(writer, "%s\t%d\t%.2f\t%.2f\t%+.2f\t\n",
					position.Symbol, position.Qty, position.AverageCost, position.MarketValue, position.UnrealizedPnL)
			}
			return writer.Flush()
		},
	}
}

func (a *App) accountCommand() *cli.Command {
	var params portfolioParams
	return &cli.Command{
		Name:    "account",
		Summary: "Show account balances",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("account", &params) },
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if err := requireArgs("account", args, 0, 0, "takes no arguments"); err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			summary, err := client.Invoke(ctx, session.client, command.AccountSummary, command.Empty{})
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(a.Stdout, summary); done {
				return err
			}

			writer := tabwriter.NewWriter(a.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "account:\t%s (%s)\n", summary.Account, summary.Currency)
			fmt.Fprintf(writer, "net liquidation:\t%.2f\n", summary.NetLiquidity)
			fmt.Fprintf(writer, "cash:\t%.2f\n", summary.Cash)
			fmt.Fprintf(writer, "buying power:\t%.2f\n", summary.BuyingPower)
			fmt.Fprintf(writer, "realized P&L:\t%+.2f\n", summary.RealizedPnL)
			fmt.Fprintf(writer, "unrealized P&L:\t%+.2f\n", summary.UnrealizedPnL)
			return writer.Flush()
		},
	}
}
