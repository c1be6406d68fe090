// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/tradedesk/tradedesk/cmd/tradedesk/cli"
	"github.com/tradedesk/tradedesk/lib/client"
	"github.com/tradedesk/tradedesk/lib/command"
)

type quoteParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *App) quoteCommand() *cli.Command {
	var params quoteParams
	return &cli.Command{
		Name:    "quote",
		Summary: "Fetch current quotes",
		Usage:   "tradedesk quote SYMBOL... [flags]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("quote", &params) },
		Examples: []cli.Example{
			{Description: "Top of book for two symbols", Command: "tradedesk quote AAPL MSFT"},
		},
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if err := requireArgs("quote", args, 1, -1, "at least one SYMBOL is required"); err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			symbols := make([]string, len(args))
			for index, symbol := range args {
				symbols[index] = strings.ToUpper(symbol)
			}
			result, err := client.Invoke(ctx, session.client, command.QuoteSnapshot, command.QuoteSnapshotParams{Symbols: symbols})
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(a.Stdout, result.Quotes); done {
				return err
			}

			writer := tabwriter.NewWriter(a.Stdout, 2, 0, 3, ' ', tabwriter.AlignRight)
			fmt.Fprintf(writer, "SYMBOL\tBID\tASK\tLAST\tBID SIZE\tASK SIZE\t\n")
			for _, quote := range result.Quotes {
				fmt.Fprintf(writer, "%s\t%.2f\t%.2f\t%.2f\t%d\t%d\t\n",
					quote.Symbol, quote.Bid, quote.Ask, quote.Last, quote.BidSize, quote.AskSize)
			}
			return writer.Flush()
		},
	}
}
