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

func (a *App) orderCommand() *cli.Command {
	return &cli.Command{
		Name:    "order",
		Summary: "Place, cancel and list orders",
		Subcommands: []*cli.Command{
			a.orderPlaceCommand(),
			a.orderCancelCommand(),
			a.orderListCommand(),
		},
	}
}

// orderFlags are the order description shared by "order place" and
// "risk check".
type orderFlags struct {
	Side          string  `flag:"side" desc:"buy or sell"`
	Qty           int64   `flag:"qty,q" desc:"quantity in shares"`
	OrderType     string  `flag:"type" default:"market" desc:"market or limit"`
	LimitPrice    float64 `flag:"limit" desc:"limit price (implies --type limit)"`
	TimeInForce   string  `flag:"tif" default:"DAY" desc:"time in force: DAY, GTC or IOC"`
	ClientOrderID string  `flag:"client-order-id" desc:"idempotency key; the daemon rejects a reused id with DUPLICATE_ORDER"`
}

// orderParams converts the flags and SYMBOL argument into wire params.
// Only the shape of the command line is checked here; the daemon
// validates values.
func (f orderFlags) orderParams(commandName string, args []string) (command.OrderPlaceParams, error) {
	if err := requireArgs(commandName, args, 1, 1, "exactly one SYMBOL is required"); err != nil {
		return command.OrderPlaceParams{}, err
	}
	if f.Side == "" {
		return command.OrderPlaceParams{}, cli.Usagef("%s: --side is required", commandName)
	}
	if f.Qty == 0 {
		return command.OrderPlaceParams{}, cli.Usagef("%s: --qty is required", commandName)
	}
	orderType := f.OrderType
	if f.LimitPrice != 0 {
		orderType = "limit"
	}
	return command.OrderPlaceParams{
		Symbol:        strings.ToUpper(args[0]),
		Side:          strings.ToLower(f.Side),
		Qty:           f.Qty,
		OrderType:     orderType,
		LimitPrice:    f.LimitPrice,
		TimeInForce:   strings.ToUpper(f.TimeInForce),
		ClientOrderID: f.ClientOrderID,
	}, nil
}

type orderPlaceParams struct {
	connectionParams
	cli.JSONOutput
	orderFlags
}

func (a *App) orderPlaceCommand() *cli.Command {
	var params orderPlaceParams
	return &cli.Command{
		Name:    "place",
		Summary: "Place an order",
		Description: `Submit an order. The daemon runs its risk checks first: a failed check
exits 5 and a halted desk exits 5 with RISK_HALTED. A broker rejection
or a reused --client-order-id exits 6.`,
		Usage: "tradedesk order place SYMBOL --side buy|sell --qty N [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("place", &params) },
		Examples: []cli.Example{
			{Description: "Market buy", Command: "tradedesk order place AAPL --side buy --qty 10"},
			{Description: "Resting limit sell, good till cancelled", Command: "tradedesk order place MSFT --side sell --qty 5 --limit 420 --tif GTC"},
		},
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			orderParams, err := params.orderParams("order place", args)
			if err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			result, err := client.Invoke(ctx, session.client, command.OrderPlace, orderParams)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(a.Stdout, result); done {
				return err
			}
			_, err = fmt.Fprintf(a.Stdout, "%s %s %d %s: %s (%s)\n",
				orderParams.Side, orderParams.Symbol, orderParams.Qty, orderParams.OrderType, result.OrderID, result.Status)
			return err
		},
	}
}

type orderCancelParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *App) orderCancelCommand() *cli.Command {
	var params orderCancelParams
	return &cli.Command{
		Name:    "cancel",
		Summary: "Cancel a working order",
		Usage:   "tradedesk order cancel ORDER_ID [flags]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("cancel", &params) },
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if err := requireArgs("order cancel", args, 1, 1, "exactly one ORDER_ID is required"); err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			result, err := client.Invoke(ctx, session.client, command.OrderCancel, command.OrderCancelParams{OrderID: args[0]})
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(a.Stdout, result); done {
				return err
			}
			_, err = fmt.Fprintf(a.Stdout, "%s: %s\n", result.OrderID, result.Status)
			return err
		},
	}
}

type orderListParams struct {
	connectionParams
	cli.JSONOutput
	Status string `flag:"status" desc:"only orders with this status (submitted, filled, cancelled)"`
}

func (a *App) orderListCommand() *cli.Command {
	var params orderListParams
	return &cli.Command{
		Name:    "list",
		Summary: "List orders",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if err := requireArgs("order list", args, 0, 0, "takes no arguments"); err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			result, err := client.Invoke(ctx, session.client, command.OrderList, command.OrderListParams{Status: params.Status})
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(a.Stdout, result.Orders); done {
				return err
			}
			if len(result.Orders) == 0 {
				_, err := fmt.Fprintln(a.Stdout, "no orders")
				return err
			}

			writer := tabwriter.NewWriter(a.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "ORDER\tSYMBOL\tSIDE\tQTY\tFILLED\tTYPE\tLIMIT\tSTATUS\n")
			for _, order := range result.Orders {
				limit := "-"
				if order.LimitPrice != 0 {
					limit = fmt.Sprintf("%.2f", order.LimitPrice)
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
					order.OrderID, order.Symbol, order.Side, order.Qty, order.FilledQty, order.OrderType, limit, order.Status)
			}
			return writer.Flush()
		},
	}
}
