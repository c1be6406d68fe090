// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/tradedesk/tradedesk/cmd/tradedesk/cli"
	"github.com/tradedesk/tradedesk/lib/client"
	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/version"
)

type statusParams struct {
	connectionParams
	cli.JSONOutput
}

func (a *App) statusCommand() *cli.Command {
	var params statusParams
	return &cli.Command{
		Name:    "status",
		Summary: "Show daemon and gateway status",
		Description: `Ask the daemon for its health: version, uptime, whether the broker
gateway is connected and whether trading is halted.

Exits 3 when the daemon is not running, which makes this the check to
run before anything else.`,
		Usage: "tradedesk status [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("status", &params) },
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if err := requireArgs("status", args, 0, 0, "takes no arguments"); err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			status, err := client.Invoke(ctx, session.client, command.DaemonStatus, command.Empty{})
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(a.Stdout, status); done {
				return err
			}

			writer := tabwriter.NewWriter(a.Stdout, 2, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "daemon:\t%s (pid %d, up %s)\n",
				status.Version, status.PID, time.Duration(status.UptimeSeconds)*time.Second)
			fmt.Fprintf(writer, "socket:\t%s\n", session.config.SocketPath)
			gateway := "connected"
			if !status.IBConnected {
				gateway = "DISCONNECTED"
			}
			fmt.Fprintf(writer, "gateway:\t%s\n", gateway)
			if status.Account != "" {
				fmt.Fprintf(writer, "account:\t%s\n", status.Account)
			}
			if status.MarketDataMode != "" {
				fmt.Fprintf(writer, "market data:\t%s\n", status.MarketDataMode)
			}
			trading := "enabled"
			if status.TradingHalted {
				trading = "HALTED"
			}
			fmt.Fprintf(writer, "trading:\t%s\n", trading)
			fmt.Fprintf(writer, "subscribers:\t%d\n", status.Subscribers)
			return writer.Flush()
		},
	}
}

type commandsParams struct {
	cli.JSONOutput
}

// commandEntry is the JSON shape of one registry entry.
type commandEntry struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Stream  bool   `json:"stream"`
	Params  string `json:"params"`
	Result  string `json:"result"`
}

func (a *App) commandsCommand() *cli.Command {
	var params commandsParams
	return &cli.Command{
		Name:    "commands",
		Summary: "List the daemon commands this client knows",
		Description: `List every daemon command in the client's registry with its params
and result types. Any of them can be sent with 'tradedesk call'.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("commands", &params) },
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			infos := command.All()
			entries := make([]commandEntry, len(infos))
			for index, info := range infos {
				entries[index] = commandEntry{
					Name:    info.Name,
					Summary: info.Summary,
					Stream:  info.Stream,
					Params:  info.Params.String(),
					Result:  info.Result.String(),
				}
			}
			if done, err := params.EmitJSON(a.Stdout, entries); done {
				return err
			}

			writer := tabwriter.NewWriter(a.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "COMMAND\tKIND\tSUMMARY\n")
			for _, entry := range entries {
				kind := "call"
				if entry.Stream {
					kind = "stream"
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\n", entry.Name, kind, entry.Summary)
			}
			return writer.Flush()
		},
	}
}

type versionParams struct {
	cli.JSONOutput
}

func (a *App) versionCommand() *cli.Command {
	var params versionParams
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("version", &params) },
		Run: func(ctx context.Context, args []string) error {
			if done, err := params.EmitJSON(a.Stdout, version.Current()); done {
				return err
			}
			_, err := fmt.Fprintf(a.Stdout, "tradedesk %s\n", version.Full())
			return err
		},
	}
}
