// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/tradedesk/tradedesk/cmd/tradedesk/cli"
	"github.com/tradedesk/tradedesk/lib/codec"
	"github.com/tradedesk/tradedesk/lib/command"
)

type callParams struct {
	connectionParams
	cli.JSONOutput
	Params     string `flag:"params,p" desc:"params as a JSON object"`
	ParamsFile string `flag:"params-file,f" desc:"read params from a JSON or JSONC file (- for stdin)"`
	Compact    bool   `flag:"compact,c" desc:"print the result on one line"`
}

func (a *App) callCommand() *cli.Command {
	var params callParams
	return &cli.Command{
		Name:    "call",
		Summary: "Send a raw command to the daemon",
		Description: `Send any request/response command and print the response data as
JSON. Params are a JSON object given inline with --params or read from a
file with --params-file; the file may contain comments and trailing
commas. Integral numbers are sent as integers.

The command name is not checked against the client's registry, so this
also reaches commands newer than the client. Use 'tradedesk watch' for
subscriptions. With --json, errors are reported as JSON as well.`,
		Usage: "tradedesk call COMMAND [--params JSON | --params-file FILE] [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("call", &params) },
		Examples: []cli.Example{
			{Description: "Inline params", Command: `tradedesk call quote.snapshot --params '{"symbols": ["AAPL"]}'`},
			{Description: "Params from a commented file", Command: "tradedesk call order.place --params-file order.jsonc"},
		},
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if err := requireArgs("call", args, 1, 1, "exactly one COMMAND is required"); err != nil {
				return err
			}
			commandName := args[0]
			if err := command.ValidateName(commandName); err != nil {
				return cli.Usagef("call: %v", err)
			}
			if info, ok := command.Lookup(commandName); ok && info.Stream {
				return cli.Usagef("call: %s opens a subscription; use 'tradedesk watch'", commandName)
			}

			callArguments, err := a.callArguments(params)
			if err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams)
			if err != nil {
				return err
			}
			data, err := session.client.CallRaw(ctx, commandName, callArguments)
			if err != nil {
				return err
			}

			var result any
			if len(data) > 0 {
				if err := codec.Unmarshal(data, &result); err != nil {
					return fmt.Errorf("decoding %s response: %w", commandName, err)
				}
			}
			encoder := json.NewEncoder(a.Stdout)
			if !params.Compact {
				encoder.SetIndent("", "  ")
			}
			return encoder.Encode(result)
		},
	}
}

func (a *App) callArguments(params callParams) (map[string]any, error) {
	if params.Params != "" && params.ParamsFile != "" {
		return nil, cli.Usagef("call: --params and --params-file are mutually exclusive")
	}
	var text []byte
	switch {
	case params.Params != "":
		text = []byte(params.Params)
	case params.ParamsFile != "":
		var err error
		if text, err = a.readInput(params.ParamsFile); err != nil {
			return nil, err
		}
	default:
		return map[string]any{}, nil
	}
	object, err := parseJSONObject(text)
	if err != nil {
		return nil, cli.Usagef("call: params must be a JSON object: %v", err)
	}
	return object, nil
}
