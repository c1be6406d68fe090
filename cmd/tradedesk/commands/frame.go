// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/tradedesk/tradedesk/cmd/tradedesk/cli"
	"github.com/tradedesk/tradedesk/lib/codec"
	"github.com/tradedesk/tradedesk/lib/frame"
)

func (a *App) frameCommand() *cli.Command {
	return &cli.Command{
		Name:    "frame",
		Summary: "Decode and build length-prefixed protocol frames",
		Description: `Work with the daemon's wire format offline: each message is a 4-byte
big-endian length followed by that many bytes of CBOR.`,
		Subcommands: []*cli.Command{
			a.frameDecodeCommand(),
			a.frameEncodeCommand(),
		},
	}
}

type frameDecodeParams struct {
	cli.JSONOutput
	Hex bool `flag:"hex,x" desc:"input is hex text (whitespace ignored)"`
}

// decodedFrame is the JSON shape of one decoded frame.
type decodedFrame struct {
	Index      int    `json:"index"`
	Offset     int    `json:"offset"`
	Length     int    `json:"length"`
	Diagnostic string `json:"diagnostic,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (a *App) frameDecodeCommand() *cli.Command {
	var params frameDecodeParams
	return &cli.Command{
		Name:    "decode",
		Summary: "Split a captured byte stream into frames",
		Description: `Read a captured byte stream (a file, or stdin) and print every frame's
payload in CBOR diagnostic notation (RFC 8949 section 8), which keeps
the distinction between integers, floats, text and byte strings that
JSON output would lose.

Exits 1 if the stream has an oversized length prefix or ends inside a
frame, after printing the frames before that point.`,
		Usage: "tradedesk frame decode [FILE] [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("decode", &params) },
		Examples: []cli.Example{
			{Description: "Decode a capture", Command: "tradedesk frame decode session.bin"},
			{Description: "Decode hex from a log line", Command: "echo '00000005 a1 62 6f 6b f5' | tradedesk frame decode --hex"},
		},
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if err := requireArgs("frame decode", args, 0, 1, "takes at most one FILE"); err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			data, err := a.readInput(path)
			if err != nil {
				return err
			}
			if params.Hex {
				if data, err = decodeHexInput(data); err != nil {
					return err
				}
			}

			frames, remainder, streamErr := frame.DecodeStream(data)
			decoded := make([]decodedFrame, len(frames))
			offset := 0
			for index, payload := range frames {
				entry := decodedFrame{Index: index, Offset: offset, Length: len(payload)}
				if notation, err := codec.Diagnose(payload); err != nil {
					entry.Error = err.Error()
				} else {
					entry.Diagnostic = notation
				}
				decoded[index] = entry
				offset += frame.HeaderLength + len(payload)
			}

			if done, err := params.EmitJSON(a.Stdout, decoded); !done {
				for _, entry := range decoded {
					if entry.Error != "" {
						fmt.Fprintf(a.Stdout, "#%d @%d (%d bytes): invalid CBOR: %s\n", entry.Index, entry.Offset, entry.Length, entry.Error)
						continue
					}
					fmt.Fprintf(a.Stdout, "#%d @%d (%d bytes): %s\n", entry.Index, entry.Offset, entry.Length, entry.Diagnostic)
				}
			} else if err != nil {
				return err
			}

			if streamErr != nil {
				return fmt.Errorf("frame at byte %d: %w", offset, streamErr)
			}
			if len(remainder) > 0 {
				return fmt.Errorf("stream ends inside a frame: %d trailing bytes at byte %d", len(remainder), offset)
			}
			return nil
		},
	}
}

type frameEncodeParams struct {
	Hex bool `flag:"hex,x" desc:"write hex text instead of binary"`
}

func (a *App) frameEncodeCommand() *cli.Command {
	var params frameEncodeParams
	return &cli.Command{
		Name:    "encode",
		Summary: "Encode a JSON object as one CBOR frame",
		Description: `Read a JSON (or JSONC) object from a file or stdin, encode it as
deterministic CBOR and write it with its length prefix. Integral
numbers are encoded as CBOR integers. Useful for hand-crafting requests
to replay against a daemon socket.`,
		Usage: "tradedesk frame encode [FILE] [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("encode", &params) },
		Examples: []cli.Example{
			{
				Description: "Build a status request and inspect it",
				Command:     `echo '{"request_id": "r1", "command": "daemon.status", "params": {}, "stream": false, "source": "cli"}' | tradedesk frame encode | tradedesk frame decode`,
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if err := requireArgs("frame encode", args, 0, 1, "takes at most one FILE"); err != nil {
				return err
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			text, err := a.readInput(path)
			if err != nil {
				return err
			}
			object, err := parseJSONObject(text)
			if err != nil {
				return cli.Usagef("frame encode: input must be a JSON object: %v", err)
			}
			payload, err := codec.Marshal(object)
			if err != nil {
				return fmt.Errorf("encoding CBOR: %w", err)
			}
			framed, err := frame.Encode(payload)
			if err != nil {
				return err
			}
			if params.Hex {
				_, err = fmt.Fprintf(a.Stdout, "%x\n", framed)
				return err
			}
			_, err = a.Stdout.Write(framed)
			return err
		},
	}
}
