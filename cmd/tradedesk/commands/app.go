// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/tradedesk/tradedesk/cmd/tradedesk/cli"
	"github.com/tradedesk/tradedesk/lib/client"
	"github.com/tradedesk/tradedesk/lib/config"
)

// App holds the process-level I/O of one CLI invocation.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// jsonOutput is set by commands run with --json so that a failure
	// is reported in the same format.
	jsonOutput bool
}

// New creates an App over the given streams.
func New(stdin io.Reader, stdout, stderr io.Writer) *App {
	return &App{Stdin: stdin, Stdout: stdout, Stderr: stderr}
}

// Main runs the command line args and returns the exit code.
func (a *App) Main(ctx context.Context, args []string) int {
	err := a.Root().Execute(ctx, args)
	if err == nil {
		return 0
	}
	code := cli.ExitCode(err)
	if cli.IsSilent(err) || code == cli.ExitCodeInterrupted {
		return code
	}
	if a.jsonOutput {
		if writeErr := cli.WriteJSON(a.Stdout, cli.NewErrorObject(err)); writeErr == nil {
			return code
		}
	}
	cli.RenderError(a.Stderr, err)
	return code
}

// Root builds the command tree.
func (a *App) Root() *cli.Command {
	return &cli.Command{
		Name: "tradedesk",
		Description: `Tradedesk: command-line client for the tradedeskd trading daemon.

Every command opens one connection to the daemon's Unix socket, sends
one request and prints the response. Failures exit with a code that
identifies the class of error:

  1  internal error        4  timeout or rate limited
  2  invalid arguments     5  risk check failed or trading halted
  3  daemon not running    6  order rejected or duplicate`,
		HelpOutput: a.Stderr,
		Subcommands: []*cli.Command{
			a.statusCommand(),
			a.quoteCommand(),
			a.orderCommand(),
			a.positionsCommand(),
			a.accountCommand(),
			a.riskCommand(),
			a.watchCommand(),
			a.callCommand(),
			a.frameCommand(),
			a.commandsCommand(),
			a.versionCommand(),
		},
		Examples: []cli.Example{
			{Description: "Check that the daemon is up", Command: "tradedesk status"},
			{Description: "Buy 10 shares at market", Command: "tradedesk order place AAPL --side buy --qty 10"},
			{Description: "Follow order and fill events", Command: "tradedesk watch orders fills"},
			{Description: "Send a raw command", Command: `tradedesk call quote.snapshot --params '{"symbols": ["SPY"]}'`},
		},
	}
}

// connectionParams are the flags every daemon-facing command accepts.
type connectionParams struct {
	SocketPath string `flag:"socket" desc:"daemon socket path (default from config)"`
	ConfigPath string `flag:"config" desc:"config file (default $TRADEDESK_CONFIG)"`
	Timeout    string `flag:"timeout" desc:"response timeout such as 5s, 0 waits forever (default from config)"`
	Verbose    bool   `flag:"verbose,v" desc:"log protocol activity to stderr"`
}

// session is the resolved configuration and client of one command.
type session struct {
	config *config.Config
	logger *slog.Logger
	client *client.Client
}

// connect resolves configuration for params and builds a client. No
// connection is opened until the first call.
func (a *App) connect(params connectionParams, options ...client.Option) (*session, error) {
	cfg, err := a.loadConfig(params)
	if err != nil {
		return nil, err
	}

	level, _ := cfg.Level()
	if params.Verbose {
		level = slog.LevelDebug
	}
	logger := cli.NewCommandLogger(a.Stderr, level)

	clientOptions := []client.Option{
		client.WithTimeout(cfg.Timeout()),
		client.WithSource(cfg.Source),
		client.WithLogger(logger),
	}
	return &session{
		config: cfg,
		logger: logger,
		client: client.New(cfg.SocketPath, append(clientOptions, options...)...),
	}, nil
}

func (a *App) loadConfig(params connectionParams) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if params.ConfigPath != "" {
		cfg, err = config.LoadFile(params.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if params.SocketPath != "" {
		cfg.SocketPath = params.SocketPath
	}
	if params.Timeout != "" {
		timeout, err := time.ParseDuration(params.Timeout)
		if err != nil || timeout < 0 {
			return nil, cli.Usagef("--timeout %q: want a non-negative duration such as 5s", params.Timeout)
		}
		cfg.TimeoutMS = int(timeout.Milliseconds())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// wantJSON records the output mode before a command's first call.
func (a *App) wantJSON(output cli.JSONOutput) {
	a.jsonOutput = output.OutputJSON
}

// requireArgs returns a usage error unless args has between minimum and
// maximum elements. A negative maximum means unbounded.
func requireArgs(command string, args []string, minimum, maximum int, usage string) error {
	if len(args) < minimum || (maximum >= 0 && len(args) > maximum) {
		return cli.Usagef("%s: %s", command, usage)
	}
	return nil
}
