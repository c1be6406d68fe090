// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Tradedesk-mockd is an in-memory stand-in for tradedeskd. It listens
// on the same socket path the CLI dials by default and serves every
// command of the protocol from a paper book, so the CLI and client
// library can be exercised without a broker gateway.
//
//	tradedesk-mockd --tick 500ms &
//	tradedesk status
//	tradedesk order place AAPL --side buy --qty 10
//	tradedesk watch orders fills
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/tradedesk/tradedesk/internal/mockd"
	"github.com/tradedesk/tradedesk/lib/config"
	"github.com/tradedesk/tradedesk/lib/process"
	"github.com/tradedesk/tradedesk/lib/service"
	"github.com/tradedesk/tradedesk/lib/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		process.Fatal(err)
	}
}

func run(args []string) error {
	var (
		showVersion        bool
		configPath         string
		socketPath         string
		account            string
		cash               float64
		maxOrderQty        int64
		maxNotional        float64
		maxOrdersPerSecond int
		tick               time.Duration
		logLevel           string
	)
	flagSet := pflag.NewFlagSet("tradedesk-mockd", pflag.ContinueOnError)
	flagSet.BoolVar(&showVersion, "version", false, "print version information and exit")
	flagSet.StringVar(&configPath, "config", "", "config file (default $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&socketPath, "socket", "", "socket path (default from config)")
	flagSet.StringVar(&account, "account", "DU0000000", "account identifier to report")
	flagSet.Float64Var(&cash, "cash", 100000, "starting cash balance")
	flagSet.Int64Var(&maxOrderQty, "max-order-qty", 10000, "largest order accepted by the risk check")
	flagSet.Float64Var(&maxNotional, "max-notional", 250000, "largest order notional accepted by the risk check")
	flagSet.IntVar(&maxOrdersPerSecond, "rate-limit", 0, "orders per second before RATE_LIMITED (0 disables)")
	flagSet.DurationVar(&tick, "tick", time.Second, "quote update interval (0 disables)")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if showVersion {
		fmt.Printf("tradedesk-mockd %s\n", version.Full())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if socketPath == "" {
		socketPath = cfg.SocketPath
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		return fmt.Errorf("creating socket directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	daemon := mockd.New(mockd.Options{
		Logger:             logger,
		Account:            account,
		Cash:               cash,
		MaxOrderQty:        maxOrderQty,
		MaxNotional:        maxNotional,
		MaxOrdersPerSecond: maxOrdersPerSecond,
	})
	server := service.NewSocketServer(socketPath, logger)
	daemon.Register(server)

	socketDone := make(chan error, 1)
	go func() {
		socketDone <- server.Serve(ctx)
	}()

	if tick > 0 {
		go runTicker(ctx, daemon, tick)
	}

	logger.Info("mock daemon running",
		"socket", socketPath,
		"account", account,
		"environment", cfg.Environment,
		"version", version.Short(),
	)

	select {
	case err := <-socketDone:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	return <-socketDone
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func runTicker(ctx context.Context, daemon *mockd.Daemon, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			daemon.Tick()
		}
	}
}
