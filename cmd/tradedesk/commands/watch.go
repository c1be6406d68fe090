// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/tradedesk/tradedesk/cmd/tradedesk/cli"
	"github.com/tradedesk/tradedesk/lib/client"
	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/metrics"
)

type watchParams struct {
	connectionParams
	cli.JSONOutput
	Count          int    `flag:"count,n" desc:"exit after N events (0 runs until interrupted or the stream ends)"`
	MetricsAddress string `flag:"metrics-address" desc:"serve Prometheus metrics on host:port while watching (default from config)"`
}

func (a *App) watchCommand() *cli.Command {
	var params watchParams
	return &cli.Command{
		Name:    "watch",
		Summary: "Stream daemon events",
		Description: fmt.Sprintf(`Subscribe to daemon events and print each one as it arrives. With no
TOPIC, every topic is requested. Known topics: %s.

Runs until interrupted, until --count events have been printed, or
until the daemon closes the stream. A closed stream exits 0. With
--json, each event is printed as one JSON object per line.`, strings.Join(command.Topics(), ", ")),
		Usage: "tradedesk watch [TOPIC...] [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("watch", &params) },
		Examples: []cli.Example{
			{Description: "Follow orders and fills", Command: "tradedesk watch orders fills"},
			{Description: "Wait for the next risk event as JSON", Command: "tradedesk watch risk --count 1 --json"},
		},
		Run: func(ctx context.Context, args []string) error {
			a.wantJSON(params.JSONOutput)
			if params.Count < 0 {
				return cli.Usagef("watch: --count must not be negative")
			}

			registry := prometheus.NewRegistry()
			watchMetrics, err := metrics.New(registry)
			if err != nil {
				return err
			}
			session, err := a.connect(params.connectionParams, client.WithMetrics(watchMetrics))
			if err != nil {
				return err
			}

			address := params.MetricsAddress
			if address == "" {
				address = session.config.MetricsAddress
			}
			if address != "" {
				stop, err := serveMetrics(address, registry, session.logger)
				if err != nil {
					return err
				}
				defer stop()
			}

			subscription, err := session.client.Subscribe(ctx, args...)
			if err != nil {
				return err
			}
			session.logger.Info("watching", "topics", subscription.Subscribed())

			printed := 0
			for event, err := range subscription.Events(ctx) {
				if err != nil {
					return err
				}
				if err := a.printEvent(params.OutputJSON, event); err != nil {
					return err
				}
				printed++
				if params.Count > 0 && printed >= params.Count {
					break
				}
			}
			return nil
		},
	}
}

func (a *App) printEvent(asJSON bool, event client.Event) error {
	if asJSON {
		return json.NewEncoder(a.Stdout).Encode(event)
	}
	var builder strings.Builder
	builder.WriteString(event.Topic)
	for _, key := range slices.Sorted(maps.Keys(event.Data)) {
		fmt.Fprintf(&builder, " %s=%v", key, event.Data[key])
	}
	builder.WriteByte('\n')
	_, err := fmt.Fprint(a.Stdout, builder.String())
	return err
}

// serveMetrics serves the registry at /metrics on address until the
// returned stop function is called.
func serveMetrics(address string, registry *prometheus.Registry, logger *slog.Logger) (func(), error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server failed", "error", err)
		}
	}()
	logger.Info("serving metrics", "address", listener.Addr().String())

	return func() {
		shutdownContext, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownContext); err != nil {
			logger.Debug("metrics server shutdown", "error", err)
		}
	}, nil
}
