// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package client talks to the trading daemon over its Unix socket.
//
// Every call opens its own connection, writes one request frame, reads
// one response frame, and closes the connection on every path:
//
//	c := client.New(socketPath)
//	quotes, err := client.Invoke(ctx, c, command.QuoteSnapshot,
//	    command.QuoteSnapshotParams{Symbols: []string{"AAPL"}})
//
// A subscription keeps its connection open after the acknowledgement
// and yields events until the daemon closes the socket:
//
//	subscription, err := c.Subscribe(ctx, command.TopicFills)
//	if err != nil { ... }
//	for event, err := range subscription.Events(ctx) {
//	    ...
//	}
//
// All failures are [*daemonerr.Error] values except context
// cancellation, which returns ctx.Err().
package client
