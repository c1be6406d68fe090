// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package command is the static registry of daemon commands.
//
// Each command is a [Spec] tying a dotted name to its parameter and
// result types. The types are a compile-time contract only: nothing
// about them is transmitted, and the daemon does not negotiate schemas.
// lib/client uses a Spec to make typed calls:
//
//	result, err := client.Invoke(ctx, daemon, command.QuoteSnapshot,
//	    command.QuoteSnapshotParams{Symbols: []string{"AAPL"}})
//
// [All] and [Lookup] expose the registry for tooling (the CLI's
// "commands" listing and the raw "call" command).
package command
