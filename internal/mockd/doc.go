// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package mockd is an in-memory paper trading daemon for development
// and tests. It serves every command in the registry over a
// [service.SocketServer]: quotes come from a fixed book that [Daemon.Tick]
// walks forward, market orders fill immediately at the touch, limit
// orders rest until cancelled, and order, fill, risk, quote, position
// and gateway events are fanned out to subscribers.
//
// It is not a trading daemon. Nothing leaves the process.
package mockd
