// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package service is the daemon side of the socket protocol.
//
// A [SocketServer] accepts connections on a Unix socket and handles
// exactly one logical call per connection. The first frame is a request
// envelope; its command selects a registered handler:
//
//   - A [HandlerFunc] returns a result (or an error) that becomes the
//     single response frame, after which the connection closes.
//   - A [StreamFunc] acknowledges with one response frame and then
//     writes event frames through an [Emitter] until it returns or the
//     client disconnects. The server closes the connection afterwards,
//     which is how the client learns the stream has ended.
//
// Errors returned by handlers that are *daemonerr.Error keep their kind
// on the wire; any other error is reported as INTERNAL_ERROR. Unknown
// commands are INVALID_ARGS.
//
// The server backs the development mock daemon (cmd/tradedesk-mockd)
// and the client package's tests. It is not the trading daemon.
package service
