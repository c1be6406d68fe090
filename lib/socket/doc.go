// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package socket owns one client connection to the daemon's Unix
// socket.
//
// A [Conn] is created per logical call and never reused. It pairs the
// stream with a [frame.Assembler] fed by a reader goroutine, so the
// caller only ever sees whole frames:
//
//	conn, err := socket.Dial(ctx, socketPath, socket.Options{})
//	if err != nil {
//	    return err // already a DAEMON_NOT_RUNNING *daemonerr.Error
//	}
//	defer conn.Close()
//	if err := conn.WriteFrame(payload); err != nil { ... }
//	response, err := conn.Next(ctx, timeout)
//
// Close is safe to call any number of times and from any goroutine. It
// ends the stream, which fails a pending Next with a transport-closed
// error, and returns once the reader goroutine has exited.
package socket
