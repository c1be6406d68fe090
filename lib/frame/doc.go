// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package frame implements the length-prefixed framing of the daemon
// socket and the per-connection assembler that serves frames to one
// waiter at a time.
//
// A frame is a 4-byte big-endian payload length followed by exactly
// that many payload bytes. There is no type byte, checksum, or
// compression; the payload is one CBOR item (see lib/wire).
//
// The encoding side is buffer oriented ([Encode], [Append]) for clients
// and stream oriented ([Write], [Read]) for the daemon side. The
// decoding side for clients is [DecodeStream], which extracts every
// complete frame from an accumulated buffer and returns the partial
// tail, and [Assembler], which wraps it with a queue and a deadline-
// aware single waiter slot.
package frame
