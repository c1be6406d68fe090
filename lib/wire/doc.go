// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the three envelopes carried in frame payloads
// and their CBOR encoding.
//
// A client sends one [Request]. For a plain call the daemon answers
// with one [Response] and closes the connection. For a subscription
// (Request.Stream set) the first Response is the acknowledgement, and
// every later frame is an [Event] until the connection ends.
//
// Decoding is defensive: a payload that is not a CBOR map, or whose
// fields have the wrong shape, is an INTERNAL_ERROR from lib/daemonerr
// with a fixed message, never a zero-valued envelope.
package wire
