// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR configuration shared by every
// package that touches the daemon wire protocol.
//
// Frame payloads between clients and the daemon are single CBOR items.
// The encoder uses Core Deterministic Encoding so the same envelope
// always produces the same bytes, which keeps captured frames diffable.
// The decoder uses map[string]any for any-typed maps so that decoded
// daemon data can be re-emitted as JSON by the CLI without conversion.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tag Rules
//
// Types that are only ever CBOR (the request, response and event
// envelopes) use `cbor` tags. Types that the CLI also prints with
// --json (command params and results) use `json` tags only;
// fxamacker/cbor falls back to `json` tags when `cbor` tags are absent,
// so one tag controls both formats. Never put both on one field.
package codec
