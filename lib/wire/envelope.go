// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"github.com/google/uuid"

	"github.com/tradedesk/tradedesk/lib/codec"
)

// Request is the envelope a client sends to start a call.
type Request struct {
	// RequestID is unique per call. The daemon logs it for audit
	// correlation; it is not used to multiplex calls on one socket.
	RequestID string `cbor:"request_id"`

	// Command is a dotted command name such as "quote.snapshot".
	Command string `cbor:"command"`

	// Params is the command's parameter value: a map, or a struct
	// with json tags that encodes as one.
	Params any `cbor:"params"`

	// Stream marks a subscription request.
	Stream bool `cbor:"stream"`

	// Source identifies the kind of client ("cli", "sdk-go", "tui").
	Source string `cbor:"source"`
}

// Response is the daemon's answer to a Request. When OK is true, Error
// is nil and Data holds the result (possibly empty). When OK is false,
// Error describes the failure.
type Response struct {
	RequestID string           `cbor:"request_id"`
	OK        bool             `cbor:"ok"`
	Data      codec.RawMessage `cbor:"data,omitempty"`
	Error     *ErrorPayload    `cbor:"error,omitempty"`
}

// ErrorPayload is the error object of an ok=false response.
type ErrorPayload struct {
	Code       string         `cbor:"code"`
	Message    string         `cbor:"message"`
	Details    map[string]any `cbor:"details"`
	Suggestion string         `cbor:"suggestion,omitempty"`
}

// Event is one item of a subscription stream. It carries json tags
// because the CLI prints events with --json.
type Event struct {
	RequestID string         `json:"request_id,omitempty"`
	Topic     string         `json:"topic"`
	Data      map[string]any `json:"data"`
}

// NewRequestID returns a random UUID string.
func NewRequestID() string {
	return uuid.NewString()
}

// NewRequest builds a request envelope with a fresh request ID.
func NewRequest(command string, params any, stream bool, source string) Request {
	return Request{
		RequestID: NewRequestID(),
		Command:   command,
		Params:    params,
		Stream:    stream,
		Source:    source,
	}
}
