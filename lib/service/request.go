// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"github.com/tradedesk/tradedesk/lib/codec"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

// Request is a decoded request envelope as seen by a handler.
type Request struct {
	ID      string
	Command string
	Source  string
	Stream  bool

	params codec.RawMessage
}

// DecodeParams decodes the request's params into target. A shape
// mismatch is reported as INVALID_ARGS.
func (r *Request) DecodeParams(target any) error {
	if err := codec.Unmarshal(r.params, target); err != nil {
		return daemonerr.Newf(daemonerr.InvalidArgs, "invalid params for %s", r.Command).
			WithDetail("reason", err.Error()).
			WithCause(err)
	}
	return nil
}

// RawParams returns the encoded params.
func (r *Request) RawParams() codec.RawMessage { return r.params }
