// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"time"

	"github.com/tradedesk/tradedesk/lib/codec"
	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
	"github.com/tradedesk/tradedesk/lib/socket"
	"github.com/tradedesk/tradedesk/lib/wire"
)

// CallOption adjusts a single call.
type CallOption func(*callOptions)

type callOptions struct {
	timeout time.Duration
}

// WithCallTimeout overrides the client's default timeout for one call.
// Zero disables the deadline.
func WithCallTimeout(timeout time.Duration) CallOption {
	return func(o *callOptions) { o.timeout = timeout }
}

// Call sends commandName with params and decodes the response data
// into result. A nil result discards the data. params may be nil, a
// map, or a struct with json tags.
func (c *Client) Call(ctx context.Context, commandName string, params, result any, options ...CallOption) error {
	data, err := c.CallRaw(ctx, commandName, params, options...)
	if err != nil {
		return err
	}
	if result == nil || len(data) == 0 {
		return nil
	}
	if err := codec.Unmarshal(data, result); err != nil {
		return daemonerr.Internal("invalid response payload", err).
			WithDetail("command", commandName)
	}
	return nil
}

// CallRaw is Call without decoding: it returns the response's data
// field as raw CBOR, or nil when the daemon sent none.
func (c *Client) CallRaw(ctx context.Context, commandName string, params any, options ...CallOption) (codec.RawMessage, error) {
	settings := callOptions{timeout: c.timeout}
	for _, option := range options {
		option(&settings)
	}

	request := wire.NewRequest(commandName, params, false, c.source)
	start := c.clock.Now()
	data, err := c.call(ctx, request, settings.timeout)
	elapsed := c.clock.Now().Sub(start)

	c.metrics.ObserveCall(commandName, err, elapsed)
	if err != nil {
		c.logger.Debug("daemon call failed",
			"command", commandName,
			"request_id", request.RequestID,
			"elapsed", elapsed,
			"error", err,
		)
		return nil, err
	}
	c.logger.Debug("daemon call",
		"command", commandName,
		"request_id", request.RequestID,
		"elapsed", elapsed,
	)
	return data, nil
}

func (c *Client) call(ctx context.Context, request wire.Request, timeout time.Duration) (codec.RawMessage, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	response, err := exchange(ctx, conn, request, timeout)
	if err != nil {
		return nil, err
	}
	if mapped := response.MapError(); mapped != nil {
		return nil, mapped
	}
	return response.Data, nil
}

// exchange writes request and waits for the response frame. It leaves
// the connection open.
func exchange(ctx context.Context, conn *socket.Conn, request wire.Request, timeout time.Duration) (*wire.Response, error) {
	payload, err := wire.EncodeRequest(request)
	if err != nil {
		return nil, daemonerr.New(daemonerr.InvalidArgs, "params cannot be encoded").
			WithDetail("command", request.Command).
			WithCause(err)
	}
	if err := conn.WriteFrame(payload); err != nil {
		return nil, err
	}
	responseFrame, err := conn.Next(ctx, timeout)
	if err != nil {
		return nil, err
	}
	return wire.DecodeResponse(responseFrame)
}

// Invoke is the typed form of Call for a registered command.
func Invoke[P, R any](ctx context.Context, c *Client, spec command.Spec[P, R], params P, options ...CallOption) (R, error) {
	var result R
	if spec.Stream() {
		return result, daemonerr.Newf(daemonerr.InvalidArgs, "%s is a subscription; use Subscribe", spec.Name())
	}
	err := c.Call(ctx, spec.Name(), params, &result, options...)
	return result, err
}
