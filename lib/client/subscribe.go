// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync"

	"github.com/tradedesk/tradedesk/lib/codec"
	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
	"github.com/tradedesk/tradedesk/lib/frame"
	"github.com/tradedesk/tradedesk/lib/metrics"
	"github.com/tradedesk/tradedesk/lib/socket"
	"github.com/tradedesk/tradedesk/lib/wire"
)

// Event is one item of a subscription stream.
type Event = wire.Event

// Subscribe opens an event subscription for topics. It returns once the
// daemon has acknowledged the subscription; the client's default
// timeout applies to the acknowledgement only. A rejected subscription
// returns the mapped daemon error with the connection already closed.
func (c *Client) Subscribe(ctx context.Context, topics ...string) (*Subscription, error) {
	if topics == nil {
		topics = []string{}
	}
	commandName := command.EventsSubscribe.Name()
	request := wire.NewRequest(commandName, command.EventsSubscribeParams{Topics: topics}, true, c.source)

	start := c.clock.Now()
	subscription, err := c.subscribe(ctx, request, topics)
	c.metrics.ObserveCall(commandName, err, c.clock.Now().Sub(start))
	if err != nil {
		c.logger.Debug("subscription failed",
			"request_id", request.RequestID,
			"topics", topics,
			"error", err,
		)
		return nil, err
	}

	c.metrics.SubscriptionOpened()
	c.logger.Debug("subscription open",
		"request_id", request.RequestID,
		"subscribed", subscription.subscribed,
	)
	return subscription, nil
}

func (c *Client) subscribe(ctx context.Context, request wire.Request, topics []string) (*Subscription, error) {
	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	response, err := exchange(ctx, conn, request, c.timeout)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if mapped := response.MapError(); mapped != nil {
		conn.Close()
		return nil, mapped
	}

	var ack command.EventsSubscribeResult
	if len(response.Data) > 0 {
		if err := codec.Unmarshal(response.Data, &ack); err != nil {
			conn.Close()
			return nil, daemonerr.Internal("invalid response payload", err).
				WithDetail("command", request.Command)
		}
	}
	if ack.Subscribed == nil {
		ack.Subscribed = append([]string(nil), topics...)
	}

	return &Subscription{
		conn:       conn,
		requestID:  request.RequestID,
		subscribed: ack.Subscribed,
		metrics:    c.metrics,
	}, nil
}

// Subscription is an open event stream. Next and Events are for a
// single consumer goroutine; Close may be called from anywhere.
type Subscription struct {
	conn       *socket.Conn
	requestID  string
	subscribed []string
	metrics    *metrics.Metrics

	closeOnce sync.Once
}

// RequestID returns the ID of the subscription request.
func (s *Subscription) RequestID() string { return s.requestID }

// Subscribed returns the topics the daemon acknowledged.
func (s *Subscription) Subscribed() []string {
	return append([]string(nil), s.subscribed...)
}

// Next waits for the next event with no deadline. It returns io.EOF
// once the daemon closes the stream or the subscription is closed.
// A malformed event or framing violation returns INTERNAL_ERROR and
// ends the subscription. If ctx is done first, Next returns ctx.Err()
// and the subscription stays usable.
func (s *Subscription) Next(ctx context.Context) (Event, error) {
	payload, err := s.conn.Next(ctx, 0)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return Event{}, err
		}
		s.Close()
		if errors.Is(err, frame.ErrClosed) {
			return Event{}, io.EOF
		}
		return Event{}, err
	}

	event, err := wire.DecodeEvent(payload)
	if err != nil {
		s.Close()
		return Event{}, err
	}
	s.metrics.ObserveEvent(event.Topic)
	return *event, nil
}

// Events returns an iterator over the stream. Iteration stops without
// an error at the clean end of the stream; a failure is yielded once as
// the final element. The subscription is closed when the loop exits,
// including on break.
func (s *Subscription) Events(ctx context.Context) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		defer s.Close()
		for {
			event, err := s.Next(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(event, nil) {
				return
			}
		}
	}
}

// Close ends the subscription and closes its connection. It is safe to
// call more than once.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.conn.Close()
		s.metrics.SubscriptionClosed()
	})
	return nil
}
