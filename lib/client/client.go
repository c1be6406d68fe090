// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"log/slog"
	"time"

	"github.com/tradedesk/tradedesk/lib/clock"
	"github.com/tradedesk/tradedesk/lib/metrics"
	"github.com/tradedesk/tradedesk/lib/socket"
)

const (
	// DefaultTimeout bounds the wait for a response (or a subscription
	// acknowledgement).
	DefaultTimeout = 10 * time.Second

	// DefaultSource is the request source tag when none is set.
	DefaultSource = "sdk-go"
)

// Client issues calls to one daemon socket. It holds no connection, so
// a single Client is safe for concurrent use.
type Client struct {
	socketPath string
	timeout    time.Duration
	source     string
	logger     *slog.Logger
	clock      clock.Clock
	dial       socket.DialFunc
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the default response timeout. Zero disables the
// deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithSource sets the source tag sent with every request.
func WithSource(source string) Option {
	return func(c *Client) { c.source = source }
}

// WithLogger sets the logger for per-call debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithClock replaces the clock driving timeouts.
func WithClock(c clock.Clock) Option {
	return func(client *Client) { client.clock = c }
}

// WithDialer replaces the Unix socket dialer.
func WithDialer(dial socket.DialFunc) Option {
	return func(c *Client) { c.dial = dial }
}

// WithMetrics records calls and subscriptions into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for the daemon listening on socketPath.
func New(socketPath string, options ...Option) *Client {
	c := &Client{
		socketPath: socketPath,
		timeout:    DefaultTimeout,
		source:     DefaultSource,
		clock:      clock.Real(),
	}
	for _, option := range options {
		option(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.source == "" {
		c.source = DefaultSource
	}
	return c
}

// SocketPath returns the daemon socket path.
func (c *Client) SocketPath() string { return c.socketPath }

// Timeout returns the default response timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

func (c *Client) connect(ctx context.Context) (*socket.Conn, error) {
	return socket.Dial(ctx, c.socketPath, socket.Options{
		Dial:   c.dial,
		Clock:  c.clock,
		Logger: c.logger,
	})
}
