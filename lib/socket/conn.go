// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package socket

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/tradedesk/tradedesk/lib/clock"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
	"github.com/tradedesk/tradedesk/lib/frame"
	"github.com/tradedesk/tradedesk/lib/netutil"
)

// dialTimeout bounds the connect phase only.
const dialTimeout = 5 * time.Second

// writeTimeout bounds a single frame write. The daemon drains its
// socket continuously; a write blocking this long means it is wedged.
const writeTimeout = 10 * time.Second

// readChunkSize is the read buffer size of the reader goroutine.
const readChunkSize = 32 * 1024

// DialFunc opens the raw stream to socketPath.
type DialFunc func(ctx context.Context, socketPath string) (net.Conn, error)

// Options configures a Conn. The zero value is ready to use.
type Options struct {
	// Dial replaces the Unix socket dialer, mainly for tests.
	Dial DialFunc

	// Clock drives response deadlines. Defaults to the wall clock.
	Clock clock.Clock

	// Logger receives debug output for abnormal stream ends. Defaults
	// to discarding.
	Logger *slog.Logger
}

// DialUnix connects to a Unix stream socket with the default connect
// timeout.
func DialUnix(ctx context.Context, socketPath string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	return dialer.DialContext(ctx, "unix", socketPath)
}

// Conn is one open connection to the daemon.
type Conn struct {
	address   string
	netConn   net.Conn
	assembler *frame.Assembler
	logger    *slog.Logger

	closeOnce  sync.Once
	closeError error
	readerDone chan struct{}
}

// Dial connects to the daemon at socketPath. Any failure, whether a
// missing socket file, a stale socket with no listener, a permission
// problem, or a cancelled context, is returned as a DAEMON_NOT_RUNNING
// error with a diagnosis in its details and suggestion.
func Dial(ctx context.Context, socketPath string, options Options) (*Conn, error) {
	dial := options.Dial
	if dial == nil {
		dial = DialUnix
	}
	netConn, err := dial(ctx, socketPath)
	if err != nil {
		return nil, DiagnoseDialError(socketPath, err)
	}
	return New(socketPath, netConn, options), nil
}

// New wraps an established stream and starts its reader goroutine.
func New(address string, netConn net.Conn, options Options) *Conn {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	conn := &Conn{
		address:    address,
		netConn:    netConn,
		assembler:  frame.NewAssembler(address, options.Clock),
		logger:     logger,
		readerDone: make(chan struct{}),
	}
	go conn.readLoop()
	return conn
}

// Address returns the socket path this connection was opened to.
func (c *Conn) Address() string { return c.address }

// WriteFrame frames payload and writes it in one call.
func (c *Conn) WriteFrame(payload []byte) error {
	data, err := frame.Encode(payload)
	if err != nil {
		return daemonerr.Internal("request too large", err)
	}
	return c.Write(data)
}

// Write writes already-framed bytes. A failed write means the daemon
// is gone, so the error is DAEMON_NOT_RUNNING.
func (c *Conn) Write(data []byte) error {
	c.netConn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if _, err := c.netConn.Write(data); err != nil {
		return daemonerr.NotRunning(c.address, "writing to daemon socket failed", err)
	}
	return nil
}

// Next returns the next complete frame. See frame.Assembler.Next for
// the outcomes; timeout <= 0 waits without a deadline.
func (c *Conn) Next(ctx context.Context, timeout time.Duration) ([]byte, error) {
	return c.assembler.Next(ctx, timeout)
}

// Close closes the stream and waits for the reader to exit. Only the
// first call does anything; later calls return the first call's result.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeError = c.netConn.Close()
		<-c.readerDone
	})
	return c.closeError
}

// Done is closed once the stream has ended, whether the daemon closed
// it or Close was called.
func (c *Conn) Done() <-chan struct{} { return c.readerDone }

func (c *Conn) readLoop() {
	defer close(c.readerDone)
	defer c.assembler.End()

	buffer := make([]byte, readChunkSize)
	for {
		n, err := c.netConn.Read(buffer)
		if n > 0 {
			if feedError := c.assembler.Feed(buffer[:n]); feedError != nil {
				c.logger.Warn("dropping daemon connection after framing error",
					"socket", c.address,
					"error", feedError,
				)
				c.netConn.Close()
				return
			}
		}
		if err != nil {
			if !netutil.IsExpectedCloseError(err) {
				c.logger.Debug("daemon socket read failed",
					"socket", c.address,
					"error", err,
				)
			}
			return
		}
	}
}
