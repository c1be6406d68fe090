// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/tradedesk/tradedesk/lib/daemonerr"
	"github.com/tradedesk/tradedesk/lib/frame"
	"github.com/tradedesk/tradedesk/lib/netutil"
	"github.com/tradedesk/tradedesk/lib/wire"
)

// HandlerFunc serves a request/response command. A nil result sends
// ok=true without data.
type HandlerFunc func(ctx context.Context, request *Request) (any, error)

// StreamFunc serves a subscription command. ctx is cancelled when the
// client disconnects or the server shuts down. An error returned before
// the acknowledgement becomes an error response; after it, the error is
// only logged and the stream ends.
type StreamFunc func(ctx context.Context, request *Request, emitter *Emitter) error

// SocketServer serves the framed request protocol on a Unix socket.
// Register handlers with Handle and HandleStream before calling Serve.
type SocketServer struct {
	socketPath string
	handlers   map[string]HandlerFunc
	streams    map[string]StreamFunc
	logger     *slog.Logger

	listening chan struct{}

	// activeConnections tracks in-flight handlers. Serve waits for
	// them before returning.
	activeConnections sync.WaitGroup
}

// NewSocketServer creates a server that will listen on socketPath.
func NewSocketServer(socketPath string, logger *slog.Logger) *SocketServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SocketServer{
		socketPath: socketPath,
		handlers:   make(map[string]HandlerFunc),
		streams:    make(map[string]StreamFunc),
		logger:     logger,
		listening:  make(chan struct{}),
	}
}

// Handle registers a request/response handler. Panics if the command
// already has a handler.
func (s *SocketServer) Handle(command string, handler HandlerFunc) {
	s.checkUnregistered(command)
	s.handlers[command] = handler
}

// HandleStream registers a subscription handler. Panics if the command
// already has a handler.
func (s *SocketServer) HandleStream(command string, handler StreamFunc) {
	s.checkUnregistered(command)
	s.streams[command] = handler
}

func (s *SocketServer) checkUnregistered(command string) {
	_, isHandler := s.handlers[command]
	_, isStream := s.streams[command]
	if isHandler || isStream {
		panic(fmt.Sprintf("service.SocketServer: duplicate handler for command %q", command))
	}
}

// Commands returns the registered command names.
func (s *SocketServer) Commands() []string {
	names := make([]string, 0, len(s.handlers)+len(s.streams))
	for name := range s.handlers {
		names = append(names, name)
	}
	for name := range s.streams {
		names = append(names, name)
	}
	return names
}

// Listening is closed once the socket is accepting connections.
func (s *SocketServer) Listening() <-chan struct{} { return s.listening }

// Serve accepts connections until ctx is cancelled, then stops
// accepting and waits for active handlers to finish.
//
// Any existing socket file at the configured path is removed before
// listening. The socket file is removed on return.
func (s *SocketServer) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket %s: %w", s.socketPath, err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer func() {
		listener.Close()
		os.Remove(s.socketPath)
	}()

	// Unblock Accept when the context is cancelled.
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	s.logger.Info("socket server listening", "path", s.socketPath)
	close(s.listening)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		s.activeConnections.Add(1)
		go func() {
			defer s.activeConnections.Done()
			s.handleConnection(ctx, conn)
		}()
	}

	s.activeConnections.Wait()
	return nil
}

// readTimeout is how long we wait for the client to send its request.
const readTimeout = 30 * time.Second

// writeTimeout is how long we wait for one frame to be written.
const writeTimeout = 10 * time.Second

func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	payload, err := frame.Read(conn)
	if err != nil {
		if errors.Is(err, io.EOF) {
			// Client connected but sent nothing.
			return
		}
		s.writeError(conn, "", daemonerr.Internal("invalid request frame", err))
		return
	}
	conn.SetReadDeadline(time.Time{})

	envelope, params, err := wire.DecodeRequest(payload)
	if err != nil {
		s.writeError(conn, "", asDaemonError(err))
		return
	}
	request := &Request{
		ID:      envelope.RequestID,
		Command: envelope.Command,
		Source:  envelope.Source,
		Stream:  envelope.Stream,
		params:  params,
	}

	// The client never writes after its request, so any read result
	// means it has hung up.
	handlerContext, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		io.Copy(io.Discard, conn)
		cancel()
	}()

	if handler, ok := s.handlers[request.Command]; ok {
		s.serveCall(handlerContext, conn, request, handler)
		return
	}
	if handler, ok := s.streams[request.Command]; ok {
		s.serveStream(handlerContext, conn, request, handler)
		return
	}
	s.writeError(conn, request.ID, daemonerr.Newf(daemonerr.InvalidArgs, "unknown command %q", request.Command).
		WithDetail("command", request.Command).
		WithSuggestion("Run 'tradedesk commands' to list the commands this daemon accepts."))
}

func (s *SocketServer) serveCall(ctx context.Context, conn net.Conn, request *Request, handler HandlerFunc) {
	result, err := handler(ctx, request)
	if err != nil {
		s.logger.Debug("command failed",
			"command", request.Command,
			"request_id", request.ID,
			"error", err,
		)
		s.writeError(conn, request.ID, asDaemonError(err))
		return
	}

	payload, err := wire.EncodeResponse(request.ID, result)
	if err != nil {
		s.writeError(conn, request.ID, daemonerr.Internal("encoding response", err))
		return
	}
	s.writeFrame(conn, payload)
}

func (s *SocketServer) serveStream(ctx context.Context, conn net.Conn, request *Request, handler StreamFunc) {
	emitter := &Emitter{conn: conn, requestID: request.ID}
	err := handler(ctx, request, emitter)
	if !emitter.Acknowledged() {
		if err != nil {
			s.writeError(conn, request.ID, asDaemonError(err))
			return
		}
		if ackError := emitter.Ack(nil); ackError != nil {
			s.logger.Debug("failed to write acknowledgement", "error", ackError)
		}
		return
	}
	if err != nil && ctx.Err() == nil && !netutil.IsExpectedCloseError(err) {
		s.logger.Warn("subscription ended with error",
			"command", request.Command,
			"request_id", request.ID,
			"error", err,
		)
	}
}

// writeError sends an ok=false response. Write failures are logged at
// debug level; the connection is closing regardless.
func (s *SocketServer) writeError(conn net.Conn, requestID string, err *daemonerr.Error) {
	payload, encodeError := wire.EncodeErrorResponse(requestID, err)
	if encodeError != nil {
		s.logger.Error("encoding error response", "error", encodeError)
		return
	}
	s.writeFrame(conn, payload)
}

func (s *SocketServer) writeFrame(conn net.Conn, payload []byte) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := frame.Write(conn, payload); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

// asDaemonError keeps a handler's *daemonerr.Error and reports anything
// else as INTERNAL_ERROR.
func asDaemonError(err error) *daemonerr.Error {
	var daemonError *daemonerr.Error
	if errors.As(err, &daemonError) {
		return daemonError
	}
	return daemonerr.Internal(err.Error(), err)
}
