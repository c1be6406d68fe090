// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package frame

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tradedesk/tradedesk/lib/clock"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
)

// ErrClosed is in the chain of the error Next returns once the
// transport has ended and the queue is drained. Streaming callers test
// for it with errors.Is to tell a finished subscription from a failure.
var ErrClosed = errors.New("daemon socket closed")

// Assembler turns the raw byte stream of one connection into a FIFO of
// complete frames and hands them out to at most one waiter at a time.
//
// Feed and End are called by the connection's reader goroutine. Next is
// called by the goroutine driving the call. Frames are delivered in the
// order their bytes arrived.
type Assembler struct {
	address string
	clock   clock.Clock

	mu      sync.Mutex
	buffer  []byte
	queue   [][]byte
	waiter  *waiter
	ended   bool
	failure error // non-nil when the stream ended on a protocol violation
}

// waiter is the single pending Next. It is resolved at most once: only
// the holder of a.mu that finds a.waiter == w may send on result, and it
// clears a.waiter in the same critical section.
type waiter struct {
	result chan waitResult
}

type waitResult struct {
	frame []byte
	err   error
}

// NewAssembler creates an assembler for the connection to address. The
// address only appears in error details.
func NewAssembler(address string, c clock.Clock) *Assembler {
	if c == nil {
		c = clock.Real()
	}
	return &Assembler{address: address, clock: c}
}

// Feed appends a chunk of received bytes, queues every frame it
// completes, and hands the oldest to the pending waiter if there is
// one. A length prefix above MaxLength ends the stream: the pending and
// all later waits fail with INTERNAL_ERROR, and the error is returned
// so the reader can drop the connection.
func (a *Assembler) Feed(chunk []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ended {
		return ErrClosed
	}

	a.buffer = append(a.buffer, chunk...)
	frames, remainder, err := DecodeStream(a.buffer)
	a.queue = append(a.queue, frames...)
	a.buffer = append(a.buffer[:0], remainder...)

	if err != nil {
		a.failure = err
		a.buffer = nil
		a.endLocked()
		return err
	}

	if a.waiter != nil && len(a.queue) > 0 {
		a.resolveLocked(waitResult{frame: a.popLocked()})
	}
	return nil
}

// End marks the transport as finished. A pending waiter fails with a
// transport-closed error; frames already queued stay claimable. Calling
// End more than once has no further effect. The cause is informational:
// any end of the byte stream counts as the daemon closing the socket.
func (a *Assembler) End() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.endLocked()
}

func (a *Assembler) endLocked() {
	if a.ended {
		return
	}
	a.ended = true
	if a.waiter != nil {
		a.resolveLocked(waitResult{err: a.endErrorLocked()})
	}
}

// Next returns the oldest unclaimed frame, waiting for one if the
// queue is empty. Exactly one outcome occurs per call:
//
//   - a frame,
//   - a TIMEOUT error once timeout elapses (timeout <= 0 waits forever),
//   - a DAEMON_NOT_RUNNING error wrapping ErrClosed when the transport
//     ends first (or had already ended with nothing queued),
//   - an INTERNAL_ERROR after a framing violation,
//   - ctx.Err() if ctx is done first.
//
// A frame that arrives after the call gave up stays queued for the next
// call. Next must not be called concurrently on one Assembler; doing so
// panics.
func (a *Assembler) Next(ctx context.Context, timeout time.Duration) ([]byte, error) {
	a.mu.Lock()
	if len(a.queue) > 0 {
		frame := a.popLocked()
		a.mu.Unlock()
		return frame, nil
	}
	if a.ended {
		err := a.endErrorLocked()
		a.mu.Unlock()
		return nil, err
	}
	if a.waiter != nil {
		a.mu.Unlock()
		panic("frame: concurrent Next on one Assembler")
	}
	w := &waiter{result: make(chan waitResult, 1)}
	a.waiter = w
	a.mu.Unlock()

	var timer *clock.Timer
	if timeout > 0 {
		timer = a.clock.AfterFunc(timeout, func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			if a.waiter == w {
				a.resolveLocked(waitResult{err: daemonerr.TimedOut(timeout)})
			}
		})
	}

	select {
	case result := <-w.result:
		if timer != nil {
			timer.Stop()
		}
		return result.frame, result.err

	case <-ctx.Done():
		if timer != nil {
			timer.Stop()
		}
		a.mu.Lock()
		if a.waiter == w {
			a.waiter = nil
			a.mu.Unlock()
			return nil, ctx.Err()
		}
		a.mu.Unlock()

		// Resolved concurrently with cancellation. A frame must not be
		// lost: put it back at the head of the queue.
		result := <-w.result
		if result.frame != nil {
			a.mu.Lock()
			a.queue = append([][]byte{result.frame}, a.queue...)
			a.mu.Unlock()
		}
		return nil, ctx.Err()
	}
}

// Queued returns the number of complete frames not yet claimed.
func (a *Assembler) Queued() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

func (a *Assembler) resolveLocked(result waitResult) {
	a.waiter.result <- result
	a.waiter = nil
}

func (a *Assembler) popLocked() []byte {
	frame := a.queue[0]
	a.queue[0] = nil
	a.queue = a.queue[1:]
	return frame
}

// endErrorLocked builds a fresh error per call so callers may annotate
// it without affecting each other.
func (a *Assembler) endErrorLocked() error {
	if a.failure != nil {
		return daemonerr.Internal("invalid frame from daemon", a.failure).
			WithDetail("socket_path", a.address)
	}
	return daemonerr.NotRunning(a.address, "daemon socket closed unexpectedly", ErrClosed)
}
