// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tradedesk/tradedesk/lib/frame"
	"github.com/tradedesk/tradedesk/lib/wire"
)

// errAlreadyAcknowledged is returned by a second Ack.
var errAlreadyAcknowledged = errors.New("service: subscription already acknowledged")

// Emitter writes the acknowledgement and events of one subscription.
// It is safe for concurrent use by the handler's goroutines.
type Emitter struct {
	conn      net.Conn
	requestID string

	mu           sync.Mutex
	acknowledged bool
}

// Ack sends the ok=true response carrying result. It must be called at
// most once; Emit sends an empty acknowledgement if the handler never
// calls Ack.
func (e *Emitter) Ack(result any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.acknowledged {
		return errAlreadyAcknowledged
	}
	return e.ackLocked(result)
}

// Emit sends one event. An error means the client is gone and the
// handler should return.
func (e *Emitter) Emit(topic string, data map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.acknowledged {
		if err := e.ackLocked(nil); err != nil {
			return err
		}
	}
	payload, err := wire.EncodeEvent(wire.Event{
		RequestID: e.requestID,
		Topic:     topic,
		Data:      data,
	})
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", topic, err)
	}
	return e.writeLocked(payload)
}

// Acknowledged reports whether the acknowledgement has been sent.
func (e *Emitter) Acknowledged() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.acknowledged
}

func (e *Emitter) ackLocked(result any) error {
	payload, err := wire.EncodeResponse(e.requestID, result)
	if err != nil {
		return fmt.Errorf("encoding acknowledgement: %w", err)
	}
	e.acknowledged = true
	return e.writeLocked(payload)
}

func (e *Emitter) writeLocked(payload []byte) error {
	e.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return frame.Write(e.conn, payload)
}
