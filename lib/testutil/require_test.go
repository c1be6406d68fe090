// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

// fatalRecorder captures Fatalf without stopping the calling test.
type fatalRecorder struct {
	message string
}

func (r *fatalRecorder) Helper() {}

func (r *fatalRecorder) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
	panic(r)
}

func expectFatal(t *testing.T, run func(recorder *fatalRecorder)) string {
	t.Helper()
	recorder := &fatalRecorder{}
	func() {
		defer func() {
			if recovered := recover(); recovered != nil && recovered != recorder {
				panic(recovered)
			}
		}()
		run(recorder)
	}()
	return recorder.message
}

func TestRequireReceiveValue(t *testing.T) {
	ch := make(chan int, 1)
	ch <- 7
	if got := RequireReceive(t, ch, time.Second); got != 7 {
		t.Fatalf("RequireReceive = %d, want 7", got)
	}
}

func TestRequireReceiveTimeout(t *testing.T) {
	message := expectFatal(t, func(recorder *fatalRecorder) {
		RequireReceive(recorder, make(chan int), 10*time.Millisecond, "waiting for %s", "frame")
	})
	if message == "" {
		t.Fatal("expected Fatalf on timeout")
	}
}

func TestRequireReceiveClosedChannel(t *testing.T) {
	ch := make(chan int)
	close(ch)
	message := expectFatal(t, func(recorder *fatalRecorder) {
		RequireReceive(recorder, ch, time.Second)
	})
	if message == "" {
		t.Fatal("expected Fatalf on closed channel")
	}
}

func TestRequireClosed(t *testing.T) {
	ch := make(chan struct{})
	close(ch)
	RequireClosed(t, ch, time.Second)
}

func TestSocketPathIsShort(t *testing.T) {
	path := SocketPath(t, "daemon.sock")
	if len(path) >= 108 {
		t.Fatalf("socket path %q exceeds sun_path limit", path)
	}
}
