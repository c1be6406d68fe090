// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets. Socket paths are limited to 108 bytes (sun_path), which the
// nested directories returned by t.TempDir() can exceed.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-deadline
// safety valve so a broken test fails instead of hanging. They are the
// only helpers that use real wall-clock timeouts; code under test uses
// lib/clock.
//
// All helpers call t.Fatalf on failure.
package testutil
