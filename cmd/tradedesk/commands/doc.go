// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the tradedesk command tree. Every command
// that talks to the daemon opens one connection per call through
// [client.Client] and shares the connection flags (--socket, --config,
// --timeout, --verbose) and --json output.
//
// [App.Main] runs the tree and converts the returned error into the
// process exit code, rendering it on stderr (or as a JSON error object
// on stdout under --json) on the way.
package commands
