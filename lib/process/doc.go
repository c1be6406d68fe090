// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds entrypoint helpers for the long-running
// binaries (tradedesk-mockd), which report errors before a structured
// logger exists.
package process
