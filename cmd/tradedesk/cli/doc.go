// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework behind the tradedesk binary.
//
// A [Command] tree dispatches on the first positional argument, parses
// flags with pflag, and prints structured help. Flags are declared as
// tagged struct fields and bound with [FlagsFromParams]:
//
//	type quoteParams struct {
//	    cli.JSONOutput
//	    Timeout time.Duration `flag:"timeout" desc:"response timeout"`
//	}
//
// Errors returned from Run are rendered by [RenderError], which shows
// the daemon error kind, message, details, and remediation hint, and
// mapped to a process exit code by [ExitCode].
package cli
