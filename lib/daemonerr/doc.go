// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package daemonerr is the closed error taxonomy shared by every client
// of the daemon socket.
//
// Every failure a client can observe, whether raised locally (the socket
// is missing, the response never arrived, the payload is garbage) or
// reported by the daemon in an error response, surfaces as an [*Error]
// carrying one [Kind]. Callers switch on the kind to decide whether to
// retry, which exit code to use, and which hint to print:
//
//	var daemonError *daemonerr.Error
//	if errors.As(err, &daemonError) && daemonError.Kind == daemonerr.Timeout {
//	    // retry with a larger timeout
//	}
//
// The kind set is closed on the client side but not on the daemon side:
// a daemon newer than the client may report codes this package does not
// know. [FromResponse] coerces those to [InternalError] so a switch over
// the known kinds is always exhaustive, and keeps the original code in
// Details["code"] for diagnostics.
package daemonerr
