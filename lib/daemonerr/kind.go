// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package daemonerr

// Kind is one member of the closed error taxonomy. The string value is
// the code carried in error responses on the wire.
type Kind string

const (
	// DaemonNotRunning means the socket could not be reached, or it
	// closed before the expected frame arrived.
	DaemonNotRunning Kind = "DAEMON_NOT_RUNNING"

	// Timeout means no response arrived within the call deadline.
	Timeout Kind = "TIMEOUT"

	// InternalError covers malformed payloads, framing violations, and
	// error codes the client does not recognize.
	InternalError Kind = "INTERNAL_ERROR"

	// IBDisconnected means the daemon has lost its brokerage gateway.
	IBDisconnected Kind = "IB_DISCONNECTED"

	// IBRejected means the brokerage gateway refused the request.
	IBRejected Kind = "IB_REJECTED"

	// RiskCheckFailed means a pre-trade risk rule blocked an order.
	RiskCheckFailed Kind = "RISK_CHECK_FAILED"

	// RiskHalted means trading is halted by the risk engine.
	RiskHalted Kind = "RISK_HALTED"

	// RateLimited means the daemon throttled the caller.
	RateLimited Kind = "RATE_LIMITED"

	// DuplicateOrder means the client order ID was already used.
	DuplicateOrder Kind = "DUPLICATE_ORDER"

	// InvalidSymbol means the instrument is unknown to the daemon.
	InvalidSymbol Kind = "INVALID_SYMBOL"

	// InvalidArgs means the command or its params were rejected.
	InvalidArgs Kind = "INVALID_ARGS"
)

// kinds lists every known kind in a stable order.
var kinds = []Kind{
	DaemonNotRunning,
	Timeout,
	InternalError,
	IBDisconnected,
	IBRejected,
	RiskCheckFailed,
	RiskHalted,
	RateLimited,
	DuplicateOrder,
	InvalidSymbol,
	InvalidArgs,
}

// Kinds returns every known kind. The returned slice is a copy.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// Known reports whether code names a kind in the taxonomy.
func Known(code string) bool {
	for _, kind := range kinds {
		if string(kind) == code {
			return true
		}
	}
	return false
}

// ParseKind returns the kind named by code, or InternalError for any
// code outside the taxonomy.
func ParseKind(code string) Kind {
	if Known(code) {
		return Kind(code)
	}
	return InternalError
}

// Retryable reports whether repeating the same call may succeed
// without changing its inputs.
func (k Kind) Retryable() bool {
	switch k {
	case DaemonNotRunning, Timeout, IBDisconnected, RateLimited:
		return true
	default:
		return false
	}
}

// ExitCode returns the process exit code class for the kind.
//
//	1  internal or unrecognized failures
//	2  bad input (INVALID_ARGS, INVALID_SYMBOL)
//	3  connectivity (DAEMON_NOT_RUNNING, IB_DISCONNECTED)
//	4  transient (TIMEOUT, RATE_LIMITED)
//	5  risk (RISK_CHECK_FAILED, RISK_HALTED)
//	6  order rejected (IB_REJECTED, DUPLICATE_ORDER)
func (k Kind) ExitCode() int {
	switch k {
	case InvalidArgs, InvalidSymbol:
		return 2
	case DaemonNotRunning, IBDisconnected:
		return 3
	case Timeout, RateLimited:
		return 4
	case RiskCheckFailed, RiskHalted:
		return 5
	case IBRejected, DuplicateOrder:
		return 6
	default:
		return 1
	}
}

// DefaultSuggestion is the remediation hint used when the daemon does
// not supply one.
func (k Kind) DefaultSuggestion() string {
	switch k {
	case DaemonNotRunning:
		return "Start the daemon with 'tradedeskd start' and check that the socket path matches its configuration."
	case Timeout:
		return "The daemon may be busy. Retry, or pass a larger --timeout."
	case IBDisconnected:
		return "Check that the brokerage gateway is running and logged in; the daemon reconnects automatically."
	case RateLimited:
		return "Wait a moment before retrying."
	case RiskHalted:
		return "Trading is halted. Run 'tradedesk risk resume' once the cause is resolved."
	case DuplicateOrder:
		return "Use a fresh client order ID, or query the existing order with 'tradedesk order list'."
	case InvalidSymbol:
		return "Check the symbol spelling and that the instrument is tradable on your account."
	case InvalidArgs:
		return "Run the command with --help to see the accepted parameters."
	case InternalError:
		return "This is likely a bug. Re-run with --verbose and report the output."
	default:
		return ""
	}
}
