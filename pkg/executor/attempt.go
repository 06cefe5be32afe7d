package executor

import (
	"time"

	"github.com/gagliardetto/solana-go"

	"blink-swap/pkg/types"
)

// Status of a swap attempt. Transitions are one-directional; Confirmed and
// Failed are terminal.
type Status string

const (
	StatusDrafting          Status = "drafting"
	StatusAwaitingSignature Status = "awaiting_signature"
	StatusSubmitted         Status = "submitted"
	StatusConfirmed         Status = "confirmed"
	StatusFailed            Status = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// FailureKind classifies a failed attempt. Each kind maps to a distinct user
// remediation: retry, adjust slippage or funds, or check status later.
type FailureKind string

const (
	// FailureUserRejected: the signer declined or the user cancelled.
	FailureUserRejected FailureKind = "user_rejected"
	// FailureExecutionRejected: the network rejected the transaction
	// (slippage exceeded, insufficient balance, program error).
	FailureExecutionRejected FailureKind = "execution_rejected"
	// FailureConfirmationTimeout: no definitive result within the
	// confirmation window. The signature may still land; re-check later.
	FailureConfirmationTimeout FailureKind = "confirmation_timeout"
	// FailureInvalidRoute: the route template could not be assembled.
	// Defensive; should not occur with a route from the current session.
	FailureInvalidRoute FailureKind = "invalid_route"
)

// SwapAttempt is one user-initiated execution of a quoted route, tracked from
// drafting to a terminal outcome.
type SwapAttempt struct {
	ID            string
	Route         *types.Route
	Status        Status
	Signature     solana.Signature
	Failure       FailureKind
	FailureDetail string
	CreatedAt     time.Time
	CompletedAt   time.Time
}

// Succeeded reports whether the attempt confirmed on-chain.
func (a *SwapAttempt) Succeeded() bool {
	return a.Status == StatusConfirmed
}
