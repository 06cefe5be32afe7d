// Package executor drives a signed swap transaction to a terminal state:
// assemble, sign, submit, confirm. It owns the SwapAttempt for its lifetime
// and guarantees at most one active attempt per session.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"blink-swap/pkg/assembler"
	"blink-swap/pkg/types"
)

// Defaults for the confirmation wait. The timeout matches the dashboard's
// transaction timeout.
const (
	DefaultConfirmTimeout = 30 * time.Second
	DefaultPollInterval   = 2 * time.Second
)

// Execution-stage failures surfaced to the caller.
var (
	// ErrAttemptInProgress is returned when a new attempt is started while
	// a prior one has not reached a terminal state.
	ErrAttemptInProgress = errors.New("a swap attempt is already in progress")
	// ErrUserRejected: the signer declined or the attempt was cancelled.
	ErrUserRejected = errors.New("swap rejected by user")
	// ErrConfirmationTimeout: the confirmation window elapsed without a
	// definitive result.
	ErrConfirmationTimeout = errors.New("confirmation timed out")
	// ErrCannotCancel is returned when cancellation is requested after the
	// transaction was submitted.
	ErrCannotCancel = errors.New("attempt can no longer be cancelled")
)

// ExecutionRejectedError carries the network's rejection reason.
type ExecutionRejectedError struct {
	Reason string
}

func (e *ExecutionRejectedError) Error() string {
	return "execution rejected: " + e.Reason
}

// Signer is the external wallet boundary. Signing can take arbitrarily long;
// it is user-controlled.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error)
}

// TxStatus is the network's view of a submitted signature.
type TxStatus struct {
	Confirmed bool
	Failed    bool
	Reason    string
}

// Broadcaster is the blockchain RPC boundary: submit a signed transaction and
// poll its signature.
type Broadcaster interface {
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	SignatureStatus(ctx context.Context, sig solana.Signature) (TxStatus, error)
}

// Coordinator runs swap attempts for one swap-form session.
type Coordinator struct {
	signer         Signer
	rpc            Broadcaster
	logger         *zap.Logger
	confirmTimeout time.Duration
	pollInterval   time.Duration

	mu      sync.Mutex
	attempt *SwapAttempt
	cancel  context.CancelFunc
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithConfirmTimeout sets the confirmation window.
func WithConfirmTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.confirmTimeout = d
	}
}

// WithPollInterval sets the signature poll cadence.
func WithPollInterval(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.pollInterval = d
	}
}

// New creates a coordinator bound to a signer and an RPC endpoint for the
// lifetime of one session.
func New(signer Signer, rpc Broadcaster, logger *zap.Logger, opts ...CoordinatorOption) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		signer:         signer,
		rpc:            rpc,
		logger:         logger,
		confirmTimeout: DefaultConfirmTimeout,
		pollInterval:   DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs one attempt for the route to a terminal state. It returns the
// attempt together with the classified error for failed outcomes. A second
// call while a prior attempt is still active fails with ErrAttemptInProgress.
func (c *Coordinator) Execute(ctx context.Context, route *types.Route) (*SwapAttempt, error) {
	attempt, execCtx, err := c.begin(route)
	if err != nil {
		return nil, err
	}
	defer c.finish()

	// Drafting -> AwaitingSignature
	tx, err := assembler.BuildTransaction(route, c.signer.PublicKey())
	if err != nil {
		c.fail(attempt, FailureInvalidRoute, err.Error())
		return attempt, err
	}
	c.advance(attempt, StatusAwaitingSignature)
	c.logger.Debug("awaiting signature", zap.String("attempt", attempt.ID))

	// AwaitingSignature -> Submitted | Failed(UserRejected)
	signed, err := c.signer.SignTransaction(execCtx, tx)
	if err != nil {
		c.fail(attempt, FailureUserRejected, err.Error())
		return attempt, errors.Wrap(ErrUserRejected, err.Error())
	}

	sig, err := c.rpc.SendTransaction(execCtx, signed)
	if err != nil {
		c.fail(attempt, FailureExecutionRejected, err.Error())
		return attempt, &ExecutionRejectedError{Reason: err.Error()}
	}
	c.mu.Lock()
	attempt.Signature = sig
	c.mu.Unlock()
	c.advance(attempt, StatusSubmitted)
	c.logger.Info("transaction submitted",
		zap.String("attempt", attempt.ID),
		zap.String("signature", sig.String()))

	// Submitted -> Confirmed | Failed. Once here the attempt cannot be
	// cancelled, only awaited; a cancelled context counts as an
	// indeterminate outcome, not a rejection.
	return c.awaitConfirmation(ctx, attempt, sig)
}

// Cancel aborts the current attempt if it has not been submitted yet. The
// cancellation surfaces as a Failed(UserRejected) terminal state.
func (c *Coordinator) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt == nil || c.attempt.Status.IsTerminal() {
		return errors.New("no active attempt to cancel")
	}
	if c.attempt.Status == StatusSubmitted {
		return ErrCannotCancel
	}
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

// Current returns a copy of the session's attempt, or nil if none started.
func (c *Coordinator) Current() *SwapAttempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt == nil {
		return nil
	}
	cp := *c.attempt
	return &cp
}

func (c *Coordinator) begin(route *types.Route) (*SwapAttempt, context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.attempt != nil && !c.attempt.Status.IsTerminal() {
		return nil, nil, ErrAttemptInProgress
	}

	attempt := &SwapAttempt{
		ID:        uuid.NewString(),
		Route:     route,
		Status:    StatusDrafting,
		CreatedAt: time.Now(),
	}
	c.attempt = attempt

	execCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	return attempt, execCtx, nil
}

func (c *Coordinator) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// advance moves the attempt forward. Terminal states are never left; that
// would be a programming error, so it is enforced here.
func (c *Coordinator) advance(attempt *SwapAttempt, to Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attempt.Status.IsTerminal() {
		c.logger.Error("refusing transition out of terminal state",
			zap.String("attempt", attempt.ID),
			zap.String("from", string(attempt.Status)),
			zap.String("to", string(to)))
		return
	}
	attempt.Status = to
}

func (c *Coordinator) fail(attempt *SwapAttempt, kind FailureKind, detail string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attempt.Status.IsTerminal() {
		return
	}
	attempt.Status = StatusFailed
	attempt.Failure = kind
	attempt.FailureDetail = detail
	attempt.CompletedAt = time.Now()
	c.logger.Warn("swap attempt failed",
		zap.String("attempt", attempt.ID),
		zap.String("kind", string(kind)),
		zap.String("detail", detail))
}

func (c *Coordinator) confirm(attempt *SwapAttempt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attempt.Status.IsTerminal() {
		return
	}
	attempt.Status = StatusConfirmed
	attempt.CompletedAt = time.Now()
	c.logger.Info("swap confirmed",
		zap.String("attempt", attempt.ID),
		zap.String("signature", attempt.Signature.String()))
}

func (c *Coordinator) awaitConfirmation(ctx context.Context, attempt *SwapAttempt, sig solana.Signature) (*SwapAttempt, error) {
	deadline := time.NewTimer(c.confirmTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.fail(attempt, FailureConfirmationTimeout, ctx.Err().Error())
			return attempt, errors.Wrap(ErrConfirmationTimeout, ctx.Err().Error())
		case <-deadline.C:
			c.fail(attempt, FailureConfirmationTimeout,
				"no definitive result within "+c.confirmTimeout.String())
			return attempt, ErrConfirmationTimeout
		case <-ticker.C:
			status, err := c.rpc.SignatureStatus(ctx, sig)
			if err != nil {
				// transient poll failure; the deadline bounds us
				c.logger.Debug("signature status poll failed", zap.Error(err))
				continue
			}
			if status.Failed {
				c.fail(attempt, FailureExecutionRejected, status.Reason)
				return attempt, &ExecutionRejectedError{Reason: status.Reason}
			}
			if status.Confirmed {
				c.confirm(attempt)
				return attempt, nil
			}
		}
	}
}
