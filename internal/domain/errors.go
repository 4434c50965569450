package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrWalletNotConnected is returned when a write is attempted without a signed-in account
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrNoCommitmentFound is returned when a reveal has no stored commitment to draw from
	ErrNoCommitmentFound = errors.New("no stored commitment found for this vote")

	// ErrStaleRead marks a poll response that was superseded by a newer one
	ErrStaleRead = errors.New("stale read ignored")

	// ErrSettlementNotRetryable is returned when the payout retry is not currently allowed
	ErrSettlementNotRetryable = errors.New("settlement is not retryable")

	// ErrAssertionNotDisputable is returned when an assertion is past its liveness or already disputed
	ErrAssertionNotDisputable = errors.New("assertion cannot be disputed")

	// ErrClaimTooLong is returned when a claim does not fit in 32 bytes and hashing was not requested
	ErrClaimTooLong = errors.New("claim exceeds 32 bytes")

	// ErrEmptyClaim is returned when a claim is blank
	ErrEmptyClaim = errors.New("claim is empty")

	// ErrNoDisputeRequest is returned when the oracle has not created a DVM request yet
	ErrNoDisputeRequest = errors.New("no DVM request for assertion yet")
)

// EncodingError reports malformed hex or byte input to the codec.
type EncodingError struct {
	Input  string
	Reason string
}

func (e *EncodingError) Error() string {
	input := e.Input
	if len(input) > 80 {
		input = input[:77] + "..."
	}
	return fmt.Sprintf("encoding error: %s (input %q)", e.Reason, input)
}

// InvalidAmountError reports a user-supplied amount that is not a positive number.
type InvalidAmountError struct {
	Value  string
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Value, e.Reason)
}

// InsufficientStakeError reports an amount larger than the known balance.
type InsufficientStakeError struct {
	Requested string
	Available string
}

func (e *InsufficientStakeError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %s, available %s", e.Requested, e.Available)
}

// RemoteCallError wraps a wallet or RPC failure. Indeterminate is set when the
// outcome is unknown (e.g. a timeout) and the transaction may still have landed.
type RemoteCallError struct {
	Op            string
	Err           error
	Indeterminate bool
}

func (e *RemoteCallError) Error() string {
	if e.Indeterminate {
		return fmt.Sprintf("%s: outcome unknown, the transaction may still land: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// NewRemoteCallError wraps err unless it already is a RemoteCallError.
func NewRemoteCallError(op string, err error) error {
	if err == nil {
		return nil
	}
	var rce *RemoteCallError
	if errors.As(err, &rce) {
		return err
	}
	return &RemoteCallError{Op: op, Err: err}
}
