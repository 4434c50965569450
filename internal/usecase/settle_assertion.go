package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/calls"
)

// SettleResult contains the outcome of a settle or retry call plus a fresh
// read of the oracle's settlement flags.
type SettleResult struct {
	AssertionID domain.Bytes32
	Outcome     *domain.TxOutcome
	// State is nil when the re-read failed or found nothing; the write may
	// still have landed.
	State *domain.OracleAssertionState
	// PayoutPending is true while the oracle still marks settlement_pending,
	// i.e. the payout callback has not completed yet.
	PayoutPending bool
}

// SettleAssertion finalizes an assertion
type SettleAssertion struct {
	builder     *calls.Builder
	wallet      Wallet
	viewer      ContractViewer
	invalidator CacheInvalidator
	sink        ProgressSink
	log         *slog.Logger
}

// NewSettleAssertion creates a new SettleAssertion use case
func NewSettleAssertion(
	builder *calls.Builder,
	wallet Wallet,
	viewer ContractViewer,
	invalidator CacheInvalidator,
	sink ProgressSink,
	log *slog.Logger,
) *SettleAssertion {
	return &SettleAssertion{
		builder:     builder,
		wallet:      wallet,
		viewer:      viewer,
		invalidator: invalidator,
		sink:        sink,
		log:         log,
	}
}

// Run executes the settle use case
func (uc *SettleAssertion) Run(ctx context.Context, assertionID domain.Bytes32) (*SettleResult, error) {
	if _, err := requireSigner(uc.wallet); err != nil {
		return nil, err
	}

	outcome, err := submit(ctx, uc.wallet, uc.sink, "settle assertion", uc.builder.Settle(assertionID))
	if err != nil {
		return nil, err
	}

	return rereadSettlement(ctx, uc.viewer, uc.invalidator, uc.log, assertionID, outcome), nil
}

// RetrySettlement re-issues a settlement whose payout callback failed
type RetrySettlement struct {
	builder     *calls.Builder
	wallet      Wallet
	viewer      ContractViewer
	invalidator CacheInvalidator
	sink        ProgressSink
	log         *slog.Logger
}

// NewRetrySettlement creates a new RetrySettlement use case
func NewRetrySettlement(
	builder *calls.Builder,
	wallet Wallet,
	viewer ContractViewer,
	invalidator CacheInvalidator,
	sink ProgressSink,
	log *slog.Logger,
) *RetrySettlement {
	return &RetrySettlement{
		builder:     builder,
		wallet:      wallet,
		viewer:      viewer,
		invalidator: invalidator,
		sink:        sink,
		log:         log,
	}
}

// Run executes the retry use case. It refuses unless the oracle reports the
// assertion as retryable.
func (uc *RetrySettlement) Run(ctx context.Context, assertionID domain.Bytes32) (*SettleResult, error) {
	if _, err := requireSigner(uc.wallet); err != nil {
		return nil, err
	}

	uc.invalidator.Invalidate(KeyOracleAssertion(assertionID))
	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "loading", Message: "Reading settlement state", Spinner: true})
	state, err := uc.viewer.GetOracleAssertion(ctx, assertionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read settlement state: %w", err)
	}
	if state == nil {
		return nil, fmt.Errorf("%w: oracle has no assertion %s", domain.ErrNotFound, assertionID.Hex())
	}
	if !state.Retryable() {
		return nil, fmt.Errorf("%w: settled=%t pending=%t in_flight=%t",
			domain.ErrSettlementNotRetryable, state.Settled, state.SettlementPending, state.SettlementInFlight)
	}

	outcome, err := submit(ctx, uc.wallet, uc.sink, "retry settlement", uc.builder.RetrySettlement(assertionID))
	if err != nil {
		return nil, err
	}

	return rereadSettlement(ctx, uc.viewer, uc.invalidator, uc.log, assertionID, outcome), nil
}

func rereadSettlement(
	ctx context.Context,
	viewer ContractViewer,
	invalidator CacheInvalidator,
	log *slog.Logger,
	assertionID domain.Bytes32,
	outcome *domain.TxOutcome,
) *SettleResult {
	invalidator.Invalidate(KeyAssertions, KeyDisputedVotes, KeyBalances, KeyOracleAssertion(assertionID))

	result := &SettleResult{AssertionID: assertionID, Outcome: outcome}
	state, err := viewer.GetOracleAssertion(ctx, assertionID)
	if err != nil {
		log.Warn("failed to re-read settlement state", "assertion", assertionID.Hex(), "error", err)
		return result
	}
	if state == nil {
		log.Warn("oracle returned no settlement state", "assertion", assertionID.Hex())
		return result
	}
	result.State = state
	result.PayoutPending = state.SettlementPending
	return result
}
