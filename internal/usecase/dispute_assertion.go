package usecase

import (
	"context"
	"fmt"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/calls"
)

// DisputeAssertionResult contains the result of disputing an assertion
type DisputeAssertionResult struct {
	Assertion *domain.Assertion
	Outcome   *domain.TxOutcome
}

// DisputeAssertion bonds against an active assertion, escalating it to the DVM
type DisputeAssertion struct {
	builder     *calls.Builder
	wallet      Wallet
	indexer     Indexer
	viewer      ContractViewer
	clock       Clock
	invalidator CacheInvalidator
	sink        ProgressSink
}

// NewDisputeAssertion creates a new DisputeAssertion use case
func NewDisputeAssertion(
	builder *calls.Builder,
	wallet Wallet,
	indexer Indexer,
	viewer ContractViewer,
	clock Clock,
	invalidator CacheInvalidator,
	sink ProgressSink,
) *DisputeAssertion {
	return &DisputeAssertion{
		builder:     builder,
		wallet:      wallet,
		indexer:     indexer,
		viewer:      viewer,
		clock:       clock,
		invalidator: invalidator,
		sink:        sink,
	}
}

// Run executes the dispute use case
func (uc *DisputeAssertion) Run(ctx context.Context, assertionID domain.Bytes32) (*DisputeAssertionResult, error) {
	account, err := requireSigner(uc.wallet)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "loading", Message: "Loading assertion", Spinner: true})
	assertion, err := uc.indexer.GetAssertion(ctx, assertionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assertion %s: %w", assertionID.Hex(), err)
	}

	if status := domain.DeriveStatus(assertion, uc.clock.Now()); status != domain.StatusActive {
		return nil, fmt.Errorf("%w: assertion is %s", domain.ErrAssertionNotDisputable, status)
	}

	balance, err := uc.viewer.FtBalanceOf(ctx, assertion.Currency, account)
	if err != nil {
		return nil, fmt.Errorf("failed to read bond token balance: %w", err)
	}
	if err := domain.CheckBalance(assertion.Bond, balance); err != nil {
		return nil, err
	}

	call, err := uc.builder.Dispute(assertion.ID, account, assertion.Currency, assertion.Bond)
	if err != nil {
		return nil, err
	}

	outcome, err := submit(ctx, uc.wallet, uc.sink, "dispute assertion", call)
	if err != nil {
		return nil, err
	}
	uc.invalidator.Invalidate(KeyAssertions, KeyDisputedVotes, KeyBalances, KeyOracleAssertion(assertion.ID))

	return &DisputeAssertionResult{
		Assertion: assertion,
		Outcome:   outcome,
	}, nil
}
