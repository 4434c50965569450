package usecase

import (
	"context"
	"log/slog"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/calls"
)

// VoteRequestParams identifies a DVM request directly or through its assertion
type VoteRequestParams struct {
	AssertionID domain.Bytes32
	RequestID   *domain.Bytes32
}

// AdvanceToRevealResult contains the result of advancing a request
type AdvanceToRevealResult struct {
	RequestID domain.Bytes32
	Outcome   *domain.TxOutcome
	// Request is the re-read request, nil if the read failed.
	Request *domain.PriceRequest
}

// AdvanceToReveal moves a request whose commit window has ended into reveal
type AdvanceToReveal struct {
	builder     *calls.Builder
	wallet      Wallet
	viewer      ContractViewer
	invalidator CacheInvalidator
	sink        ProgressSink
	log         *slog.Logger
}

// NewAdvanceToReveal creates a new AdvanceToReveal use case
func NewAdvanceToReveal(
	builder *calls.Builder,
	wallet Wallet,
	viewer ContractViewer,
	invalidator CacheInvalidator,
	sink ProgressSink,
	log *slog.Logger,
) *AdvanceToReveal {
	return &AdvanceToReveal{
		builder:     builder,
		wallet:      wallet,
		viewer:      viewer,
		invalidator: invalidator,
		sink:        sink,
		log:         log,
	}
}

// Run executes the advance use case
func (uc *AdvanceToReveal) Run(ctx context.Context, params VoteRequestParams) (*AdvanceToRevealResult, error) {
	if _, err := requireSigner(uc.wallet); err != nil {
		return nil, err
	}
	requestID, err := resolveRequestID(ctx, uc.viewer, params.AssertionID, params.RequestID)
	if err != nil {
		return nil, err
	}

	outcome, err := submit(ctx, uc.wallet, uc.sink, "advance to reveal", uc.builder.AdvanceToReveal(requestID))
	if err != nil {
		return nil, err
	}
	uc.invalidator.Invalidate(KeyDisputedVotes)

	result := &AdvanceToRevealResult{RequestID: requestID, Outcome: outcome}
	if req, err := uc.viewer.GetRequest(ctx, requestID); err != nil {
		uc.log.Warn("failed to re-read request", "request", requestID.Hex(), "error", err)
	} else {
		result.Request = req
	}
	return result, nil
}

// ResolvePriceResult contains the result of resolving a request
type ResolvePriceResult struct {
	RequestID domain.Bytes32
	Outcome   *domain.TxOutcome
	Request   *domain.PriceRequest
	// Resolution classifies the re-read request. It is informational.
	Resolution domain.ResolveOutcome
}

// ResolvePrice tallies the reveals of a request whose reveal window has ended
type ResolvePrice struct {
	builder     *calls.Builder
	wallet      Wallet
	viewer      ContractViewer
	invalidator CacheInvalidator
	sink        ProgressSink
	log         *slog.Logger
}

// NewResolvePrice creates a new ResolvePrice use case
func NewResolvePrice(
	builder *calls.Builder,
	wallet Wallet,
	viewer ContractViewer,
	invalidator CacheInvalidator,
	sink ProgressSink,
	log *slog.Logger,
) *ResolvePrice {
	return &ResolvePrice{
		builder:     builder,
		wallet:      wallet,
		viewer:      viewer,
		invalidator: invalidator,
		sink:        sink,
		log:         log,
	}
}

// Run executes the resolve use case
func (uc *ResolvePrice) Run(ctx context.Context, params VoteRequestParams) (*ResolvePriceResult, error) {
	if _, err := requireSigner(uc.wallet); err != nil {
		return nil, err
	}
	requestID, err := resolveRequestID(ctx, uc.viewer, params.AssertionID, params.RequestID)
	if err != nil {
		return nil, err
	}

	outcome, err := submit(ctx, uc.wallet, uc.sink, "resolve price", uc.builder.ResolvePrice(requestID))
	if err != nil {
		return nil, err
	}
	uc.invalidator.Invalidate(KeyDisputedVotes, KeyAssertions)

	result := &ResolvePriceResult{
		RequestID:  requestID,
		Outcome:    outcome,
		Resolution: domain.OutcomeUnknown,
	}
	req, err := uc.viewer.GetRequest(ctx, requestID)
	if err != nil {
		uc.log.Warn("failed to re-read request", "request", requestID.Hex(), "error", err)
		return result, nil
	}
	result.Request = req
	result.Resolution = domain.ClassifyResolveOutcome(req)
	return result, nil
}

