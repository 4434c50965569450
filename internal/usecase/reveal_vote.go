package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/calls"
)

// RevealVoteParams contains parameters for revealing a vote
type RevealVoteParams struct {
	AssertionID domain.Bytes32
	RequestID   *domain.Bytes32
}

// RevealVoteResult contains the result of revealing a vote
type RevealVoteResult struct {
	RequestID  domain.Bytes32
	Commitment *domain.VoteCommitment
	Outcome    *domain.TxOutcome
	// CommitmentRemoved is false when the reveal landed but the local
	// record could not be deleted, and always false on a dry run.
	CommitmentRemoved bool
}

// RevealVote discloses a stored commitment. The commitment is removed only
// after the reveal succeeds.
type RevealVote struct {
	builder     *calls.Builder
	wallet      Wallet
	viewer      ContractViewer
	store       CommitmentStore
	invalidator CacheInvalidator
	sink        ProgressSink
	log         *slog.Logger
}

// NewRevealVote creates a new RevealVote use case
func NewRevealVote(
	builder *calls.Builder,
	wallet Wallet,
	viewer ContractViewer,
	store CommitmentStore,
	invalidator CacheInvalidator,
	sink ProgressSink,
	log *slog.Logger,
) *RevealVote {
	return &RevealVote{
		builder:     builder,
		wallet:      wallet,
		viewer:      viewer,
		store:       store,
		invalidator: invalidator,
		sink:        sink,
		log:         log,
	}
}

// Run executes the reveal use case
func (uc *RevealVote) Run(ctx context.Context, params RevealVoteParams) (*RevealVoteResult, error) {
	account, err := requireSigner(uc.wallet)
	if err != nil {
		return nil, err
	}

	requestID, err := resolveRequestID(ctx, uc.viewer, params.AssertionID, params.RequestID)
	if err != nil {
		return nil, err
	}

	commitment, err := uc.store.Get(ctx, account, requestID.Hex())
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w for request %s", domain.ErrNoCommitmentFound, requestID.Hex())
		}
		return nil, fmt.Errorf("failed to load commitment: %w", err)
	}

	price, err := commitment.PriceInt()
	if err != nil {
		return nil, err
	}
	call, err := uc.builder.RevealVote(requestID, price, commitment.Salt)
	if err != nil {
		return nil, err
	}

	outcome, err := submit(ctx, uc.wallet, uc.sink, "reveal vote", call)
	if err != nil {
		return nil, err
	}

	result := &RevealVoteResult{
		RequestID:  requestID,
		Commitment: commitment,
		Outcome:    outcome,
	}
	// nothing was revealed on a dry run; the salt must survive it
	if outcome.DryRun || uc.wallet.IsDryRun() {
		return result, nil
	}
	if err := uc.store.Delete(ctx, account, commitment.RequestID); err != nil {
		uc.log.Warn("vote revealed but the local commitment could not be removed",
			"request", commitment.RequestID, "error", err)
	} else {
		result.CommitmentRemoved = true
	}
	uc.invalidator.Invalidate(KeyDisputedVotes, KeyCommitments(account))

	return result, nil
}
