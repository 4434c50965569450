package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/calls"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
)

// CommitVoteParams contains parameters for committing a vote
type CommitVoteParams struct {
	AssertionID domain.Bytes32
	// RequestID skips the dispute request lookup when already known.
	RequestID *domain.Bytes32
	Vote      bool
	Stake     string // human units of the voting token
}

// CommitVoteResult contains the result of committing a vote
type CommitVoteResult struct {
	RequestID  domain.Bytes32
	Commitment *domain.VoteCommitment
	Stake      string // smallest unit
	Outcome    *domain.TxOutcome
	// Stored is false on a dry run: a preview never touches the store, so an
	// existing commitment for the same request keeps its salt.
	Stored bool
}

// CommitVote stakes a hidden vote on a DVM request. The commitment (price and
// salt) is stored locally before anything is submitted, so a failed or
// indeterminate submission never loses the salt.
type CommitVote struct {
	cfg         *config.RuntimeConfig
	builder     *calls.Builder
	wallet      Wallet
	viewer      ContractViewer
	store       CommitmentStore
	clock       Clock
	invalidator CacheInvalidator
	sink        ProgressSink
	entropy     io.Reader
}

// NewCommitVote creates a new CommitVote use case
func NewCommitVote(
	cfg *config.RuntimeConfig,
	builder *calls.Builder,
	wallet Wallet,
	viewer ContractViewer,
	store CommitmentStore,
	clock Clock,
	invalidator CacheInvalidator,
	sink ProgressSink,
) *CommitVote {
	return &CommitVote{
		cfg:         cfg,
		builder:     builder,
		wallet:      wallet,
		viewer:      viewer,
		store:       store,
		clock:       clock,
		invalidator: invalidator,
		sink:        sink,
	}
}

// WithEntropy replaces crypto/rand as the salt source.
func (uc *CommitVote) WithEntropy(r io.Reader) *CommitVote {
	uc.entropy = r
	return uc
}

// Run executes the commit use case
func (uc *CommitVote) Run(ctx context.Context, params CommitVoteParams) (*CommitVoteResult, error) {
	account, err := requireSigner(uc.wallet)
	if err != nil {
		return nil, err
	}

	network := uc.cfg.Network
	stake, err := domain.ParseTokenAmount(params.Stake, network.VotingTokenDecimals)
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "balance", Message: "Checking voting power", Spinner: true})
	power, err := uc.viewer.FtBalanceOf(ctx, network.Contracts.VotingToken, account)
	if err != nil {
		return nil, fmt.Errorf("failed to read voting power: %w", err)
	}
	if err := domain.CheckBalance(stake, power); err != nil {
		return nil, err
	}

	requestID, err := resolveRequestID(ctx, uc.viewer, params.AssertionID, params.RequestID)
	if err != nil {
		return nil, err
	}

	price := domain.VotePrice(params.Vote)
	salt, err := uc.salt()
	if err != nil {
		return nil, err
	}
	commitment, err := domain.NewVoteCommitment(requestID, params.AssertionID, price, salt, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	stored := !uc.wallet.IsDryRun()
	if stored {
		if err := uc.store.Put(ctx, account, commitment); err != nil {
			return nil, fmt.Errorf("failed to store commitment: %w", err)
		}
		uc.invalidator.Invalidate(KeyCommitments(account))
	}

	call, err := uc.builder.CommitVote(requestID, commitment.CommitHash, stake)
	if err != nil {
		return nil, err
	}

	outcome, err := submit(ctx, uc.wallet, uc.sink, "commit vote", call)
	if err != nil {
		return nil, err
	}
	if stored {
		uc.invalidator.Invalidate(KeyDisputedVotes, KeyBalances)
	}

	return &CommitVoteResult{
		RequestID:  requestID,
		Commitment: commitment,
		Stake:      stake,
		Outcome:    outcome,
		Stored:     stored,
	}, nil
}

func (uc *CommitVote) salt() (domain.Bytes32, error) {
	if uc.entropy != nil {
		return domain.GenerateSaltFrom(uc.entropy)
	}
	return domain.GenerateSalt()
}
