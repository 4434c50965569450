package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/nest-oracle/nest-cli/internal/domain"
)

// ListCommitments lists the connected account's stored commitments, newest first
type ListCommitments struct {
	wallet Wallet
	store  CommitmentStore
}

// NewListCommitments creates a new ListCommitments use case
func NewListCommitments(wallet Wallet, store CommitmentStore) *ListCommitments {
	return &ListCommitments{wallet: wallet, store: store}
}

// Run executes the list use case
func (uc *ListCommitments) Run(ctx context.Context) ([]*domain.VoteCommitment, error) {
	account, err := requireAccount(uc.wallet)
	if err != nil {
		return nil, err
	}
	commitments, err := uc.store.List(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to load commitments: %w", err)
	}
	sort.Slice(commitments, func(i, j int) bool {
		return commitments[i].CommittedAt > commitments[j].CommittedAt
	})
	return commitments, nil
}

// DiscardCommitment deletes one stored commitment. After this the vote can no
// longer be revealed from this machine.
type DiscardCommitment struct {
	wallet      Wallet
	store       CommitmentStore
	invalidator CacheInvalidator
}

// NewDiscardCommitment creates a new DiscardCommitment use case
func NewDiscardCommitment(wallet Wallet, store CommitmentStore, invalidator CacheInvalidator) *DiscardCommitment {
	return &DiscardCommitment{wallet: wallet, store: store, invalidator: invalidator}
}

// Run executes the discard use case
func (uc *DiscardCommitment) Run(ctx context.Context, requestID string) (*domain.VoteCommitment, error) {
	account, err := requireAccount(uc.wallet)
	if err != nil {
		return nil, err
	}
	key, err := domain.NormalizeRequestID(requestID)
	if err != nil {
		return nil, err
	}

	commitment, err := uc.store.Get(ctx, account, key)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w for request %s", domain.ErrNoCommitmentFound, key)
		}
		return nil, fmt.Errorf("failed to load commitment: %w", err)
	}
	if err := uc.store.Delete(ctx, account, key); err != nil {
		return nil, fmt.Errorf("failed to delete commitment: %w", err)
	}
	uc.invalidator.Invalidate(KeyCommitments(account), KeyDisputedVotes)
	return commitment, nil
}

// PruneCommitmentsResult lists what was removed
type PruneCommitmentsResult struct {
	Removed []*domain.VoteCommitment
	Kept    int
}

// PruneCommitments removes commitments whose request has resolved or no
// longer exists. It only runs when asked; reads never clean up.
type PruneCommitments struct {
	wallet      Wallet
	viewer      ContractViewer
	store       CommitmentStore
	invalidator CacheInvalidator
	sink        ProgressSink
}

// NewPruneCommitments creates a new PruneCommitments use case
func NewPruneCommitments(
	wallet Wallet,
	viewer ContractViewer,
	store CommitmentStore,
	invalidator CacheInvalidator,
	sink ProgressSink,
) *PruneCommitments {
	return &PruneCommitments{
		wallet:      wallet,
		viewer:      viewer,
		store:       store,
		invalidator: invalidator,
		sink:        sink,
	}
}

// Run executes the prune use case. With dryRun nothing is deleted.
func (uc *PruneCommitments) Run(ctx context.Context, dryRun bool) (*PruneCommitmentsResult, error) {
	account, err := requireAccount(uc.wallet)
	if err != nil {
		return nil, err
	}
	commitments, err := uc.store.List(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to load commitments: %w", err)
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "checking",
		Message: fmt.Sprintf("Checking %d commitments", len(commitments)),
		Spinner: true,
	})

	stale := make(map[string]bool)
	result := &PruneCommitmentsResult{}
	for _, c := range commitments {
		requestID, err := c.RequestIDBytes()
		if err != nil {
			return nil, err
		}
		req, err := uc.viewer.GetRequest(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("failed to read request %s: %w", c.RequestID, err)
		}
		if req == nil || req.Phase == domain.VotingPhaseResolved {
			stale[c.RequestID] = true
			result.Removed = append(result.Removed, c)
		}
	}
	result.Kept = len(commitments) - len(result.Removed)

	if dryRun || len(stale) == 0 {
		return result, nil
	}

	if _, err := uc.store.Prune(ctx, account, func(c *domain.VoteCommitment) bool {
		return !stale[c.RequestID]
	}); err != nil {
		return nil, fmt.Errorf("failed to prune commitments: %w", err)
	}
	uc.invalidator.Invalidate(KeyCommitments(account))
	return result, nil
}
