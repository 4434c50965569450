package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// disputedVotesPageSize is the indexer page fetched per listing.
const disputedVotesPageSize = 100

// DisputedVote is a disputed assertion joined with its DVM request, the
// derived phase and the caller's stored commitment.
type DisputedVote struct {
	Assertion  *domain.Assertion
	Status     domain.AssertionStatus
	RequestID  *domain.Bytes32
	Request    *domain.PriceRequest
	Phase      domain.PhaseView
	Commitment *domain.VoteCommitment
	Actions    []domain.VoteAction
	// DvmErr is set when the DVM lookup for this item failed; the item is
	// still listed, without DVM data.
	DvmErr error
}

// ListDisputedVotesParams contains parameters for listing disputed votes
type ListDisputedVotesParams struct {
	// Account joins stored commitments; empty skips the join.
	Account string
	Page    int
}

// DisputedVotesResult contains the joined listing
type DisputedVotesResult struct {
	Votes  []*DisputedVote
	Config *domain.DvmConfig
	Total  int
}

// ListDisputedVotes lists assertions under DVM vote with their request state
type ListDisputedVotes struct {
	cfg     *config.RuntimeConfig
	indexer Indexer
	viewer  ContractViewer
	store   CommitmentStore
	clock   Clock
	sink    ProgressSink
	log     *slog.Logger
}

// NewListDisputedVotes creates a new ListDisputedVotes use case
func NewListDisputedVotes(
	cfg *config.RuntimeConfig,
	indexer Indexer,
	viewer ContractViewer,
	store CommitmentStore,
	clock Clock,
	sink ProgressSink,
	log *slog.Logger,
) *ListDisputedVotes {
	return &ListDisputedVotes{
		cfg:     cfg,
		indexer: indexer,
		viewer:  viewer,
		store:   store,
		clock:   clock,
		sink:    sink,
		log:     log,
	}
}

// Run executes the listing
func (uc *ListDisputedVotes) Run(ctx context.Context, params ListDisputedVotesParams) (*DisputedVotesResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "loading", Message: "Loading disputed assertions", Spinner: true})

	page, err := uc.indexer.ListAssertions(ctx, AssertionQuery{
		Page:    max(params.Page, 1),
		PerPage: disputedVotesPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assertions: %w", err)
	}

	now := uc.clock.Now()
	disputed := lo.Filter(page.Assertions, func(a *domain.Assertion, _ int) bool {
		st := domain.DeriveStatus(a, now)
		return a.IsDisputed() && (st == domain.StatusDisputed || st == domain.StatusPendingSettlement)
	})

	dvmConfig, err := uc.viewer.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read voting config: %w", err)
	}

	commitments := map[string]*domain.VoteCommitment{}
	if params.Account != "" {
		stored, err := uc.store.List(ctx, params.Account)
		if err != nil {
			return nil, fmt.Errorf("failed to load commitments: %w", err)
		}
		commitments = lo.KeyBy(stored, func(c *domain.VoteCommitment) string { return c.RequestID })
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "dvm",
		Message: fmt.Sprintf("Reading DVM state for %d disputes", len(disputed)),
		Spinner: true,
	})

	votes := make([]*DisputedVote, len(disputed))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(uc.cfg.FanOut, 1))
	for i, a := range disputed {
		g.Go(func() error {
			votes[i] = uc.loadVote(gctx, a, now, *dvmConfig, commitments)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].Assertion.ExpirationTimeNs > votes[j].Assertion.ExpirationTimeNs
	})

	return &DisputedVotesResult{
		Votes:  votes,
		Config: dvmConfig,
		Total:  page.Total,
	}, nil
}

// loadVote does one get_dispute_request and at most one get_request. Failures
// degrade the item instead of failing the listing.
func (uc *ListDisputedVotes) loadVote(
	ctx context.Context,
	a *domain.Assertion,
	now time.Time,
	cfg domain.DvmConfig,
	commitments map[string]*domain.VoteCommitment,
) *DisputedVote {
	vote := &DisputedVote{Assertion: a, Status: domain.DeriveStatus(a, now)}

	requestID, err := uc.viewer.GetDisputeRequest(ctx, a.ID)
	if err != nil {
		uc.log.Debug("dispute request lookup failed", "assertion", a.ID.Hex(), "error", err)
		vote.DvmErr = err
		return vote
	}
	vote.RequestID = requestID

	if requestID != nil {
		req, err := uc.viewer.GetRequest(ctx, *requestID)
		if err != nil {
			uc.log.Debug("request lookup failed", "request", requestID.Hex(), "error", err)
			vote.DvmErr = err
		} else {
			vote.Request = req
		}
		vote.Commitment = commitments[requestID.Hex()]
	}

	vote.Phase = domain.DerivePhase(vote.Request, cfg, now)
	vote.Actions = domain.VoteActions(vote.Phase.Phase, vote.Commitment != nil)
	return vote
}
