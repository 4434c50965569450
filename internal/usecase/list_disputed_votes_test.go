package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListDisputedVotes(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	nowNs := uint64(now.UnixNano())

	dvmConfig := &domain.DvmConfig{
		CommitPhaseDuration: uint64(time.Hour),
		RevealPhaseDuration: uint64(time.Hour),
	}

	inCommit := &domain.Assertion{ID: id32(1), Disputer: "bob.testnet", ExpirationTimeNs: nowNs + 10}
	noRequest := &domain.Assertion{ID: id32(2), Disputer: "bob.testnet", ExpirationTimeNs: nowNs + 20}
	failing := &domain.Assertion{ID: id32(3), Disputer: "bob.testnet", ExpirationTimeNs: nowNs + 30}
	active := &domain.Assertion{ID: id32(4), ExpirationTimeNs: nowNs + 40}
	settled := &domain.Assertion{ID: id32(5), Disputer: "bob.testnet", Settled: true}

	reqID := id32(0x91)
	commitReq := &domain.PriceRequest{Phase: domain.VotingPhaseCommit, CommitStartTime: nowNs - uint64(time.Minute)}

	setup := func(t *testing.T) (*usecase.ListDisputedVotes, *MockIndexer, *MockViewer, *memoryStore) {
		cfg := testRuntimeConfig(t)
		indexer := &MockIndexer{}
		viewer := &MockViewer{}
		store := newMemoryStore()
		uc := usecase.NewListDisputedVotes(cfg, indexer, viewer, store, fixedClock{now}, usecase.NopProgress{}, discardLogger())
		return uc, indexer, viewer, store
	}

	t.Run("joins DVM state and degrades per item", func(t *testing.T) {
		uc, indexer, viewer, store := setup(t)

		indexer.On("ListAssertions", mock.Anything, usecase.AssertionQuery{Page: 1, PerPage: 100}).Return(&usecase.AssertionPage{
			Assertions: []*domain.Assertion{inCommit, noRequest, failing, active, settled},
			Total:      5,
		}, nil)
		viewer.On("GetConfig", mock.Anything).Return(dvmConfig, nil)
		viewer.On("GetDisputeRequest", mock.Anything, inCommit.ID).Return(&reqID, nil)
		viewer.On("GetDisputeRequest", mock.Anything, noRequest.ID).Return(nil, nil)
		viewer.On("GetDisputeRequest", mock.Anything, failing.ID).Return(nil, errors.New("rpc timeout"))
		viewer.On("GetRequest", mock.Anything, reqID).Return(commitReq, nil)

		c, err := domain.NewVoteCommitment(reqID, inCommit.ID, domain.PriceTrue(), id32(9), now)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "alice.testnet", c))

		result, err := uc.Run(ctx, usecase.ListDisputedVotesParams{Account: "alice.testnet"})
		require.NoError(t, err)
		require.Len(t, result.Votes, 3)

		byID := map[domain.Bytes32]*usecase.DisputedVote{}
		for _, v := range result.Votes {
			byID[v.Assertion.ID] = v
		}

		v := byID[inCommit.ID]
		require.NotNil(t, v.RequestID)
		assert.Equal(t, domain.PhaseCommit, v.Phase.Phase)
		assert.Equal(t, 59*time.Minute, v.Phase.Remaining)
		require.NotNil(t, v.Commitment)
		assert.Equal(t, []domain.VoteAction{domain.VoteActionCommit}, v.Actions)

		assert.Equal(t, domain.PhaseNoRequest, byID[noRequest.ID].Phase.Phase)
		assert.NoError(t, byID[noRequest.ID].DvmErr)

		assert.Error(t, byID[failing.ID].DvmErr)
		assert.Nil(t, byID[failing.ID].Request)
		assert.Equal(t, domain.PhaseNoRequest, byID[failing.ID].Phase.Phase)

		viewer.AssertNumberOfCalls(t, "GetDisputeRequest", 3)
		viewer.AssertNumberOfCalls(t, "GetRequest", 1)

		// newest expiration first
		assert.Equal(t, failing.ID, result.Votes[0].Assertion.ID)
	})

	t.Run("config failure fails the listing", func(t *testing.T) {
		uc, indexer, viewer, _ := setup(t)
		indexer.On("ListAssertions", mock.Anything, mock.Anything).Return(&usecase.AssertionPage{}, nil)
		viewer.On("GetConfig", mock.Anything).Return(nil, errors.New("boom"))

		_, err := uc.Run(ctx, usecase.ListDisputedVotesParams{})
		assert.ErrorContains(t, err, "voting config")
	})
}

// End to end over the derivations: propose, dispute, then watch the DVM move
// from commit into reveal.
func TestDisputeLifecycleScenario(t *testing.T) {
	const livenessNs = 7_200_000_000_000
	t0 := time.Unix(1_700_000_000, 0)

	a := &domain.Assertion{
		ID:               id32(0x01),
		Bond:             "1000000",
		ExpirationTimeNs: uint64(t0.UnixNano()) + livenessNs,
	}
	assert.Equal(t, domain.StatusActive, domain.DeriveStatus(a, t0))

	disputedAt := t0.Add(30 * time.Minute)
	a.Disputer = "bob.testnet"
	assert.Equal(t, domain.StatusDisputed, domain.DeriveStatus(a, disputedAt))

	cfg := domain.DvmConfig{CommitPhaseDuration: uint64(3600 * time.Second), RevealPhaseDuration: uint64(3600 * time.Second)}
	req := &domain.PriceRequest{Phase: domain.VotingPhaseCommit, CommitStartTime: uint64(disputedAt.UnixNano())}

	assert.Equal(t, domain.PhaseCommit, domain.DerivePhase(req, cfg, disputedAt.Add(3599*time.Second)).Phase)
	assert.Equal(t, domain.PhaseCommitEnded, domain.DerivePhase(req, cfg, disputedAt.Add(3600*time.Second)).Phase)

	// still disputed after liveness would have ended
	assert.Equal(t, domain.StatusDisputed, domain.DeriveStatus(a, t0.Add(3*time.Hour)))

	a.SettlementPending = true
	assert.Equal(t, domain.StatusPendingSettlement, domain.DeriveStatus(a, t0.Add(4*time.Hour)))
	assert.True(t, a.SettlementRetryable())

	a.SettlementPending = false
	a.Settled = true
	a.SettlementResolution = false
	assert.Equal(t, domain.StatusSettledFalse, domain.DeriveStatus(a, t0.Add(5*time.Hour)))
}
