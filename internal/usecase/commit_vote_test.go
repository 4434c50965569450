package usecase_test

import (
	"bytes"
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

const votingPower = "5000000000000000000000000" // 5 NEST

func TestCommitVote(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	assertionID := id32(0xaa)
	requestID := id32(0x11)

	setup := func(t *testing.T) (*usecase.CommitVote, *MockWallet, *MockViewer, *memoryStore) {
		cfg := testRuntimeConfig(t)
		wallet := &MockWallet{account: "alice.testnet"}
		viewer := &MockViewer{}
		store := newMemoryStore()
		uc := usecase.NewCommitVote(cfg, testBuilder(cfg), wallet, viewer, store,
			fixedClock{now}, &recordingInvalidator{}, usecase.NopProgress{})
		return uc, wallet, viewer, store
	}

	t.Run("stores commitment before submitting", func(t *testing.T) {
		uc, wallet, viewer, store := setup(t)
		viewer.On("FtBalanceOf", mock.Anything, "nest-token-1.testnet", "alice.testnet").Return(votingPower, nil)
		viewer.On("GetDisputeRequest", mock.Anything, assertionID).Return(&requestID, nil)

		var storedAtSubmit []*domain.VoteCommitment
		wallet.On("CallFunction", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			storedAtSubmit, _ = store.List(ctx, "alice.testnet")
		}).Return(okOutcome, nil)

		uc.WithEntropy(bytes.NewReader(make([]byte, 32)))
		result, err := uc.Run(ctx, usecase.CommitVoteParams{AssertionID: assertionID, Vote: true, Stake: "1.5"})
		require.NoError(t, err)

		require.Len(t, storedAtSubmit, 1, "commitment must be durable before the wallet is called")
		assert.Equal(t, requestID.Hex(), storedAtSubmit[0].RequestID)
		assert.Equal(t, "1500000000000000000000000", result.Stake)
		assert.Equal(t, domain.PriceTrueString, result.Commitment.Price)
		assert.Equal(t, now.UnixMilli(), result.Commitment.CommittedAt)
		assert.Equal(t,
			domain.MustParseBytes32("0xb0207c0279d3dc93db401ad17cb6e4082b6242ab49f5409ec2f29c348c695ac5"),
			result.Commitment.CommitHash)

		call := wallet.Calls[0].Arguments.Get(1).(domain.FunctionCall)
		assert.Equal(t, "ft_transfer_call", call.Method)
		assert.Equal(t, "nest-token-1.testnet", call.ContractID)
	})

	t.Run("failing wallet leaves commitment stored", func(t *testing.T) {
		uc, wallet, viewer, store := setup(t)
		viewer.On("FtBalanceOf", mock.Anything, mock.Anything, mock.Anything).Return(votingPower, nil)
		wallet.On("CallFunction", mock.Anything, mock.Anything).Return(nil, errors.New("wallet rejected"))

		_, err := uc.Run(ctx, usecase.CommitVoteParams{AssertionID: assertionID, RequestID: &requestID, Vote: false, Stake: "1"})

		var remoteErr *domain.RemoteCallError
		require.ErrorAs(t, err, &remoteErr)
		assert.Contains(t, err.Error(), "wallet rejected")

		stored, err := store.Get(ctx, "alice.testnet", requestID.Hex())
		require.NoError(t, err)
		assert.Equal(t, domain.PriceFalseString, stored.Price)
		assert.NoError(t, stored.Verify())
		viewer.AssertNotCalled(t, "GetDisputeRequest", mock.Anything, mock.Anything)
	})

	t.Run("validation errors happen before any side effect", func(t *testing.T) {
		tests := []struct {
			name    string
			stake   string
			balance string
			check   func(t *testing.T, err error)
		}{
			{
				name:  "non numeric",
				stake: "abc",
				check: func(t *testing.T, err error) {
					var e *domain.InvalidAmountError
					assert.ErrorAs(t, err, &e)
				},
			},
			{
				name:  "zero",
				stake: "0",
				check: func(t *testing.T, err error) {
					var e *domain.InvalidAmountError
					assert.ErrorAs(t, err, &e)
				},
			},
			{
				name:    "above voting power",
				stake:   "6",
				balance: votingPower,
				check: func(t *testing.T, err error) {
					var e *domain.InsufficientStakeError
					require.ErrorAs(t, err, &e)
					assert.Equal(t, votingPower, e.Available)
				},
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				uc, wallet, viewer, store := setup(t)
				viewer.On("FtBalanceOf", mock.Anything, mock.Anything, mock.Anything).Return(tt.balance, nil)

				_, err := uc.Run(ctx, usecase.CommitVoteParams{AssertionID: assertionID, RequestID: &requestID, Vote: true, Stake: tt.stake})
				tt.check(t, err)

				wallet.AssertNotCalled(t, "CallFunction", mock.Anything, mock.Anything)
				stored, _ := store.List(ctx, "alice.testnet")
				assert.Empty(t, stored)
			})
		}
	})

	t.Run("no dispute request", func(t *testing.T) {
		uc, wallet, viewer, _ := setup(t)
		viewer.On("FtBalanceOf", mock.Anything, mock.Anything, mock.Anything).Return(votingPower, nil)
		viewer.On("GetDisputeRequest", mock.Anything, assertionID).Return(nil, nil)

		_, err := uc.Run(ctx, usecase.CommitVoteParams{AssertionID: assertionID, Vote: true, Stake: "1"})
		assert.ErrorIs(t, err, domain.ErrNoDisputeRequest)
		wallet.AssertNotCalled(t, "CallFunction", mock.Anything, mock.Anything)
	})

	t.Run("wallet not connected", func(t *testing.T) {
		uc, wallet, _, _ := setup(t)
		wallet.account = ""

		_, err := uc.Run(ctx, usecase.CommitVoteParams{AssertionID: assertionID, Vote: true, Stake: "1"})
		assert.ErrorIs(t, err, domain.ErrWalletNotConnected)
	})
}
