package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/nest-oracle/nest-cli/internal/adapters/wallet"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRevealVote_DryRunKeepsCommitment(t *testing.T) {
	ctx := context.Background()
	cfg := testRuntimeConfig(t)
	requestID := id32(0x22)
	store := newMemoryStore()

	c, err := domain.NewVoteCommitment(requestID, id32(0xaa), domain.PriceTrue(), id32(0x07), time.Unix(0, 0))
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "alice.testnet", c))

	var out bytes.Buffer
	dry := wallet.NewDryRunTo("alice.testnet", &out)
	inv := &recordingInvalidator{}
	uc := usecase.NewRevealVote(testBuilder(cfg), dry, &MockViewer{}, store, inv, usecase.NopProgress{}, discardLogger())

	result, err := uc.Run(ctx, usecase.RevealVoteParams{RequestID: &requestID})
	require.NoError(t, err)
	assert.True(t, result.Outcome.DryRun)
	assert.False(t, result.CommitmentRemoved)
	assert.Contains(t, out.String(), "reveal_vote")

	kept, err := store.Get(ctx, "alice.testnet", requestID.Hex())
	require.NoError(t, err)
	assert.Equal(t, c.Salt, kept.Salt)
	assert.Empty(t, inv.Invalidated())
}

func TestCommitVote_DryRunLeavesStoredSaltAlone(t *testing.T) {
	ctx := context.Background()
	cfg := testRuntimeConfig(t)
	now := time.Unix(1_700_000_000, 0)
	requestID := id32(0x11)
	store := newMemoryStore()

	viewer := &MockViewer{}
	viewer.On("FtBalanceOf", mock.Anything, mock.Anything, mock.Anything).Return(votingPower, nil)

	live := &MockWallet{account: "alice.testnet"}
	live.On("CallFunction", mock.Anything, mock.Anything).Return(okOutcome, nil)
	landed, err := usecase.NewCommitVote(cfg, testBuilder(cfg), live, viewer, store, fixedClock{now}, usecase.NopInvalidator{}, usecase.NopProgress{}).
		WithEntropy(bytes.NewReader(make([]byte, 32))).
		Run(ctx, usecase.CommitVoteParams{RequestID: &requestID, Vote: true, Stake: "1"})
	require.NoError(t, err)
	assert.True(t, landed.Stored)

	dry := wallet.NewDryRunTo("alice.testnet", io.Discard)
	preview, err := usecase.NewCommitVote(cfg, testBuilder(cfg), dry, viewer, store, fixedClock{now}, usecase.NopInvalidator{}, usecase.NopProgress{}).
		WithEntropy(bytes.NewReader(bytes.Repeat([]byte{0xff}, 32))).
		Run(ctx, usecase.CommitVoteParams{RequestID: &requestID, Vote: false, Stake: "1"})
	require.NoError(t, err)
	assert.False(t, preview.Stored)
	assert.NotEqual(t, landed.Commitment.CommitHash, preview.Commitment.CommitHash)

	stored, err := store.Get(ctx, "alice.testnet", requestID.Hex())
	require.NoError(t, err)
	assert.Equal(t, landed.Commitment.CommitHash, stored.CommitHash)
	assert.Equal(t, landed.Commitment.Salt, stored.Salt)
}

func TestCommitVote_UnreadySignerStoresNothing(t *testing.T) {
	ctx := context.Background()
	cfg := testRuntimeConfig(t)
	requestID := id32(0x12)
	store := newMemoryStore()

	w := &MockWallet{account: "alice.testnet", notReady: fmt.Errorf("%w: no signer_url configured", domain.ErrWalletNotConnected)}
	viewer := &MockViewer{}
	uc := usecase.NewCommitVote(cfg, testBuilder(cfg), w, viewer, store, fixedClock{time.Unix(0, 0)}, usecase.NopInvalidator{}, usecase.NopProgress{})

	_, err := uc.Run(ctx, usecase.CommitVoteParams{RequestID: &requestID, Vote: true, Stake: "1"})
	assert.ErrorIs(t, err, domain.ErrWalletNotConnected)

	all, err := store.List(ctx, "alice.testnet")
	require.NoError(t, err)
	assert.Empty(t, all)
	viewer.AssertNotCalled(t, "FtBalanceOf", mock.Anything, mock.Anything, mock.Anything)
	w.AssertNotCalled(t, "CallFunction", mock.Anything, mock.Anything)
}
