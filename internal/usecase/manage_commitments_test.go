package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedCommitments(t *testing.T, store *memoryStore, account string, ids ...domain.Bytes32) {
	t.Helper()
	for i, id := range ids {
		c, err := domain.NewVoteCommitment(id, id32(0xee), domain.PriceFalse(), id32(byte(i)), time.UnixMilli(int64(1000*(i+1))))
		require.NoError(t, err)
		require.NoError(t, store.Put(context.Background(), account, c))
	}
}

func TestListCommitments_NewestFirst(t *testing.T) {
	store := newMemoryStore()
	seedCommitments(t, store, "alice.testnet", id32(1), id32(2), id32(3))

	uc := usecase.NewListCommitments(&MockWallet{account: "alice.testnet"}, store)
	list, err := uc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, id32(3).Hex(), list[0].RequestID)
	assert.Equal(t, id32(1).Hex(), list[2].RequestID)
}

func TestDiscardCommitment(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	seedCommitments(t, store, "alice.testnet", id32(1))
	uc := usecase.NewDiscardCommitment(&MockWallet{account: "alice.testnet"}, store, usecase.NopInvalidator{})

	// unprefixed ids normalize to the stored key
	raw := "0101010101010101010101010101010101010101010101010101010101010101"
	removed, err := uc.Run(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, id32(1).Hex(), removed.RequestID)

	_, err = uc.Run(ctx, raw)
	assert.ErrorIs(t, err, domain.ErrNoCommitmentFound)

	_, err = uc.Run(ctx, "0x1234")
	var encErr *domain.EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestPruneCommitments(t *testing.T) {
	ctx := context.Background()
	resolved, pending, gone := id32(1), id32(2), id32(3)

	setup := func(t *testing.T) (*usecase.PruneCommitments, *memoryStore) {
		store := newMemoryStore()
		seedCommitments(t, store, "alice.testnet", resolved, pending, gone)
		viewer := &MockViewer{}
		viewer.On("GetRequest", mock.Anything, resolved).Return(&domain.PriceRequest{Phase: domain.VotingPhaseResolved}, nil)
		viewer.On("GetRequest", mock.Anything, pending).Return(&domain.PriceRequest{Phase: domain.VotingPhaseReveal}, nil)
		viewer.On("GetRequest", mock.Anything, gone).Return(nil, nil)
		uc := usecase.NewPruneCommitments(&MockWallet{account: "alice.testnet"}, viewer, store, usecase.NopInvalidator{}, usecase.NopProgress{})
		return uc, store
	}

	t.Run("dry run keeps everything", func(t *testing.T) {
		uc, store := setup(t)
		result, err := uc.Run(ctx, true)
		require.NoError(t, err)
		assert.Len(t, result.Removed, 2)
		assert.Equal(t, 1, result.Kept)

		all, _ := store.List(ctx, "alice.testnet")
		assert.Len(t, all, 3)
	})

	t.Run("removes resolved and missing requests", func(t *testing.T) {
		uc, store := setup(t)
		_, err := uc.Run(ctx, false)
		require.NoError(t, err)

		all, _ := store.List(ctx, "alice.testnet")
		require.Len(t, all, 1)
		assert.Equal(t, pending.Hex(), all[0].RequestID)
	})
}
