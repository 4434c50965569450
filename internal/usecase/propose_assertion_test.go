package usecase_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProposeAssertion(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*usecase.ProposeAssertion, *MockWallet, *MockViewer) {
		cfg := testRuntimeConfig(t)
		wallet := &MockWallet{account: "alice.testnet"}
		viewer := &MockViewer{}
		uc := usecase.NewProposeAssertion(cfg, testBuilder(cfg), wallet, viewer, usecase.NopInvalidator{}, usecase.NopProgress{})
		return uc, wallet, viewer
	}

	t.Run("resolves currency symbol and bonds", func(t *testing.T) {
		uc, wallet, viewer := setup(t)
		viewer.On("FtBalanceOf", mock.Anything, "wrap.testnet", "alice.testnet").Return("2000000000000000000000000", nil)
		wallet.On("CallFunction", mock.Anything, mock.Anything).Return(okOutcome, nil)

		result, err := uc.Run(ctx, usecase.ProposeAssertionParams{
			Claim:    "BTC > 50000",
			Currency: "wNEAR",
			Bond:     "1",
			Liveness: 6 * time.Hour,
		})
		require.NoError(t, err)
		assert.Equal(t, "wrap.testnet", result.Currency)
		assert.Equal(t, "1000000000000000000000000", result.Bond)
		assert.Equal(t, "BTC > 50000", domain.DecodeFixed32(result.Claim))

		call := wallet.Calls[0].Arguments.Get(1).(domain.FunctionCall)
		raw, err := call.ArgsJSON()
		require.NoError(t, err)
		var args struct {
			Msg string `json:"msg"`
		}
		require.NoError(t, json.Unmarshal(raw, &args))
		assert.Contains(t, args.Msg, `"liveness_ns":"21600000000000"`)
	})

	t.Run("default liveness", func(t *testing.T) {
		uc, wallet, viewer := setup(t)
		viewer.On("FtBalanceOf", mock.Anything, mock.Anything, mock.Anything).Return("1000000", nil)
		wallet.On("CallFunction", mock.Anything, mock.Anything).Return(okOutcome, nil)

		_, err := uc.Run(ctx, usecase.ProposeAssertionParams{Claim: "x", Currency: "USDC", Bond: "1"})
		require.NoError(t, err)

		call := wallet.Calls[0].Arguments.Get(1).(domain.FunctionCall)
		raw, _ := call.ArgsJSON()
		assert.Contains(t, string(raw), `7200000000000`)
	})

	t.Run("long claims need hashing", func(t *testing.T) {
		uc, wallet, viewer := setup(t)
		long := strings.Repeat("a", 33)

		_, err := uc.Run(ctx, usecase.ProposeAssertionParams{Claim: long, Currency: "USDC", Bond: "1"})
		assert.ErrorIs(t, err, domain.ErrClaimTooLong)

		viewer.On("FtBalanceOf", mock.Anything, mock.Anything, mock.Anything).Return("1000000", nil)
		wallet.On("CallFunction", mock.Anything, mock.Anything).Return(okOutcome, nil)
		result, err := uc.Run(ctx, usecase.ProposeAssertionParams{Claim: long, HashClaim: true, Currency: "USDC", Bond: "1"})
		require.NoError(t, err)
		assert.Equal(t, domain.HashClaim(long), result.Claim)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			params  usecase.ProposeAssertionParams
			balance string
			wantIs  error
			wantAs  any
		}{
			{name: "empty claim", params: usecase.ProposeAssertionParams{Currency: "USDC", Bond: "1"}, wantIs: domain.ErrEmptyClaim},
			{name: "bad bond", params: usecase.ProposeAssertionParams{Claim: "c", Currency: "USDC", Bond: "-1"}, wantAs: new(*domain.InvalidAmountError)},
			{name: "insufficient balance", params: usecase.ProposeAssertionParams{Claim: "c", Currency: "USDC", Bond: "2"}, balance: "1000000", wantAs: new(*domain.InsufficientStakeError)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				uc, wallet, viewer := setup(t)
				viewer.On("FtBalanceOf", mock.Anything, mock.Anything, mock.Anything).Return(tt.balance, nil)

				_, err := uc.Run(ctx, tt.params)
				if tt.wantIs != nil {
					assert.ErrorIs(t, err, tt.wantIs)
				}
				if tt.wantAs != nil {
					assert.ErrorAs(t, err, tt.wantAs)
				}
				wallet.AssertNotCalled(t, "CallFunction", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("unknown currency", func(t *testing.T) {
		uc, _, _ := setup(t)
		_, err := uc.Run(ctx, usecase.ProposeAssertionParams{Claim: "c", Currency: "DOGE", Bond: "1"})
		assert.ErrorContains(t, err, "unknown currency")
	})
}

func TestDisputeAssertion(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	id := id32(0x55)

	active := &domain.Assertion{
		ID:               id,
		Asserter:         "alice.testnet",
		Currency:         "wrap.testnet",
		Bond:             "1000000",
		ExpirationTimeNs: uint64(now.Add(time.Hour).UnixNano()),
	}

	setup := func(t *testing.T) (*usecase.DisputeAssertion, *MockWallet, *MockIndexer, *MockViewer) {
		cfg := testRuntimeConfig(t)
		wallet := &MockWallet{account: "bob.testnet"}
		indexer := &MockIndexer{}
		viewer := &MockViewer{}
		uc := usecase.NewDisputeAssertion(testBuilder(cfg), wallet, indexer, viewer, fixedClock{now}, usecase.NopInvalidator{}, usecase.NopProgress{})
		return uc, wallet, indexer, viewer
	}

	t.Run("disputes with the assertion's own bond", func(t *testing.T) {
		uc, wallet, indexer, viewer := setup(t)
		indexer.On("GetAssertion", mock.Anything, id).Return(active, nil)
		viewer.On("FtBalanceOf", mock.Anything, "wrap.testnet", "bob.testnet").Return("1000000", nil)
		wallet.On("CallFunction", mock.Anything, mock.Anything).Return(okOutcome, nil)

		_, err := uc.Run(ctx, id)
		require.NoError(t, err)

		call := wallet.Calls[0].Arguments.Get(1).(domain.FunctionCall)
		assert.Equal(t, "wrap.testnet", call.ContractID)
		raw, _ := call.ArgsJSON()
		assert.Contains(t, string(raw), `"amount":"1000000"`)
		assert.Contains(t, string(raw), `DisputeAssertion`)
	})

	t.Run("expired assertion cannot be disputed", func(t *testing.T) {
		uc, wallet, indexer, _ := setup(t)
		expired := *active
		expired.ExpirationTimeNs = uint64(now.Add(-time.Second).UnixNano())
		indexer.On("GetAssertion", mock.Anything, id).Return(&expired, nil)

		_, err := uc.Run(ctx, id)
		assert.ErrorIs(t, err, domain.ErrAssertionNotDisputable)
		wallet.AssertNotCalled(t, "CallFunction", mock.Anything, mock.Anything)
	})

	t.Run("already disputed", func(t *testing.T) {
		uc, _, indexer, _ := setup(t)
		disputed := *active
		disputed.Disputer = "carol.testnet"
		indexer.On("GetAssertion", mock.Anything, id).Return(&disputed, nil)

		_, err := uc.Run(ctx, id)
		assert.ErrorIs(t, err, domain.ErrAssertionNotDisputable)
	})
}
