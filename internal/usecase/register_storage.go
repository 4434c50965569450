package usecase

import (
	"context"
	"fmt"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/calls"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
)

// RegisterStorageResult contains the result of a storage registration
type RegisterStorageResult struct {
	Token             string
	AlreadyRegistered bool
	Outcome           *domain.TxOutcome
}

// RegisterStorage registers the connected account on a token contract so it
// can receive transfers
type RegisterStorage struct {
	cfg         *config.RuntimeConfig
	builder     *calls.Builder
	wallet      Wallet
	viewer      ContractViewer
	invalidator CacheInvalidator
	sink        ProgressSink
}

// NewRegisterStorage creates a new RegisterStorage use case
func NewRegisterStorage(
	cfg *config.RuntimeConfig,
	builder *calls.Builder,
	wallet Wallet,
	viewer ContractViewer,
	invalidator CacheInvalidator,
	sink ProgressSink,
) *RegisterStorage {
	return &RegisterStorage{
		cfg:         cfg,
		builder:     builder,
		wallet:      wallet,
		viewer:      viewer,
		invalidator: invalidator,
		sink:        sink,
	}
}

// Run executes the registration. token is a contract id, a configured symbol,
// or the voting token symbol.
func (uc *RegisterStorage) Run(ctx context.Context, token string) (*RegisterStorageResult, error) {
	account, err := requireSigner(uc.wallet)
	if err != nil {
		return nil, err
	}

	tokenID := token
	network := uc.cfg.Network
	if token == network.VotingTokenSymbol || token == network.Contracts.VotingToken {
		tokenID = network.Contracts.VotingToken
	} else {
		tokenID, _, err = resolveCurrency(network, token)
		if err != nil {
			return nil, err
		}
	}

	existing, err := uc.viewer.StorageBalanceOf(ctx, tokenID, account)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage registration: %w", err)
	}
	if existing != nil {
		return &RegisterStorageResult{Token: tokenID, AlreadyRegistered: true}, nil
	}

	outcome, err := submit(ctx, uc.wallet, uc.sink, "storage deposit", uc.builder.StorageDeposit(tokenID, account))
	if err != nil {
		return nil, err
	}
	uc.invalidator.Invalidate(KeyStorage)

	return &RegisterStorageResult{Token: tokenID, Outcome: outcome}, nil
}
