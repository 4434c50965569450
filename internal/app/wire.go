//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/nest-oracle/nest-cli/internal/adapters"
	"github.com/nest-oracle/nest-cli/internal/config"
	"github.com/nest-oracle/nest-cli/internal/logging"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/spf13/viper"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewListAssertions,
		usecase.NewShowAssertion,
		usecase.NewProposeAssertion,
		usecase.NewDisputeAssertion,
		usecase.NewSettleAssertion,
		usecase.NewRetrySettlement,
		usecase.NewListDisputedVotes,
		usecase.NewWatchVotes,
		usecase.NewCommitVote,
		usecase.NewRevealVote,
		usecase.NewAdvanceToReveal,
		usecase.NewResolvePrice,
		usecase.NewListCommitments,
		usecase.NewDiscardCommitment,
		usecase.NewPruneCommitments,
		usecase.NewAccountOverview,
		usecase.NewRegisterStorage,
		usecase.NewIndexerHealth,
		usecase.NewShowConfig,
		usecase.NewSetConfig,
		usecase.NewRemoveConfig,

		// App
		NewApp,
	)
	return nil, nil
}
