package adapters

import (
	"fmt"

	"github.com/google/wire"
	"github.com/nest-oracle/nest-cli/internal/adapters/cache"
	"github.com/nest-oracle/nest-cli/internal/adapters/fs"
	"github.com/nest-oracle/nest-cli/internal/adapters/indexer"
	"github.com/nest-oracle/nest-cli/internal/adapters/interactive"
	"github.com/nest-oracle/nest-cli/internal/adapters/near"
	"github.com/nest-oracle/nest-cli/internal/adapters/progress"
	"github.com/nest-oracle/nest-cli/internal/adapters/sqlite"
	"github.com/nest-oracle/nest-cli/internal/adapters/wallet"
	"github.com/nest-oracle/nest-cli/internal/domain/calls"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// ProvideCommitmentStore selects the commitment store backend.
func ProvideCommitmentStore(cfg *config.RuntimeConfig) (usecase.CommitmentStore, error) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		return sqlite.NewCommitmentStore(cfg)
	case config.StoreJSON, "":
		return fs.NewCommitmentStoreAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// ProvideViewCache provides the per-process read cache
func ProvideViewCache() *cache.ViewCache {
	return cache.NewViewCache(cache.DefaultTTL)
}

// ProvideContractViewer provides the cached NEAR view client
func ProvideContractViewer(cfg *config.RuntimeConfig, c *cache.ViewCache) usecase.ContractViewer {
	return cache.NewCachedViewer(near.NewViewClient(cfg), c)
}

// ProvideIndexer provides the cached indexer client
func ProvideIndexer(cfg *config.RuntimeConfig, c *cache.ViewCache) usecase.Indexer {
	return cache.NewCachedIndexer(indexer.NewClient(cfg), c)
}

// ProvideWallet returns the dry-run wallet when --dry-run is set.
func ProvideWallet(cfg *config.RuntimeConfig) usecase.Wallet {
	if cfg.DryRun {
		return wallet.NewDryRun(cfg)
	}
	return wallet.NewRemoteSigner(cfg)
}

// ProvideCallBuilder binds the call builder to the configured network
func ProvideCallBuilder(cfg *config.RuntimeConfig) *calls.Builder {
	return calls.NewBuilder(cfg.Network)
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewLocalConfigStoreAdapter,
	wire.Bind(new(usecase.LocalConfigStore), new(*fs.LocalConfigStoreAdapter)),

	ProvideCommitmentStore,
)

// RemoteSet provides RPC, indexer and wallet implementations
var RemoteSet = wire.NewSet(
	ProvideViewCache,
	wire.Bind(new(usecase.CacheInvalidator), new(*cache.ViewCache)),

	ProvideContractViewer,
	ProvideIndexer,
	ProvideWallet,
	ProvideCallBuilder,
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.VoteSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.CommitmentSelector), new(*interactive.SelectorAdapter)),

	progress.NewSpinnerSink,
	wire.Bind(new(usecase.ProgressSink), new(*progress.SpinnerSink)),

	wire.InterfaceValue(new(usecase.Clock), usecase.SystemClock{}),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	RemoteSet,
	InteractiveSet,
)
