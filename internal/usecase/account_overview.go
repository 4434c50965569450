package usecase

import (
	"context"
	"fmt"

	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"golang.org/x/sync/errgroup"
)

// TokenBalance is the connected account's position on one token
type TokenBalance struct {
	ContractID string
	Symbol     string
	Decimals   int32
	Balance    string // smallest unit
	Registered bool
}

// AccountOverviewResult contains voting power and bond token balances
type AccountOverviewResult struct {
	Account     string
	VotingPower TokenBalance
	Currencies  []TokenBalance
}

// AccountOverview reads the connected account's balances
type AccountOverview struct {
	cfg    *config.RuntimeConfig
	wallet Wallet
	viewer ContractViewer
	sink   ProgressSink
}

// NewAccountOverview creates a new AccountOverview use case
func NewAccountOverview(cfg *config.RuntimeConfig, wallet Wallet, viewer ContractViewer, sink ProgressSink) *AccountOverview {
	return &AccountOverview{cfg: cfg, wallet: wallet, viewer: viewer, sink: sink}
}

// Run executes the overview use case
func (uc *AccountOverview) Run(ctx context.Context) (*AccountOverviewResult, error) {
	account, err := requireAccount(uc.wallet)
	if err != nil {
		return nil, err
	}

	network := uc.cfg.Network
	ids := network.CurrencyIDs()
	result := &AccountOverviewResult{
		Account: account,
		VotingPower: TokenBalance{
			ContractID: network.Contracts.VotingToken,
			Symbol:     network.VotingTokenSymbol,
			Decimals:   network.VotingTokenDecimals,
		},
		Currencies: make([]TokenBalance, len(ids)),
	}
	for i, id := range ids {
		c := network.Currencies[id]
		result.Currencies[i] = TokenBalance{ContractID: id, Symbol: c.Symbol, Decimals: c.Decimals}
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "loading", Message: "Reading balances", Spinner: true})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(uc.cfg.FanOut, 1))
	g.Go(func() error { return uc.fill(gctx, account, &result.VotingPower) })
	for i := range result.Currencies {
		g.Go(func() error { return uc.fill(gctx, account, &result.Currencies[i]) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *AccountOverview) fill(ctx context.Context, account string, tb *TokenBalance) error {
	balance, err := uc.viewer.FtBalanceOf(ctx, tb.ContractID, account)
	if err != nil {
		return fmt.Errorf("failed to read %s balance: %w", tb.Symbol, err)
	}
	storage, err := uc.viewer.StorageBalanceOf(ctx, tb.ContractID, account)
	if err != nil {
		return fmt.Errorf("failed to read %s storage registration: %w", tb.Symbol, err)
	}
	tb.Balance = balance
	tb.Registered = storage != nil
	return nil
}
