package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/calls"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
)

// ProposeAssertionParams contains parameters for proposing an assertion
type ProposeAssertionParams struct {
	Claim string
	// HashClaim stores the Keccak-256 of Claim instead of its text, which
	// allows claims longer than 32 bytes.
	HashClaim bool
	// Currency is a token contract id or a configured symbol such as "USDC".
	Currency          string
	Bond              string // human units, e.g. "100.5"
	Liveness          time.Duration
	CallbackRecipient string
	EscalationManager string
}

// ProposeAssertionResult contains the result of proposing an assertion
type ProposeAssertionResult struct {
	Claim    domain.Bytes32
	Currency string
	Bond     string // smallest unit
	Outcome  *domain.TxOutcome
}

// ProposeAssertion bonds a claim with the oracle
type ProposeAssertion struct {
	cfg         *config.RuntimeConfig
	builder     *calls.Builder
	wallet      Wallet
	viewer      ContractViewer
	invalidator CacheInvalidator
	sink        ProgressSink
}

// NewProposeAssertion creates a new ProposeAssertion use case
func NewProposeAssertion(
	cfg *config.RuntimeConfig,
	builder *calls.Builder,
	wallet Wallet,
	viewer ContractViewer,
	invalidator CacheInvalidator,
	sink ProgressSink,
) *ProposeAssertion {
	return &ProposeAssertion{
		cfg:         cfg,
		builder:     builder,
		wallet:      wallet,
		viewer:      viewer,
		invalidator: invalidator,
		sink:        sink,
	}
}

// Run executes the propose use case
func (uc *ProposeAssertion) Run(ctx context.Context, params ProposeAssertionParams) (*ProposeAssertionResult, error) {
	account, err := requireSigner(uc.wallet)
	if err != nil {
		return nil, err
	}

	claim, err := encodeClaim(params.Claim, params.HashClaim)
	if err != nil {
		return nil, err
	}

	currencyID, currency, err := resolveCurrency(uc.cfg.Network, params.Currency)
	if err != nil {
		return nil, err
	}

	bond, err := domain.ParseTokenAmount(params.Bond, currency.Decimals)
	if err != nil {
		return nil, err
	}

	liveness := params.Liveness
	if liveness == 0 {
		liveness = domain.DefaultLiveness
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "balance", Message: "Checking " + currency.Symbol + " balance", Spinner: true})
	balance, err := uc.viewer.FtBalanceOf(ctx, currencyID, account)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s balance: %w", currency.Symbol, err)
	}
	if err := domain.CheckBalance(bond, balance); err != nil {
		return nil, err
	}

	call, err := uc.builder.Propose(calls.ProposeParams{
		Claim:             claim,
		Asserter:          account,
		Currency:          currencyID,
		Bond:              bond,
		Liveness:          liveness,
		CallbackRecipient: params.CallbackRecipient,
		EscalationManager: params.EscalationManager,
	})
	if err != nil {
		return nil, err
	}

	outcome, err := submit(ctx, uc.wallet, uc.sink, "propose assertion", call)
	if err != nil {
		return nil, err
	}
	uc.invalidator.Invalidate(KeyAssertions, KeyBalances)

	return &ProposeAssertionResult{
		Claim:    claim,
		Currency: currencyID,
		Bond:     bond,
		Outcome:  outcome,
	}, nil
}

func encodeClaim(text string, hash bool) (domain.Bytes32, error) {
	if text == "" {
		return domain.ZeroBytes32, domain.ErrEmptyClaim
	}
	if hash {
		return domain.HashClaim(text), nil
	}
	if len(text) > 32 {
		return domain.ZeroBytes32, fmt.Errorf("%w: %d bytes", domain.ErrClaimTooLong, len(text))
	}
	return domain.EncodeFixed32(text), nil
}

// resolveCurrency accepts a configured token contract id or symbol.
func resolveCurrency(network *config.Network, idOrSymbol string) (string, config.Currency, error) {
	if c, ok := network.Currency(idOrSymbol); ok {
		return idOrSymbol, c, nil
	}
	if id, ok := network.FindCurrencyBySymbol(idOrSymbol); ok {
		return id, network.Currencies[id], nil
	}
	return "", config.Currency{}, fmt.Errorf("unknown currency %q on %s (configured: %v)", idOrSymbol, network.ID, network.CurrencyIDs())
}
