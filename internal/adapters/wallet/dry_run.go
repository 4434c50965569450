package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// DryRun prints calls instead of submitting them and keeps a record of each.
type DryRun struct {
	account string
	out     io.Writer

	mu    sync.Mutex
	calls []domain.FunctionCall
}

// NewDryRun creates a dry-run wallet writing to stderr.
func NewDryRun(cfg *config.RuntimeConfig) *DryRun {
	return NewDryRunTo(cfg.Account, os.Stderr)
}

// NewDryRunTo creates a dry-run wallet writing to out.
func NewDryRunTo(account string, out io.Writer) *DryRun {
	return &DryRun{account: account, out: out}
}

// SignedAccountID returns the configured account.
func (d *DryRun) SignedAccountID() string {
	return d.account
}

// Ready only needs an account; nothing is signed.
func (d *DryRun) Ready() error {
	if d.account == "" {
		return domain.ErrWalletNotConnected
	}
	return nil
}

func (d *DryRun) IsDryRun() bool { return true }

// CallFunction records and prints the call.
func (d *DryRun) CallFunction(_ context.Context, call domain.FunctionCall) (*domain.TxOutcome, error) {
	if d.account == "" {
		return nil, domain.ErrWalletNotConnected
	}
	args, err := call.ArgsJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}
	pretty, err := json.MarshalIndent(json.RawMessage(args), "  ", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to format args: %w", err)
	}

	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()

	fmt.Fprintf(d.out, "%s %s.%s\n", color.New(color.FgYellow, color.Bold).Sprint("[dry-run]"), call.ContractID, call.Method)
	fmt.Fprintf(d.out, "  signer:  %s\n", d.account)
	fmt.Fprintf(d.out, "  gas:     %s\n", call.Gas)
	fmt.Fprintf(d.out, "  deposit: %s\n", call.Deposit)
	fmt.Fprintf(d.out, "  args:    %s\n", pretty)

	return &domain.TxOutcome{SignerID: d.account, DryRun: true}, nil
}

// Calls returns the calls recorded so far.
func (d *DryRun) Calls() []domain.FunctionCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.FunctionCall(nil), d.calls...)
}

// Ensure DryRun implements Wallet
var _ usecase.Wallet = (*DryRun)(nil)
