package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// AccountRenderer renders account, commitment and transaction output
type AccountRenderer struct {
	out     io.Writer
	network *config.Network
}

// NewAccountRenderer creates a new account renderer
func NewAccountRenderer(out io.Writer, network *config.Network) *AccountRenderer {
	return &AccountRenderer{out: out, network: network}
}

// RenderOverview renders voting power and bond token balances.
func (r *AccountRenderer) RenderOverview(result *usecase.AccountOverviewResult) error {
	fmt.Fprintln(r.out, headerStyle.Sprintf("Account %s", result.Account))
	fmt.Fprintln(r.out)

	t := newTable(r.out)
	t.AppendHeader(table.Row{"Token", "Contract", "Balance", "Storage"})
	for _, b := range append([]usecase.TokenBalance{result.VotingPower}, result.Currencies...) {
		storage := successStyle.Sprint("registered")
		if !b.Registered {
			storage = warningStyle.Sprint("not registered")
		}
		t.AppendRow(table.Row{
			b.Symbol,
			accountStyle.Sprint(b.ContractID),
			amountStyle.Sprint(domain.FormatTokenAmount(b.Balance, b.Decimals, displayDecimals)),
			storage,
		})
	}
	t.Render()
	return nil
}

// RenderCommitments lists stored commitments.
func (r *AccountRenderer) RenderCommitments(commitments []*domain.VoteCommitment) error {
	if len(commitments) == 0 {
		fmt.Fprintln(r.out, "No stored commitments")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"Request", "Assertion", "Vote", "Committed"})
	for _, c := range commitments {
		vote := errorStyle.Sprint("NO")
		if c.Vote() {
			vote = successStyle.Sprint("YES")
		}
		t.AppendRow(table.Row{
			idStyle.Sprint(c.RequestID),
			ShortHex(c.AssertionID),
			vote,
			timestampStyle.Sprint(formatTime(c.CommittedTime())),
		})
	}
	t.Render()
	return nil
}

// RenderDiscard confirms a discarded commitment.
func (r *AccountRenderer) RenderDiscard(c *domain.VoteCommitment) error {
	fmt.Fprintln(r.out, FormatSuccess("Discarded commitment for request "+c.RequestID))
	return nil
}

// RenderPrune reports pruned commitments.
func (r *AccountRenderer) RenderPrune(result *usecase.PruneCommitmentsResult, dryRun bool) error {
	if len(result.Removed) == 0 {
		fmt.Fprintf(r.out, "Nothing to prune (%d commitments kept)\n", result.Kept)
		return nil
	}
	verb := "Removed"
	if dryRun {
		verb = "Would remove"
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s %d resolved commitments, kept %d", verb, len(result.Removed), result.Kept)))
	for _, c := range result.Removed {
		fmt.Fprintf(r.out, "  - %s\n", c.RequestID)
	}
	return nil
}

// RenderPropose confirms a proposed assertion.
func (r *AccountRenderer) RenderPropose(result *usecase.ProposeAssertionResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Asserted %q with a bond of %s",
		ClaimText(result.Claim), FormatAmount(r.network, result.Currency, result.Bond))))
	renderOutcome(r.out, result.Outcome)
	return nil
}

// RenderDispute confirms a dispute.
func (r *AccountRenderer) RenderDispute(result *usecase.DisputeAssertionResult) error {
	a := result.Assertion
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Disputed %s with a bond of %s",
		a.ID.Hex(), FormatAmount(r.network, a.Currency, a.Bond))))
	fmt.Fprintln(r.out, "  The assertion now goes to a DVM vote.")
	renderOutcome(r.out, result.Outcome)
	return nil
}

// RenderSettle reports the settlement state read back after settling.
func (r *AccountRenderer) RenderSettle(result *usecase.SettleResult) error {
	switch {
	case result.State == nil:
		fmt.Fprintln(r.out, FormatWarning("Settlement submitted; the oracle state could not be read back"))
	case result.State.Settled:
		outcome := "false"
		if result.State.SettlementResolution {
			outcome = "true"
		}
		fmt.Fprintln(r.out, FormatSuccess("Settled as "+outcome))
	case result.PayoutPending:
		fmt.Fprintln(r.out, FormatWarning("Payout in progress"))
		if result.State.Retryable() {
			fmt.Fprintln(r.out, "  The payout callback did not complete; retry with `nest settle --retry`.")
		}
	default:
		fmt.Fprintln(r.out, FormatSuccess("Settlement submitted"))
	}
	keyValue(r.out, "Assertion", result.AssertionID.Hex())
	renderOutcome(r.out, result.Outcome)
	return nil
}

// RenderRegisterStorage confirms a storage registration.
func (r *AccountRenderer) RenderRegisterStorage(result *usecase.RegisterStorageResult) error {
	if result.AlreadyRegistered {
		fmt.Fprintf(r.out, "Already registered with %s\n", result.Token)
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess("Registered storage with "+result.Token))
	renderOutcome(r.out, result.Outcome)
	return nil
}

// RenderHealth renders the indexer status.
func (r *AccountRenderer) RenderHealth(status *usecase.IndexerStatus) error {
	state := successStyle.Sprint(status.Status)
	if status.Status != "ok" {
		state = warningStyle.Sprint(status.Status)
	}
	keyValue(r.out, "Indexer", r.network.IndexerURL)
	keyValue(r.out, "Status", state)
	keyValue(r.out, "Assertions", status.AssertionsCount)
	if status.LastBlockHeight != nil {
		keyValue(r.out, "Last block", *status.LastBlockHeight)
	} else {
		keyValue(r.out, "Last block", timestampStyle.Sprint("none yet"))
	}
	return nil
}
