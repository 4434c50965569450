package render

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// VotesRenderer renders DVM vote listings and vote transactions
type VotesRenderer struct {
	out     io.Writer
	network *config.Network
	now     time.Time
}

// NewVotesRenderer creates a new votes renderer
func NewVotesRenderer(out io.Writer, network *config.Network, now time.Time) *VotesRenderer {
	return &VotesRenderer{out: out, network: network, now: now}
}

// RenderList renders disputed assertions with their DVM phase.
func (r *VotesRenderer) RenderList(result *usecase.DisputedVotesResult) error {
	if len(result.Votes) == 0 {
		fmt.Fprintln(r.out, "No disputed assertions")
		return nil
	}

	t := newTable(r.out)
	t.AppendHeader(table.Row{"Assertion", "Claim", "Phase", "Time Left", "Your Vote", "Actions"})
	for _, v := range result.Votes {
		t.AppendRow(table.Row{
			idStyle.Sprint(ShortHex(v.Assertion.ID.Hex())),
			truncate(ClaimText(v.Assertion.Claim), 36),
			r.phase(v),
			r.remaining(v),
			commitmentLabel(v.Commitment),
			actionStyle.Sprint(joinActions(v.Actions)),
		})
	}
	t.Render()

	if result.Config != nil {
		fmt.Fprintln(r.out, timestampStyle.Sprintf("Commit %s · Reveal %s · %d disputed",
			FormatDuration(time.Duration(result.Config.CommitPhaseDuration)),
			FormatDuration(time.Duration(result.Config.RevealPhaseDuration)),
			len(result.Votes)))
	}
	return nil
}

func (r *VotesRenderer) phase(v *usecase.DisputedVote) string {
	if v.DvmErr != nil {
		return errorStyle.Sprint("DVM unavailable")
	}
	return phaseColor(v.Phase.Phase).Sprint(v.Phase.Phase.Label())
}

func (r *VotesRenderer) remaining(v *usecase.DisputedVote) string {
	if v.Phase.Remaining <= 0 {
		return timestampStyle.Sprint("-")
	}
	return FormatDuration(v.Phase.Remaining)
}

func commitmentLabel(c *domain.VoteCommitment) string {
	if c == nil {
		return timestampStyle.Sprint("-")
	}
	if c.Vote() {
		return successStyle.Sprint("YES (committed)")
	}
	return errorStyle.Sprint("NO (committed)")
}

// RenderCommit confirms a committed vote.
func (r *VotesRenderer) RenderCommit(result *usecase.CommitVoteResult) error {
	vote := "NO"
	if result.Commitment.Vote() {
		vote = "YES"
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Committed %s vote with %s", vote,
		FormatAmount(r.network, r.network.Contracts.VotingToken, result.Stake))))
	keyValue(r.out, "Request", result.RequestID.Hex())
	keyValue(r.out, "Commit hash", result.Commitment.CommitHash.Hex())
	renderOutcome(r.out, result.Outcome)
	if !result.Stored {
		fmt.Fprintln(r.out, FormatWarning("Dry run: no commitment was stored and stored salts were left untouched"))
		return nil
	}
	fmt.Fprintln(r.out, FormatWarning("Keep this machine's data directory: the salt needed to reveal is stored only here"))
	return nil
}

// RenderReveal confirms a revealed vote.
func (r *VotesRenderer) RenderReveal(result *usecase.RevealVoteResult) error {
	vote := "NO"
	if result.Commitment.Vote() {
		vote = "YES"
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Revealed %s vote", vote)))
	keyValue(r.out, "Request", result.RequestID.Hex())
	renderOutcome(r.out, result.Outcome)
	if result.Outcome != nil && result.Outcome.DryRun {
		fmt.Fprintln(r.out, FormatWarning("Dry run: the local commitment was kept"))
		return nil
	}
	if !result.CommitmentRemoved {
		fmt.Fprintln(r.out, FormatWarning("The local commitment could not be removed; run `nest commitments prune` later"))
	}
	return nil
}

// RenderAdvance confirms the move to the reveal phase.
func (r *VotesRenderer) RenderAdvance(result *usecase.AdvanceToRevealResult) error {
	fmt.Fprintln(r.out, FormatSuccess("Advanced request to the reveal phase"))
	keyValue(r.out, "Request", result.RequestID.Hex())
	if result.Request != nil {
		keyValue(r.out, "Phase", string(result.Request.Phase))
	}
	renderOutcome(r.out, result.Outcome)
	return nil
}

// RenderResolve reports how the resolve_price call left the request.
func (r *VotesRenderer) RenderResolve(result *usecase.ResolvePriceResult) error {
	switch result.Resolution {
	case domain.OutcomeResolved:
		outcome := "NO"
		if result.Request.ResolvedTrue() {
			outcome = "YES"
		}
		fmt.Fprintln(r.out, FormatSuccess("Price resolved: "+outcome))
	case domain.OutcomeRevealExtended:
		fmt.Fprintln(r.out, FormatWarning("Participation too low: the reveal phase was extended"))
	case domain.OutcomeEmergencyRequired:
		fmt.Fprintln(r.out, FormatWarning("Participation too low after the maximum extensions: emergency resolution required"))
	default:
		fmt.Fprintln(r.out, FormatWarning("Resolve submitted; the request state could not be confirmed"))
	}
	keyValue(r.out, "Request", result.RequestID.Hex())
	renderOutcome(r.out, result.Outcome)
	return nil
}

// RenderWatchUpdate prints one poll of the watch loop.
func (r *VotesRenderer) RenderWatchUpdate(generation uint64, at time.Time, result *usecase.DisputedVotesResult) error {
	r.now = at
	fmt.Fprintln(r.out, timestampStyle.Sprintf("── poll #%d at %s", generation, at.Format("15:04:05")))
	return r.RenderList(result)
}

func renderOutcome(out io.Writer, outcome *domain.TxOutcome) {
	if outcome == nil {
		return
	}
	if outcome.DryRun {
		keyValue(out, "Transaction", warningStyle.Sprint("dry run, not submitted"))
		return
	}
	keyValue(out, "Transaction", outcome.TransactionHash)
}
