package render

import (
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// AssertionJSON is the --json shape of an assertion. Byte fields are hex.
type AssertionJSON struct {
	ID                   string                   `json:"id"`
	Claim                string                   `json:"claim"`
	ClaimText            string                   `json:"claim_text"`
	Identifier           string                   `json:"identifier"`
	Asserter             string                   `json:"asserter"`
	Disputer             string                   `json:"disputer,omitempty"`
	Currency             string                   `json:"currency"`
	Bond                 string                   `json:"bond"`
	ExpirationTime       time.Time                `json:"expiration_time"`
	CallbackRecipient    string                   `json:"callback_recipient,omitempty"`
	EscalationManager    string                   `json:"escalation_manager,omitempty"`
	Settled              bool                     `json:"settled"`
	SettlementPending    bool                     `json:"settlement_pending"`
	SettlementInFlight   bool                     `json:"settlement_in_flight"`
	SettlementResolution bool                     `json:"settlement_resolution"`
	Status               domain.AssertionStatus   `json:"status"`
	Actions              []domain.AssertionAction `json:"actions"`
	BlockHeight          uint64                   `json:"block_height,omitempty"`
	TransactionID        string                   `json:"transaction_id,omitempty"`
}

// NewAssertionJSON converts a listed assertion.
func NewAssertionJSON(v *usecase.AssertionView) AssertionJSON {
	a := v.Assertion
	actions := v.Actions
	if actions == nil {
		actions = []domain.AssertionAction{}
	}
	return AssertionJSON{
		ID:                   a.ID.Hex(),
		Claim:                a.Claim.Hex(),
		ClaimText:            ClaimText(a.Claim),
		Identifier:           domain.DecodeForDisplay(a.Identifier),
		Asserter:             a.Asserter,
		Disputer:             a.Disputer,
		Currency:             a.Currency,
		Bond:                 a.Bond,
		ExpirationTime:       a.ExpirationTime().UTC(),
		CallbackRecipient:    a.CallbackRecipient,
		EscalationManager:    a.EscalationManager,
		Settled:              a.Settled,
		SettlementPending:    a.SettlementPending,
		SettlementInFlight:   a.SettlementInFlight,
		SettlementResolution: a.SettlementResolution,
		Status:               v.Status,
		Actions:              actions,
		BlockHeight:          a.BlockHeight,
		TransactionID:        a.TransactionID,
	}
}

// AssertionListJSON is the --json shape of an assertion page.
type AssertionListJSON struct {
	Assertions []AssertionJSON `json:"assertions"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
}

// NewAssertionListJSON converts a page of assertions.
func NewAssertionListJSON(result *usecase.ListAssertionsResult) AssertionListJSON {
	out := AssertionListJSON{
		Assertions: make([]AssertionJSON, 0, len(result.Assertions)),
		Total:      result.Total,
		Page:       result.Page,
		PerPage:    result.PerPage,
	}
	for _, v := range result.Assertions {
		out.Assertions = append(out.Assertions, NewAssertionJSON(v))
	}
	return out
}

// PhaseJSON is the --json shape of a derived DVM phase.
type PhaseJSON struct {
	Phase            string     `json:"phase"`
	Label            string     `json:"label"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds"`
}

func newPhaseJSON(p domain.PhaseView) PhaseJSON {
	out := PhaseJSON{
		Phase:            p.Phase.String(),
		Label:            p.Phase.Label(),
		RemainingSeconds: int64(p.Remaining / time.Second),
	}
	if !p.EndsAt.IsZero() {
		t := p.EndsAt.UTC()
		out.EndsAt = &t
	}
	return out
}

// AssertionDetailJSON adds DVM state to AssertionJSON.
type AssertionDetailJSON struct {
	AssertionJSON
	OracleSynced bool                 `json:"oracle_synced"`
	RequestID    string               `json:"request_id,omitempty"`
	Request      *domain.PriceRequest `json:"request,omitempty"`
	Phase        *PhaseJSON           `json:"phase,omitempty"`
}

// NewAssertionDetailJSON converts a single assertion lookup.
func NewAssertionDetailJSON(d *usecase.AssertionDetail) AssertionDetailJSON {
	out := AssertionDetailJSON{
		AssertionJSON: NewAssertionJSON(d.AssertionView),
		OracleSynced:  d.OracleSynced,
		Request:       d.Request,
	}
	if d.RequestID != nil {
		out.RequestID = d.RequestID.Hex()
	}
	if d.Phase != nil {
		p := newPhaseJSON(*d.Phase)
		out.Phase = &p
	}
	return out
}

// DisputedVoteJSON is the --json shape of one disputed vote.
type DisputedVoteJSON struct {
	Assertion     AssertionJSON        `json:"assertion"`
	RequestID     string               `json:"request_id,omitempty"`
	Request       *domain.PriceRequest `json:"request,omitempty"`
	Phase         PhaseJSON            `json:"phase"`
	HasCommitment bool                 `json:"has_commitment"`
	CommittedVote *bool                `json:"committed_vote,omitempty"`
	Actions       []domain.VoteAction  `json:"actions"`
	Error         string               `json:"error,omitempty"`
}

// DisputedVotesJSON is the --json shape of the vote listing.
type DisputedVotesJSON struct {
	Votes  []DisputedVoteJSON `json:"votes"`
	Config *domain.DvmConfig  `json:"config"`
	Total  int                `json:"total"`
}

// NewDisputedVotesJSON converts the vote listing.
func NewDisputedVotesJSON(result *usecase.DisputedVotesResult) DisputedVotesJSON {
	out := DisputedVotesJSON{
		Votes:  make([]DisputedVoteJSON, 0, len(result.Votes)),
		Config: result.Config,
		Total:  result.Total,
	}
	for _, v := range result.Votes {
		actions := v.Actions
		if actions == nil {
			actions = []domain.VoteAction{}
		}
		item := DisputedVoteJSON{
			Assertion: NewAssertionJSON(&usecase.AssertionView{Assertion: v.Assertion, Status: v.Status}),
			Request:   v.Request,
			Phase:     newPhaseJSON(v.Phase),
			Actions:   actions,
		}
		if v.RequestID != nil {
			item.RequestID = v.RequestID.Hex()
		}
		if v.Commitment != nil {
			vote := v.Commitment.Vote()
			item.HasCommitment = true
			item.CommittedVote = &vote
		}
		if v.DvmErr != nil {
			item.Error = v.DvmErr.Error()
		}
		out.Votes = append(out.Votes, item)
	}
	return out
}

// TransactionJSON is the --json shape of every state-changing command.
type TransactionJSON struct {
	Action               string                `json:"action"`
	AssertionID          string                `json:"assertion_id,omitempty"`
	RequestID            string                `json:"request_id,omitempty"`
	Claim                string                `json:"claim,omitempty"`
	Currency             string                `json:"currency,omitempty"`
	Amount               string                `json:"amount,omitempty"`
	Vote                 *bool                 `json:"vote,omitempty"`
	CommitHash           string                `json:"commit_hash,omitempty"`
	CommitmentStored     *bool                 `json:"commitment_stored,omitempty"`
	CommitmentRemoved    *bool                 `json:"commitment_removed,omitempty"`
	Settled              *bool                 `json:"settled,omitempty"`
	SettlementResolution *bool                 `json:"settlement_resolution,omitempty"`
	PayoutPending        bool                  `json:"payout_pending,omitempty"`
	Phase                string                `json:"phase,omitempty"`
	Resolution           domain.ResolveOutcome `json:"resolution,omitempty"`
	Outcome              *domain.TxOutcome     `json:"outcome"`
}

// NewProposeJSON converts a proposal.
func NewProposeJSON(r *usecase.ProposeAssertionResult) TransactionJSON {
	return TransactionJSON{Action: "propose", Claim: r.Claim.Hex(), Currency: r.Currency, Amount: r.Bond, Outcome: r.Outcome}
}

// NewDisputeJSON converts a dispute.
func NewDisputeJSON(r *usecase.DisputeAssertionResult) TransactionJSON {
	a := r.Assertion
	return TransactionJSON{Action: "dispute", AssertionID: a.ID.Hex(), Currency: a.Currency, Amount: a.Bond, Outcome: r.Outcome}
}

// NewSettleJSON converts a settlement or payout retry.
func NewSettleJSON(r *usecase.SettleResult) TransactionJSON {
	out := TransactionJSON{Action: "settle", AssertionID: r.AssertionID.Hex(), PayoutPending: r.PayoutPending, Outcome: r.Outcome}
	if r.State != nil {
		settled, resolution := r.State.Settled, r.State.SettlementResolution
		out.Settled = &settled
		if settled {
			out.SettlementResolution = &resolution
		}
	}
	return out
}

// NewCommitJSON converts a vote commit. The salt is never printed.
func NewCommitJSON(r *usecase.CommitVoteResult) TransactionJSON {
	vote := r.Commitment.Vote()
	return TransactionJSON{
		Action:           "commit_vote",
		AssertionID:      r.Commitment.AssertionID,
		RequestID:        r.RequestID.Hex(),
		Amount:           r.Stake,
		Vote:             &vote,
		CommitHash:       r.Commitment.CommitHash.Hex(),
		CommitmentStored: &r.Stored,
		Outcome:          r.Outcome,
	}
}

// NewRevealJSON converts a vote reveal.
func NewRevealJSON(r *usecase.RevealVoteResult) TransactionJSON {
	out := TransactionJSON{Action: "reveal_vote", RequestID: r.RequestID.Hex(), CommitmentRemoved: &r.CommitmentRemoved, Outcome: r.Outcome}
	if r.Commitment != nil {
		vote := r.Commitment.Vote()
		out.AssertionID = r.Commitment.AssertionID
		out.Vote = &vote
	}
	return out
}

// NewAdvanceJSON converts an advance to reveal.
func NewAdvanceJSON(r *usecase.AdvanceToRevealResult) TransactionJSON {
	out := TransactionJSON{Action: "advance_to_reveal", RequestID: r.RequestID.Hex(), Outcome: r.Outcome}
	if r.Request != nil {
		out.Phase = string(r.Request.Phase)
	}
	return out
}

// NewResolveJSON converts a price resolution.
func NewResolveJSON(r *usecase.ResolvePriceResult) TransactionJSON {
	out := TransactionJSON{Action: "resolve_price", RequestID: r.RequestID.Hex(), Resolution: r.Resolution, Outcome: r.Outcome}
	if r.Request != nil {
		out.Phase = string(r.Request.Phase)
	}
	return out
}

// CommitmentJSON is the --json shape of a stored commitment, without its salt.
type CommitmentJSON struct {
	RequestID   string    `json:"request_id"`
	AssertionID string    `json:"assertion_id"`
	Vote        bool      `json:"vote"`
	Price       string    `json:"price"`
	CommitHash  string    `json:"commit_hash"`
	CommittedAt time.Time `json:"committed_at"`
}

// NewCommitmentsJSON converts stored commitments.
func NewCommitmentsJSON(commitments []*domain.VoteCommitment) []CommitmentJSON {
	out := make([]CommitmentJSON, 0, len(commitments))
	for _, c := range commitments {
		out = append(out, CommitmentJSON{
			RequestID:   c.RequestID,
			AssertionID: c.AssertionID,
			Vote:        c.Vote(),
			Price:       c.Price,
			CommitHash:  c.CommitHash.Hex(),
			CommittedAt: c.CommittedTime().UTC(),
		})
	}
	return out
}
