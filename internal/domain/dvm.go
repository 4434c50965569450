package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"time"
)

// VotingPhase is the phase the voting contract reports for a request.
type VotingPhase string

const (
	VotingPhaseCommit   VotingPhase = "Commit"
	VotingPhaseReveal   VotingPhase = "Reveal"
	VotingPhaseResolved VotingPhase = "Resolved"
)

// RequestStatus is the voting contract's request status.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"
	RequestStatusActive   RequestStatus = "Active"
	RequestStatusResolved RequestStatus = "Resolved"
)

// DecimalString holds an integer that the contract may emit either as a JSON
// number or as a JSON string. The decimal text is preserved exactly.
type DecimalString string

// UnmarshalJSON accepts a JSON number or a string of decimal digits.
func (d *DecimalString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	if _, ok := new(big.Int).SetString(string(data), 10); !ok {
		return &EncodingError{Input: string(data), Reason: "expected an integer"}
	}
	*d = DecimalString(data)
	return nil
}

// Int parses the value.
func (d DecimalString) Int() (*big.Int, error) {
	v, ok := new(big.Int).SetString(string(d), 10)
	if !ok {
		return nil, &EncodingError{Input: string(d), Reason: "expected an integer"}
	}
	return v, nil
}

// PriceRequest is a DVM price request as returned by the voting contract's get_request.
type PriceRequest struct {
	Identifier                 string         `json:"identifier"`
	Timestamp                  uint64         `json:"timestamp"`
	AncillaryData              []int          `json:"ancillary_data"`
	Requester                  string         `json:"requester"`
	Status                     RequestStatus  `json:"status"`
	Phase                      VotingPhase    `json:"phase"`
	CommitStartTime            uint64         `json:"commit_start_time"`
	RevealStartTime            uint64         `json:"reveal_start_time"`
	ResolvedPrice              *DecimalString `json:"resolved_price"`
	RevealedStake              *DecimalString `json:"revealed_stake,omitempty"`
	LowParticipationExtensions uint32         `json:"low_participation_extensions,omitempty"`
	EmergencyRequired          bool           `json:"emergency_required,omitempty"`
}

// Validate rejects phases and prices this client does not understand.
func (r *PriceRequest) Validate() error {
	switch r.Phase {
	case VotingPhaseCommit, VotingPhaseReveal, VotingPhaseResolved:
	default:
		return fmt.Errorf("unknown voting phase %q", r.Phase)
	}
	if r.ResolvedPrice != nil {
		if _, err := ParsePrice(string(*r.ResolvedPrice)); err != nil {
			return err
		}
	}
	return nil
}

// ResolvedTrue reports whether the resolved price reads as TRUE (>= 1e18).
// It is false while unresolved.
func (r *PriceRequest) ResolvedTrue() bool {
	if r.ResolvedPrice == nil {
		return false
	}
	p, err := r.ResolvedPrice.Int()
	if err != nil {
		return false
	}
	return p.Cmp(PriceTrue()) >= 0
}

// DvmConfig holds the voting contract's phase timing, all durations in nanoseconds.
type DvmConfig struct {
	CommitPhaseDuration  uint64 `json:"commit_phase_duration"`
	RevealPhaseDuration  uint64 `json:"reveal_phase_duration"`
	MinParticipationRate uint64 `json:"min_participation_rate"`
}

// DvmPhase is the client's view of where a dispute's vote stands.
type DvmPhase int

const (
	PhaseNoRequest DvmPhase = iota
	PhaseCommit
	PhaseCommitEnded
	PhaseReveal
	PhaseRevealEnded
	PhaseResolved
)

// AllDvmPhases lists every phase; tests use it to keep the switches below complete.
var AllDvmPhases = []DvmPhase{
	PhaseNoRequest,
	PhaseCommit,
	PhaseCommitEnded,
	PhaseReveal,
	PhaseRevealEnded,
	PhaseResolved,
}

// String returns a stable machine name.
func (p DvmPhase) String() string {
	switch p {
	case PhaseNoRequest:
		return "no_request"
	case PhaseCommit:
		return "commit"
	case PhaseCommitEnded:
		return "commit_ended"
	case PhaseReveal:
		return "reveal"
	case PhaseRevealEnded:
		return "reveal_ended"
	case PhaseResolved:
		return "resolved"
	}
	return fmt.Sprintf("DvmPhase(%d)", int(p))
}

// Label returns the human label.
func (p DvmPhase) Label() string {
	switch p {
	case PhaseNoRequest:
		return "Pending DVM"
	case PhaseCommit:
		return "Commit Phase"
	case PhaseCommitEnded:
		return "Commit Ended"
	case PhaseReveal:
		return "Reveal Phase"
	case PhaseRevealEnded:
		return "Reveal Ended"
	case PhaseResolved:
		return "Resolved"
	}
	return ""
}

// PhaseView is a derived phase together with its timing.
type PhaseView struct {
	Phase     DvmPhase
	EndsAt    time.Time     // zero when the phase has no deadline
	Remaining time.Duration // zero once the deadline passed
}

// DerivePhase turns the contract's phase and start times into a DvmPhase at
// now. A nil request is PhaseNoRequest: the oracle has not created one yet.
func DerivePhase(req *PriceRequest, cfg DvmConfig, now time.Time) PhaseView {
	if req == nil {
		return PhaseView{Phase: PhaseNoRequest}
	}

	switch req.Phase {
	case VotingPhaseCommit:
		return timedPhase(req.CommitStartTime, cfg.CommitPhaseDuration, now, PhaseCommit, PhaseCommitEnded)
	case VotingPhaseReveal:
		return timedPhase(req.RevealStartTime, cfg.RevealPhaseDuration, now, PhaseReveal, PhaseRevealEnded)
	case VotingPhaseResolved:
		return PhaseView{Phase: PhaseResolved}
	}
	return PhaseView{Phase: PhaseNoRequest}
}

func timedPhase(startNs, durationNs uint64, now time.Time, open, ended DvmPhase) PhaseView {
	endNs := startNs + durationNs
	endsAt := time.Unix(0, int64(endNs))
	if beforeNs(now, endNs) {
		return PhaseView{Phase: open, EndsAt: endsAt, Remaining: endsAt.Sub(now)}
	}
	return PhaseView{Phase: ended, EndsAt: endsAt}
}

// VoteAction is a DVM transition the client may offer.
type VoteAction string

const (
	VoteActionCommit          VoteAction = "commit"
	VoteActionReveal          VoteAction = "reveal"
	VoteActionAdvanceToReveal VoteAction = "advance_to_reveal"
	VoteActionResolvePrice    VoteAction = "resolve_price"
	VoteActionSettle          VoteAction = "settle"
)

// VoteActions returns the transitions available in phase. Reveal is only
// offered when the caller holds a stored commitment.
func VoteActions(phase DvmPhase, hasCommitment bool) []VoteAction {
	switch phase {
	case PhaseCommit:
		return []VoteAction{VoteActionCommit}
	case PhaseCommitEnded:
		return []VoteAction{VoteActionAdvanceToReveal}
	case PhaseReveal:
		if hasCommitment {
			return []VoteAction{VoteActionReveal}
		}
		return nil
	case PhaseRevealEnded:
		return []VoteAction{VoteActionResolvePrice}
	case PhaseResolved:
		return []VoteAction{VoteActionSettle}
	case PhaseNoRequest:
		return nil
	}
	return nil
}

// ResolveOutcome classifies the request state read back after a resolve_price
// call. It is informational; the contract stays authoritative.
type ResolveOutcome string

const (
	OutcomeResolved          ResolveOutcome = "Resolved"
	OutcomeRevealExtended    ResolveOutcome = "RevealExtended"
	OutcomeEmergencyRequired ResolveOutcome = "EmergencyRequired"
	OutcomeUnknown           ResolveOutcome = "Unknown"
)

// ClassifyResolveOutcome maps the re-read request to an outcome.
func ClassifyResolveOutcome(req *PriceRequest) ResolveOutcome {
	switch {
	case req == nil:
		return OutcomeUnknown
	case req.Phase == VotingPhaseResolved:
		return OutcomeResolved
	case req.EmergencyRequired:
		return OutcomeEmergencyRequired
	case req.Phase == VotingPhaseReveal:
		return OutcomeRevealExtended
	default:
		return OutcomeUnknown
	}
}
