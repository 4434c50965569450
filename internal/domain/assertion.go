package domain

import (
	"fmt"
	"time"
)

// AssertionStatus is the lifecycle status derived from an assertion's fields
// and the current time. It is never stored.
type AssertionStatus string

const (
	StatusActive            AssertionStatus = "active"
	StatusDisputed          AssertionStatus = "disputed"
	StatusPendingSettlement AssertionStatus = "pending_settlement"
	StatusExpired           AssertionStatus = "expired"
	StatusSettledTrue       AssertionStatus = "settled_true"
	StatusSettledFalse      AssertionStatus = "settled_false"
)

// AllAssertionStatuses lists every status in display order.
var AllAssertionStatuses = []AssertionStatus{
	StatusActive,
	StatusDisputed,
	StatusPendingSettlement,
	StatusExpired,
	StatusSettledTrue,
	StatusSettledFalse,
}

// ParseAssertionStatus validates a status string.
func ParseAssertionStatus(s string) (AssertionStatus, error) {
	for _, st := range AllAssertionStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown assertion status %q", s)
}

// IsTerminal reports whether the assertion has been finally settled.
func (s AssertionStatus) IsTerminal() bool {
	return s == StatusSettledTrue || s == StatusSettledFalse
}

// Assertion is a bonded claim as seen by this client. The oracle contract owns it.
type Assertion struct {
	ID                Bytes32
	DomainID          Bytes32
	Claim             Bytes32
	Identifier        Bytes32
	Asserter          string
	CallbackRecipient string
	EscalationManager string
	Caller            string
	Currency          string
	Bond              string // u128 in the currency's smallest unit
	ExpirationTimeNs  uint64
	Disputer          string

	Settled              bool
	SettlementPending    bool
	SettlementInFlight   bool
	SettlementResolution bool
	BondRecipient        string

	// Indexer bookkeeping; informational only.
	IndexedStatus AssertionStatus
	CreatedAt     int64
	UpdatedAt     int64
	BlockHeight   uint64
	TransactionID string
}

// OracleAssertionState is the settlement view returned by the oracle's get_assertion.
type OracleAssertionState struct {
	Settled              bool `json:"settled"`
	SettlementPending    bool `json:"settlement_pending"`
	SettlementInFlight   bool `json:"settlement_in_flight"`
	SettlementResolution bool `json:"settlement_resolution"`
}

// Validate checks the settlement flag invariants.
func (s OracleAssertionState) Validate() error {
	if s.SettlementInFlight && !s.SettlementPending {
		return fmt.Errorf("settlement_in_flight set without settlement_pending")
	}
	if s.Settled && s.SettlementPending {
		return fmt.Errorf("settled assertion still marked settlement_pending")
	}
	return nil
}

// Retryable reports whether a payout retry may be offered.
func (s OracleAssertionState) Retryable() bool {
	return SettlementRetryable(s.Settled, s.SettlementPending, s.SettlementInFlight)
}

// SettlementRetryable is the gate for the retry-settlement action: phase one
// has happened, the payout callback is not in flight, and nothing is final.
func SettlementRetryable(settled, pending, inFlight bool) bool {
	return pending && !inFlight && !settled
}

// SettlementState returns the settlement flags of the assertion.
func (a *Assertion) SettlementState() OracleAssertionState {
	return OracleAssertionState{
		Settled:              a.Settled,
		SettlementPending:    a.SettlementPending,
		SettlementInFlight:   a.SettlementInFlight,
		SettlementResolution: a.SettlementResolution,
	}
}

// ApplyOracleState overlays authoritative settlement flags read from the oracle.
func (a *Assertion) ApplyOracleState(s OracleAssertionState) {
	a.Settled = s.Settled
	a.SettlementPending = s.SettlementPending
	a.SettlementInFlight = s.SettlementInFlight
	a.SettlementResolution = s.SettlementResolution
}

// Validate checks the assertion's structural invariants.
func (a *Assertion) Validate() error {
	return a.SettlementState().Validate()
}

// IsDisputed reports whether a disputer is recorded.
func (a *Assertion) IsDisputed() bool {
	return a.Disputer != ""
}

// ExpirationTime returns the end of the liveness window.
func (a *Assertion) ExpirationTime() time.Time {
	return time.Unix(0, int64(a.ExpirationTimeNs))
}

// SettlementRetryable reports whether a payout retry may be offered.
func (a *Assertion) SettlementRetryable() bool {
	return a.SettlementState().Retryable()
}

// TimeRemaining returns how long the liveness window stays open, or zero.
func (a *Assertion) TimeRemaining(now time.Time) time.Duration {
	if !beforeNs(now, a.ExpirationTimeNs) {
		return 0
	}
	return a.ExpirationTime().Sub(now)
}

// DeriveStatus computes the assertion's status at now.
func DeriveStatus(a *Assertion, now time.Time) AssertionStatus {
	switch {
	case a.Settled:
		if a.SettlementResolution {
			return StatusSettledTrue
		}
		return StatusSettledFalse
	case a.IsDisputed():
		if a.SettlementPending {
			return StatusPendingSettlement
		}
		return StatusDisputed
	case beforeNs(now, a.ExpirationTimeNs):
		return StatusActive
	default:
		return StatusExpired
	}
}

// beforeNs reports whether now is strictly before the nanosecond timestamp ts.
func beforeNs(now time.Time, ts uint64) bool {
	n := now.UnixNano()
	if n < 0 {
		return true
	}
	return uint64(n) < ts
}

// AssertionAction is a state transition the client may offer on an assertion.
type AssertionAction string

const (
	ActionDispute         AssertionAction = "dispute"
	ActionSettle          AssertionAction = "settle"
	ActionRetrySettlement AssertionAction = "retry_settlement"
)

// AllowedActions lists the transitions that make sense for the assertion at
// now. Settling a disputed assertion additionally depends on the DVM and is
// gated by VoteActions.
func AllowedActions(a *Assertion, now time.Time) []AssertionAction {
	var actions []AssertionAction
	switch DeriveStatus(a, now) {
	case StatusActive:
		actions = append(actions, ActionDispute)
	case StatusExpired:
		if !a.SettlementPending {
			actions = append(actions, ActionSettle)
		}
	}
	if a.SettlementRetryable() {
		actions = append(actions, ActionRetrySettlement)
	}
	return actions
}

// LivenessPreset is a named liveness window offered when proposing.
type LivenessPreset struct {
	Label    string
	Duration time.Duration
}

// LivenessPresets are the liveness windows offered by default.
var LivenessPresets = []LivenessPreset{
	{Label: "2h", Duration: 2 * time.Hour},
	{Label: "6h", Duration: 6 * time.Hour},
	{Label: "12h", Duration: 12 * time.Hour},
	{Label: "24h", Duration: 24 * time.Hour},
	{Label: "48h", Duration: 48 * time.Hour},
}

// DefaultLiveness is the first preset.
var DefaultLiveness = LivenessPresets[0].Duration
