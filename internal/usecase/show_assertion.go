package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
)

// AssertionDetail is an assertion with authoritative settlement flags and,
// when disputed, its DVM request.
type AssertionDetail struct {
	*AssertionView
	// OracleSynced is true when the settlement flags were read from the oracle
	// rather than taken from the indexer.
	OracleSynced bool
	RequestID    *domain.Bytes32
	Request      *domain.PriceRequest
	Phase        *domain.PhaseView
}

// ShowAssertion loads one assertion
type ShowAssertion struct {
	indexer Indexer
	viewer  ContractViewer
	clock   Clock
	sink    ProgressSink
	log     *slog.Logger
}

// NewShowAssertion creates a new ShowAssertion use case
func NewShowAssertion(indexer Indexer, viewer ContractViewer, clock Clock, sink ProgressSink, log *slog.Logger) *ShowAssertion {
	return &ShowAssertion{
		indexer: indexer,
		viewer:  viewer,
		clock:   clock,
		sink:    sink,
		log:     log,
	}
}

// Run executes the show use case
func (uc *ShowAssertion) Run(ctx context.Context, id domain.Bytes32) (*AssertionDetail, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "loading", Message: "Loading assertion", Spinner: true})

	assertion, err := uc.indexer.GetAssertion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load assertion %s: %w", id.Hex(), err)
	}

	detail := &AssertionDetail{}
	if state, err := uc.viewer.GetOracleAssertion(ctx, id); err != nil {
		uc.log.Warn("using indexer settlement flags", "assertion", id.Hex(), "error", err)
	} else if state == nil {
		uc.log.Debug("oracle has no settlement state, using indexer flags", "assertion", id.Hex())
	} else if err := state.Validate(); err != nil {
		uc.log.Warn("oracle returned inconsistent settlement flags", "assertion", id.Hex(), "error", err)
	} else {
		assertion.ApplyOracleState(*state)
		detail.OracleSynced = true
	}

	now := uc.clock.Now()
	detail.AssertionView = newAssertionView(assertion, now)

	if assertion.IsDisputed() {
		uc.loadDvm(ctx, detail, now)
	}
	return detail, nil
}

func (uc *ShowAssertion) loadDvm(ctx context.Context, detail *AssertionDetail, now time.Time) {
	id := detail.Assertion.ID
	requestID, err := uc.viewer.GetDisputeRequest(ctx, id)
	if err != nil {
		uc.log.Warn("dispute request lookup failed", "assertion", id.Hex(), "error", err)
		return
	}
	detail.RequestID = requestID
	if requestID == nil {
		phase := domain.DerivePhase(nil, domain.DvmConfig{}, now)
		detail.Phase = &phase
		return
	}

	req, err := uc.viewer.GetRequest(ctx, *requestID)
	if err != nil {
		uc.log.Warn("request lookup failed", "request", requestID.Hex(), "error", err)
		return
	}
	cfg, err := uc.viewer.GetConfig(ctx)
	if err != nil {
		uc.log.Warn("voting config lookup failed", "error", err)
		return
	}
	detail.Request = req
	phase := domain.DerivePhase(req, *cfg, now)
	detail.Phase = &phase
}

func newAssertionView(a *domain.Assertion, now time.Time) *AssertionView {
	return &AssertionView{
		Assertion: a,
		Status:    domain.DeriveStatus(a, now),
		Actions:   domain.AllowedActions(a, now),
	}
}
