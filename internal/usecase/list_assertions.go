package usecase

import (
	"context"
	"fmt"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/samber/lo"
)

// AssertionView is an assertion with its status and actions derived locally.
type AssertionView struct {
	Assertion *domain.Assertion
	Status    domain.AssertionStatus
	Actions   []domain.AssertionAction
}

// ListAssertionsParams contains parameters for listing assertions
type ListAssertionsParams struct {
	Status   domain.AssertionStatus
	Asserter string
	Disputer string
	Currency string
	// SettlementPending and SettlementInFlight filter on the indexer flags when set.
	SettlementPending  *bool
	SettlementInFlight *bool
	Page               int
	PerPage            int
}

// ListAssertionsResult contains one page of assertions
type ListAssertionsResult struct {
	Assertions []*AssertionView
	Total      int
	Page       int
	PerPage    int
}

// ListAssertions lists indexed assertions
type ListAssertions struct {
	indexer Indexer
	clock   Clock
	sink    ProgressSink
}

// NewListAssertions creates a new ListAssertions use case
func NewListAssertions(indexer Indexer, clock Clock, sink ProgressSink) *ListAssertions {
	return &ListAssertions{
		indexer: indexer,
		clock:   clock,
		sink:    sink,
	}
}

// Run executes the list use case. The indexer's status can lag the clock, so
// the status is recomputed here and used to filter the page.
func (uc *ListAssertions) Run(ctx context.Context, params ListAssertionsParams) (*ListAssertionsResult, error) {
	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "loading", Message: "Loading assertions", Spinner: true})

	page, err := uc.indexer.ListAssertions(ctx, AssertionQuery{
		Status:             params.Status,
		Asserter:           params.Asserter,
		Disputer:           params.Disputer,
		Currency:           params.Currency,
		SettlementPending:  params.SettlementPending,
		SettlementInFlight: params.SettlementInFlight,
		Page:               max(params.Page, 1),
		PerPage:            params.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assertions: %w", err)
	}

	now := uc.clock.Now()
	views := lo.Map(page.Assertions, func(a *domain.Assertion, _ int) *AssertionView {
		return newAssertionView(a, now)
	})
	if params.Status != "" {
		views = lo.Filter(views, func(v *AssertionView, _ int) bool {
			return v.Status == params.Status
		})
	}

	return &ListAssertionsResult{
		Assertions: views,
		Total:      page.Total,
		Page:       page.Page,
		PerPage:    page.PerPage,
	}, nil
}
