// Package indexer talks to the nest-indexer HTTP API.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"golang.org/x/time/rate"
)

// Client implements usecase.Indexer over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client for the configured network's indexer.
func NewClient(cfg *config.RuntimeConfig) *Client {
	return NewClientWith(cfg.Network.IndexerURL, cfg.IndexerRPS, &http.Client{Timeout: 30 * time.Second})
}

// NewClientWith creates a client with an explicit endpoint and request rate.
func NewClientWith(baseURL string, rps float64, httpClient *http.Client) *Client {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// assertionDTO mirrors the indexer's JSON; hex values and u64 timestamps arrive as strings.
type assertionDTO struct {
	AssertionID          string  `json:"assertion_id"`
	DomainID             string  `json:"domain_id"`
	Claim                string  `json:"claim"`
	Asserter             string  `json:"asserter"`
	CallbackRecipient    *string `json:"callback_recipient"`
	EscalationManager    *string `json:"escalation_manager"`
	Caller               string  `json:"caller"`
	ExpirationTimeNs     string  `json:"expiration_time_ns"`
	Currency             string  `json:"currency"`
	Bond                 string  `json:"bond"`
	Identifier           string  `json:"identifier"`
	Disputer             *string `json:"disputer"`
	Settled              bool    `json:"settled"`
	SettlementPending    bool    `json:"settlement_pending"`
	SettlementInFlight   bool    `json:"settlement_in_flight"`
	SettlementResolution bool    `json:"settlement_resolution"`
	BondRecipient        *string `json:"bond_recipient"`
	Status               string  `json:"status"`
	CreatedAt            int64   `json:"created_at"`
	UpdatedAt            int64   `json:"updated_at"`
	BlockHeight          uint64  `json:"block_height"`
	TransactionID        string  `json:"transaction_id"`
}

type listResponse struct {
	Assertions []assertionDTO `json:"assertions"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
}

// ListAssertions fetches one page of assertions.
func (c *Client) ListAssertions(ctx context.Context, query usecase.AssertionQuery) (*usecase.AssertionPage, error) {
	var resp listResponse
	if err := c.get(ctx, "/assertions", encodeQuery(query), &resp); err != nil {
		return nil, err
	}

	page := &usecase.AssertionPage{
		Assertions: make([]*domain.Assertion, 0, len(resp.Assertions)),
		Total:      resp.Total,
		Page:       resp.Page,
		PerPage:    resp.PerPage,
	}
	for i := range resp.Assertions {
		a, err := resp.Assertions[i].toDomain()
		if err != nil {
			return nil, domain.NewRemoteCallError("indexer GET /assertions",
				fmt.Errorf("failed to decode assertion %s: %w", resp.Assertions[i].AssertionID, err))
		}
		page.Assertions = append(page.Assertions, a)
	}
	return page, nil
}

// GetAssertion fetches one assertion; a 404 is domain.ErrNotFound.
func (c *Client) GetAssertion(ctx context.Context, id domain.Bytes32) (*domain.Assertion, error) {
	var dto assertionDTO
	if err := c.get(ctx, "/assertions/"+id.Hex(), nil, &dto); err != nil {
		return nil, err
	}
	a, err := dto.toDomain()
	if err != nil {
		return nil, domain.NewRemoteCallError("indexer GET /assertions/"+id.Hex(),
			fmt.Errorf("failed to decode assertion %s: %w", id.Hex(), err))
	}
	return a, nil
}

// Health reports indexer liveness and progress.
func (c *Client) Health(ctx context.Context) (*usecase.IndexerStatus, error) {
	var status usecase.IndexerStatus
	if err := c.get(ctx, "/health", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	op := "indexer GET " + path
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NewRemoteCallError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return domain.NewRemoteCallError(op, fmt.Errorf("%s", msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewRemoteCallError(op, fmt.Errorf("failed to parse response: %w", err))
	}
	return nil
}

func encodeQuery(q usecase.AssertionQuery) url.Values {
	v := url.Values{}
	setIf := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	setIf("status", string(q.Status))
	setIf("asserter", q.Asserter)
	setIf("disputer", q.Disputer)
	setIf("currency", q.Currency)
	if q.SettlementPending != nil {
		v.Set("settlement_pending", strconv.FormatBool(*q.SettlementPending))
	}
	if q.SettlementInFlight != nil {
		v.Set("settlement_in_flight", strconv.FormatBool(*q.SettlementInFlight))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

func (d *assertionDTO) toDomain() (*domain.Assertion, error) {
	id, err := domain.ParseBytes32(d.AssertionID)
	if err != nil {
		return nil, err
	}
	domainID, err := optionalBytes32(d.DomainID)
	if err != nil {
		return nil, fmt.Errorf("domain_id: %w", err)
	}
	claim, err := optionalBytes32(d.Claim)
	if err != nil {
		return nil, fmt.Errorf("claim: %w", err)
	}
	identifier, err := optionalBytes32(d.Identifier)
	if err != nil {
		return nil, fmt.Errorf("identifier: %w", err)
	}
	expiration, err := strconv.ParseUint(strings.TrimSpace(d.ExpirationTimeNs), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("expiration_time_ns %q: %w", d.ExpirationTimeNs, err)
	}

	a := &domain.Assertion{
		ID:                   id,
		DomainID:             domainID,
		Claim:                claim,
		Identifier:           identifier,
		Asserter:             d.Asserter,
		CallbackRecipient:    deref(d.CallbackRecipient),
		EscalationManager:    deref(d.EscalationManager),
		Caller:               d.Caller,
		Currency:             d.Currency,
		Bond:                 d.Bond,
		ExpirationTimeNs:     expiration,
		Disputer:             deref(d.Disputer),
		Settled:              d.Settled,
		SettlementPending:    d.SettlementPending,
		SettlementInFlight:   d.SettlementInFlight,
		SettlementResolution: d.SettlementResolution,
		BondRecipient:        deref(d.BondRecipient),
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
		BlockHeight:          d.BlockHeight,
		TransactionID:        d.TransactionID,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	// Unknown indexer statuses are ignored; status is always derived locally.
	if st, err := domain.ParseAssertionStatus(d.Status); err == nil {
		a.IndexedStatus = st
	}
	return a, nil
}

func optionalBytes32(s string) (domain.Bytes32, error) {
	if strings.TrimSpace(s) == "" {
		return domain.ZeroBytes32, nil
	}
	return domain.ParseBytes32(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ensure Client implements Indexer
var _ usecase.Indexer = (*Client)(nil)
