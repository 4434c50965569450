package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testID = "0x" + strings.Repeat("ab", 32)

func sampleAssertion() map[string]any {
	return map[string]any{
		"assertion_id":          testID,
		"domain_id":             "0x" + strings.Repeat("00", 32),
		"claim":                 domain.EncodeFixed32("ETH > 3000").Hex(),
		"asserter":              "alice.testnet",
		"callback_recipient":    nil,
		"escalation_manager":    nil,
		"caller":                "alice.testnet",
		"expiration_time_ns":    "1700000000000000000",
		"currency":              "usdc.testnet",
		"bond":                  "1000000",
		"identifier":            domain.DefaultIdentifier.Hex(),
		"disputer":              "bob.testnet",
		"settled":               false,
		"settlement_pending":    false,
		"settlement_in_flight":  false,
		"settlement_resolution": false,
		"bond_recipient":        nil,
		"status":                "disputed",
		"created_at":            1,
		"updated_at":            2,
		"block_height":          123,
		"transaction_id":        "tx",
	}
}

func TestClient_ListAssertions(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assertions", r.URL.Path)
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(map[string]any{
			"assertions": []any{sampleAssertion()},
			"total":      1,
			"page":       2,
			"per_page":   100,
		})
	}))
	defer srv.Close()

	pending := true
	page, err := NewClientWith(srv.URL+"/", 100, srv.Client()).ListAssertions(context.Background(), usecase.AssertionQuery{
		Status:            domain.StatusDisputed,
		Disputer:          "bob.testnet",
		SettlementPending: &pending,
		Page:              2,
		PerPage:           100,
	})
	require.NoError(t, err)

	assert.Equal(t, "disputer=bob.testnet&page=2&per_page=100&settlement_pending=true&status=disputed", gotQuery)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Assertions, 1)

	a := page.Assertions[0]
	assert.Equal(t, testID, a.ID.Hex())
	assert.Equal(t, "ETH > 3000", domain.DecodeFixed32(a.Claim))
	assert.Equal(t, uint64(1_700_000_000_000_000_000), a.ExpirationTimeNs)
	assert.Equal(t, "bob.testnet", a.Disputer)
	assert.Empty(t, a.CallbackRecipient)
	assert.Equal(t, domain.StatusDisputed, a.IndexedStatus)
	assert.Equal(t, uint64(123), a.BlockHeight)
}

func TestClient_EmptyQueryHasNoParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		_, _ = w.Write([]byte(`{"assertions":[],"total":0,"page":1,"per_page":20}`))
	}))
	defer srv.Close()

	page, err := NewClientWith(srv.URL, 100, srv.Client()).ListAssertions(context.Background(), usecase.AssertionQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Assertions)
}

func TestClient_GetAssertion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/assertions/"+testID {
			_ = json.NewEncoder(w).Encode(sampleAssertion())
			return
		}
		http.Error(w, "Assertion not found", http.StatusNotFound)
	}))
	defer srv.Close()
	client := NewClientWith(srv.URL, 100, srv.Client())

	a, err := client.GetAssertion(context.Background(), domain.MustParseBytes32(testID))
	require.NoError(t, err)
	assert.Equal(t, "alice.testnet", a.Asserter)

	_, err = client.GetAssertion(context.Background(), domain.ZeroBytes32)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestClient_ServerErrorIsRemoteCallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClientWith(srv.URL, 100, srv.Client()).ListAssertions(context.Background(), usecase.AssertionQuery{})
	var rce *domain.RemoteCallError
	require.True(t, errors.As(err, &rce))
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestClient_BadExpirationFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := sampleAssertion()
		a["expiration_time_ns"] = "soon"
		_ = json.NewEncoder(w).Encode(a)
	}))
	defer srv.Close()

	_, err := NewClientWith(srv.URL, 100, srv.Client()).GetAssertion(context.Background(), domain.ZeroBytes32)
	assert.ErrorContains(t, err, "expiration_time_ns")
	var rce *domain.RemoteCallError
	assert.ErrorAs(t, err, &rce)
}

func TestClient_UndecodableListItemIsRemoteCallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bad := sampleAssertion()
		bad["assertion_id"] = "0xnothex"
		_ = json.NewEncoder(w).Encode(map[string]any{
			"assertions": []any{sampleAssertion(), bad},
			"total":      2,
			"page":       1,
			"per_page":   20,
		})
	}))
	defer srv.Close()

	_, err := NewClientWith(srv.URL, 100, srv.Client()).ListAssertions(context.Background(), usecase.AssertionQuery{})
	require.Error(t, err)
	var rce *domain.RemoteCallError
	require.ErrorAs(t, err, &rce)
	assert.Contains(t, err.Error(), "failed to decode assertion 0xnothex")
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","assertions_count":42,"last_block_height":null}`))
	}))
	defer srv.Close()

	status, err := NewClientWith(srv.URL, 100, srv.Client()).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, int64(42), status.AssertionsCount)
	assert.Nil(t, status.LastBlockHeight)
}

func TestClient_LimiterHonorsContext(t *testing.T) {
	client := NewClientWith("http://127.0.0.1:0", 0.001, http.DefaultClient)
	// Drain the single burst token.
	require.True(t, client.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Health(ctx)
	assert.Error(t, err)
}

func TestClient_InconsistentSettlementFlags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a := sampleAssertion()
		a["settlement_in_flight"] = true
		_ = json.NewEncoder(w).Encode(a)
	}))
	defer srv.Close()

	_, err := NewClientWith(srv.URL, 100, srv.Client()).GetAssertion(context.Background(), domain.ZeroBytes32)
	var rce *domain.RemoteCallError
	require.ErrorAs(t, err, &rce)
	assert.Contains(t, err.Error(), "settlement_in_flight")
}
