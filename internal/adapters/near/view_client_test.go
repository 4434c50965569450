package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type viewCall struct {
	Contract string
	Method   string
	Args     map[string]any
}

// fakeRPC answers call_function queries from a handler keyed by method name.
func fakeRPC(t *testing.T, handler func(call viewCall) (any, string)) (*httptest.Server, *[]viewCall) {
	t.Helper()
	var calls []viewCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)
		assert.Equal(t, "query", req.Method)
		assert.Equal(t, "call_function", req.Params.RequestType)
		assert.Equal(t, "final", req.Params.Finality)
		assert.NotEmpty(t, req.ID)

		rawArgs, err := base64.StdEncoding.DecodeString(req.Params.ArgsBase64)
		require.NoError(t, err)
		call := viewCall{Contract: req.Params.AccountID, Method: req.Params.MethodName}
		require.NoError(t, json.Unmarshal(rawArgs, &call.Args))
		calls = append(calls, call)

		result, rpcErr := handler(call)
		w.Header().Set("Content-Type", "application/json")
		if rpcErr != "" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]any{"name": "HANDLER_ERROR", "code": -32000, "message": "Server error", "data": rpcErr},
			})
			return
		}
		encoded, err := json.Marshal(result)
		require.NoError(t, err)
		bytesOut := make([]int, len(encoded))
		for i, b := range encoded {
			bytesOut[i] = int(b)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]any{"result": bytesOut, "logs": []string{}, "block_height": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testContracts() config.Contracts {
	return config.Contracts{Oracle: "oracle.testnet", Voting: "voting.testnet", VotingToken: "token.testnet"}
}

func newTestClient(srv *httptest.Server) *ViewClient {
	return NewViewClientWith(NewRPCClient(srv.URL, 5*time.Second), testContracts())
}

func TestViewClient_GetDisputeRequest(t *testing.T) {
	reqID := domain.MustParseBytes32("0x11" + strings.Repeat("00", 30) + "22")

	t.Run("returns request id", func(t *testing.T) {
		srv, calls := fakeRPC(t, func(viewCall) (any, string) { return reqID.Array(), "" })
		got, err := newTestClient(srv).GetDisputeRequest(context.Background(), domain.ZeroBytes32)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, reqID, *got)

		require.Len(t, *calls, 1)
		assert.Equal(t, "oracle.testnet", (*calls)[0].Contract)
		assert.Equal(t, "get_dispute_request", (*calls)[0].Method)
		assert.Len(t, (*calls)[0].Args["assertion_id"], 32)
	})

	t.Run("null means no request", func(t *testing.T) {
		srv, _ := fakeRPC(t, func(viewCall) (any, string) { return nil, "" })
		got, err := newTestClient(srv).GetDisputeRequest(context.Background(), domain.ZeroBytes32)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestViewClient_GetRequest(t *testing.T) {
	srv, calls := fakeRPC(t, func(viewCall) (any, string) {
		return map[string]any{
			"identifier":        "ASSERT_TRUTH",
			"timestamp":         1,
			"requester":         "oracle.testnet",
			"status":            "Active",
			"phase":             "Reveal",
			"commit_start_time": 100,
			"reveal_start_time": 200,
			"resolved_price":    nil,
		}, ""
	})

	got, err := newTestClient(srv).GetRequest(context.Background(), domain.ZeroBytes32)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.VotingPhaseReveal, got.Phase)
	assert.Equal(t, uint64(200), got.RevealStartTime)
	assert.Nil(t, got.ResolvedPrice)
	assert.Equal(t, "voting.testnet", (*calls)[0].Contract)
}

func TestViewClient_SchemaMismatchIsRemoteCallError(t *testing.T) {
	tests := []struct {
		name    string
		result  any
		call    func(*ViewClient) error
		wantMsg string
	}{
		{
			name:   "unknown voting phase",
			result: map[string]any{"phase": "Tallying", "status": "Active"},
			call: func(c *ViewClient) error {
				_, err := c.GetRequest(context.Background(), domain.ZeroBytes32)
				return err
			},
			wantMsg: "unknown voting phase",
		},
		{
			name:   "config tuple too short",
			result: []int{1, 2},
			call: func(c *ViewClient) error {
				_, err := c.GetConfig(context.Background())
				return err
			},
			wantMsg: "expected 3",
		},
		{
			name:   "config value overflows",
			result: []string{"1", "2", "99999999999999999999999"},
			call: func(c *ViewClient) error {
				_, err := c.GetConfig(context.Background())
				return err
			},
			wantMsg: "invalid get_config value",
		},
		{
			name:   "settled and still pending",
			result: map[string]any{"settled": true, "settlement_pending": true},
			call: func(c *ViewClient) error {
				_, err := c.GetOracleAssertion(context.Background(), domain.ZeroBytes32)
				return err
			},
			wantMsg: "invalid oracle assertion state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := fakeRPC(t, func(viewCall) (any, string) { return tt.result, "" })
			err := tt.call(newTestClient(srv))
			require.Error(t, err)

			var rce *domain.RemoteCallError
			require.ErrorAs(t, err, &rce)
			assert.False(t, rce.Indeterminate)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestViewClient_GetConfig(t *testing.T) {
	srv, calls := fakeRPC(t, func(viewCall) (any, string) {
		return []any{86_400_000_000_000, "43200000000000", 5}, ""
	})

	cfg, err := newTestClient(srv).GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(86_400_000_000_000), cfg.CommitPhaseDuration)
	assert.Equal(t, uint64(43_200_000_000_000), cfg.RevealPhaseDuration)
	assert.Equal(t, uint64(5), cfg.MinParticipationRate)
	assert.Empty(t, (*calls)[0].Args)
}

func TestViewClient_Balances(t *testing.T) {
	srv, calls := fakeRPC(t, func(c viewCall) (any, string) {
		switch c.Method {
		case "ft_balance_of":
			return "123000000000000000000000000", ""
		case "storage_balance_of":
			if c.Args["account_id"] == "bob.testnet" {
				return nil, ""
			}
			return map[string]string{"total": "1250000000000000000000", "available": "0"}, ""
		}
		return nil, "unexpected method"
	})
	client := newTestClient(srv)
	ctx := context.Background()

	bal, err := client.FtBalanceOf(ctx, "usdc.testnet", "alice.testnet")
	require.NoError(t, err)
	assert.Equal(t, "123000000000000000000000000", bal)
	assert.Equal(t, "usdc.testnet", (*calls)[0].Contract)
	assert.Equal(t, "alice.testnet", (*calls)[0].Args["account_id"])

	storage, err := client.StorageBalanceOf(ctx, "usdc.testnet", "alice.testnet")
	require.NoError(t, err)
	require.NotNil(t, storage)
	assert.Equal(t, "1250000000000000000000", storage.Total)

	storage, err = client.StorageBalanceOf(ctx, "usdc.testnet", "bob.testnet")
	require.NoError(t, err)
	assert.Nil(t, storage)
}

func TestViewClient_GetOracleAssertion(t *testing.T) {
	srv, _ := fakeRPC(t, func(viewCall) (any, string) {
		return map[string]any{
			"asserter":              "alice.testnet",
			"settled":               false,
			"settlement_pending":    true,
			"settlement_in_flight":  false,
			"settlement_resolution": true,
		}, ""
	})

	state, err := newTestClient(srv).GetOracleAssertion(context.Background(), domain.ZeroBytes32)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.SettlementPending)
	assert.True(t, state.Retryable())
}

func TestViewClient_GetOracleAssertionNull(t *testing.T) {
	srv, _ := fakeRPC(t, func(viewCall) (any, string) { return nil, "" })

	state, err := newTestClient(srv).GetOracleAssertion(context.Background(), domain.ZeroBytes32)
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestViewClient_RPCErrorIsRemoteCallError(t *testing.T) {
	srv, _ := fakeRPC(t, func(viewCall) (any, string) { return nil, "wasm execution failed" })

	_, err := newTestClient(srv).GetConfig(context.Background())
	require.Error(t, err)
	var rce *domain.RemoteCallError
	require.True(t, errors.As(err, &rce))
	assert.Contains(t, rce.Error(), "voting.testnet.get_config")
	assert.Contains(t, rce.Error(), "wasm execution failed")
	assert.False(t, rce.Indeterminate)
}
