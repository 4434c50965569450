// Package near reads contract state through the NEAR JSON-RPC "query" method.
package near

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// RPCClient issues call_function view queries against one RPC endpoint.
type RPCClient struct {
	url    string
	client *http.Client
}

// NewRPCClient creates a client for url.
func NewRPCClient(url string, timeout time.Duration) *RPCClient {
	return &RPCClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      string    `json:"id"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
}

type rpcParams struct {
	RequestType string `json:"request_type"`
	Finality    string `json:"finality"`
	AccountID   string `json:"account_id"`
	MethodName  string `json:"method_name"`
	ArgsBase64  string `json:"args_base64"`
}

type rpcResponse struct {
	Result *struct {
		Result []int  `json:"result"`
		Error  string `json:"error"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

type rpcError struct {
	Name    string          `json:"name"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Cause   *struct {
		Name string `json:"name"`
	} `json:"cause"`
}

func (e *rpcError) Error() string {
	msg := e.Message
	if e.Cause != nil && e.Cause.Name != "" {
		msg += " (" + e.Cause.Name + ")"
	}
	if len(e.Data) > 0 {
		var data string
		if json.Unmarshal(e.Data, &data) == nil && data != "" {
			msg += ": " + data
		}
	}
	return msg
}

func viewOp(contractID, method string) string {
	return fmt.Sprintf("view %s.%s", contractID, method)
}

// View calls a view method and decodes its JSON result into out.
func (c *RPCClient) View(ctx context.Context, contractID, method string, args any, out any) error {
	op := viewOp(contractID, method)

	argsJSON := []byte("{}")
	if args != nil {
		var err error
		if argsJSON, err = json.Marshal(args); err != nil {
			return fmt.Errorf("failed to marshal args: %w", err)
		}
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  "query",
		Params: rpcParams{
			RequestType: "call_function",
			Finality:    "final",
			AccountID:   contractID,
			MethodName:  method,
			ArgsBase64:  base64.StdEncoding.EncodeToString(argsJSON),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NewRemoteCallError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewRemoteCallError(op, fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK && len(raw) == 0 {
		return domain.NewRemoteCallError(op, fmt.Errorf("rpc returned %s", resp.Status))
	}

	var parsed rpcResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return domain.NewRemoteCallError(op, fmt.Errorf("failed to parse response: %w", err))
	}
	if parsed.Error != nil {
		return domain.NewRemoteCallError(op, parsed.Error)
	}
	if parsed.Result == nil {
		return domain.NewRemoteCallError(op, fmt.Errorf("empty rpc result"))
	}
	if parsed.Result.Error != "" {
		return domain.NewRemoteCallError(op, fmt.Errorf("%s", parsed.Result.Error))
	}

	result := make([]byte, len(parsed.Result.Result))
	for i, b := range parsed.Result.Result {
		if b < 0 || b > 255 {
			return domain.NewRemoteCallError(op, fmt.Errorf("result byte %d out of range", b))
		}
		result[i] = byte(b)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result, out); err != nil {
		return domain.NewRemoteCallError(op, fmt.Errorf("failed to decode result: %w", err))
	}
	return nil
}

// ViewClient implements usecase.ContractViewer for one network's contracts.
type ViewClient struct {
	rpc       *RPCClient
	contracts config.Contracts
}

// NewViewClient creates a viewer bound to the configured network.
func NewViewClient(cfg *config.RuntimeConfig) *ViewClient {
	return &ViewClient{
		rpc:       NewRPCClient(cfg.Network.RPCURL, 30*time.Second),
		contracts: cfg.Network.Contracts,
	}
}

// NewViewClientWith creates a viewer from an existing RPC client.
func NewViewClientWith(rpc *RPCClient, contracts config.Contracts) *ViewClient {
	return &ViewClient{rpc: rpc, contracts: contracts}
}

type assertionIDArgs struct {
	AssertionID domain.Bytes32 `json:"assertion_id"`
}

type requestIDArgs struct {
	RequestID domain.Bytes32 `json:"request_id"`
}

type accountIDArgs struct {
	AccountID string `json:"account_id"`
}

// GetDisputeRequest returns the DVM request id for a disputed assertion.
func (v *ViewClient) GetDisputeRequest(ctx context.Context, assertionID domain.Bytes32) (*domain.Bytes32, error) {
	var out *domain.Bytes32
	if err := v.rpc.View(ctx, v.contracts.Oracle, "get_dispute_request", assertionIDArgs{assertionID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRequest returns the voting contract's price request.
func (v *ViewClient) GetRequest(ctx context.Context, requestID domain.Bytes32) (*domain.PriceRequest, error) {
	var out *domain.PriceRequest
	if err := v.rpc.View(ctx, v.contracts.Voting, "get_request", requestIDArgs{requestID}, &out); err != nil {
		return nil, err
	}
	if out != nil {
		if err := out.Validate(); err != nil {
			return nil, domain.NewRemoteCallError(viewOp(v.contracts.Voting, "get_request"), fmt.Errorf("invalid price request: %w", err))
		}
	}
	return out, nil
}

// GetConfig decodes the (commit, reveal, min participation) tuple.
func (v *ViewClient) GetConfig(ctx context.Context) (*domain.DvmConfig, error) {
	var tuple []domain.DecimalString
	if err := v.rpc.View(ctx, v.contracts.Voting, "get_config", nil, &tuple); err != nil {
		return nil, err
	}
	if len(tuple) != 3 {
		return nil, domain.NewRemoteCallError(viewOp(v.contracts.Voting, "get_config"), fmt.Errorf("get_config returned %d values, expected 3", len(tuple)))
	}
	vals := make([]uint64, 3)
	for i, s := range tuple {
		n, err := strconv.ParseUint(string(s), 10, 64)
		if err != nil {
			return nil, domain.NewRemoteCallError(viewOp(v.contracts.Voting, "get_config"), fmt.Errorf("invalid get_config value %q: %w", s, err))
		}
		vals[i] = n
	}
	return &domain.DvmConfig{
		CommitPhaseDuration:  vals[0],
		RevealPhaseDuration:  vals[1],
		MinParticipationRate: vals[2],
	}, nil
}

// FtBalanceOf returns the account's token balance in the smallest unit.
func (v *ViewClient) FtBalanceOf(ctx context.Context, tokenID, accountID string) (string, error) {
	var out domain.DecimalString
	if err := v.rpc.View(ctx, tokenID, "ft_balance_of", accountIDArgs{accountID}, &out); err != nil {
		return "", err
	}
	if out == "" {
		return "0", nil
	}
	return strings.TrimSpace(string(out)), nil
}

// StorageBalanceOf returns nil when the account is not registered with the token.
func (v *ViewClient) StorageBalanceOf(ctx context.Context, tokenID, accountID string) (*domain.StorageBalance, error) {
	var out *domain.StorageBalance
	if err := v.rpc.View(ctx, tokenID, "storage_balance_of", accountIDArgs{accountID}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOracleAssertion returns the oracle's settlement flags for an assertion.
func (v *ViewClient) GetOracleAssertion(ctx context.Context, assertionID domain.Bytes32) (*domain.OracleAssertionState, error) {
	var out *domain.OracleAssertionState
	if err := v.rpc.View(ctx, v.contracts.Oracle, "get_assertion", assertionIDArgs{assertionID}, &out); err != nil {
		return nil, err
	}
	if out != nil {
		if err := out.Validate(); err != nil {
			return nil, domain.NewRemoteCallError(viewOp(v.contracts.Oracle, "get_assertion"), fmt.Errorf("invalid oracle assertion state: %w", err))
		}
	}
	return out, nil
}

// Ensure ViewClient implements ContractViewer
var _ usecase.ContractViewer = (*ViewClient)(nil)
