// Package wallet provides the Wallet implementations used to submit calls.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// RemoteSigner hands calls to an external signing service, which signs them
// with the account's key and broadcasts them.
type RemoteSigner struct {
	account string
	url     string
	client  *http.Client
}

// NewRemoteSigner creates a signer from the runtime config.
func NewRemoteSigner(cfg *config.RuntimeConfig) *RemoteSigner {
	return NewRemoteSignerWith(cfg.Account, cfg.SignerURL, &http.Client{Timeout: 2 * time.Minute})
}

// NewRemoteSignerWith creates a signer with an explicit HTTP client.
func NewRemoteSignerWith(account, url string, client *http.Client) *RemoteSigner {
	return &RemoteSigner{account: account, url: url, client: client}
}

// SignedAccountID returns the configured account.
func (s *RemoteSigner) SignedAccountID() string {
	return s.account
}

// Ready fails when either the account or the signer url is missing.
func (s *RemoteSigner) Ready() error {
	if s.account == "" {
		return domain.ErrWalletNotConnected
	}
	if s.url == "" {
		return fmt.Errorf("%w: no signer_url configured", domain.ErrWalletNotConnected)
	}
	return nil
}

func (s *RemoteSigner) IsDryRun() bool { return false }

type signRequest struct {
	RequestID  string          `json:"request_id"`
	SignerID   string          `json:"signer_id"`
	ContractID string          `json:"contract_id"`
	Method     string          `json:"method"`
	Args       json.RawMessage `json:"args"`
	Gas        domain.Gas      `json:"gas"`
	Deposit    string          `json:"deposit"`
}

type signResponse struct {
	domain.TxOutcome
	Error string `json:"error"`
}

// CallFunction submits the call and waits for the signer's outcome. A timeout
// yields an indeterminate RemoteCallError: the transaction may still land.
func (s *RemoteSigner) CallFunction(ctx context.Context, call domain.FunctionCall) (*domain.TxOutcome, error) {
	op := fmt.Sprintf("%s.%s", call.ContractID, call.Method)
	if err := s.Ready(); err != nil {
		return nil, err
	}

	args, err := call.ArgsJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}
	body, err := json.Marshal(signRequest{
		RequestID:  uuid.NewString(),
		SignerID:   s.account,
		ContractID: call.ContractID,
		Method:     call.Method,
		Args:       args,
		Gas:        call.Gas,
		Deposit:    call.Deposit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.RemoteCallError{Op: op, Err: err, Indeterminate: isTimeout(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RemoteCallError{Op: op, Err: err, Indeterminate: true}
	}

	var out signResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &domain.RemoteCallError{Op: op, Err: fmt.Errorf("signer returned %s", resp.Status)}
		}
		return nil, &domain.RemoteCallError{Op: op, Err: fmt.Errorf("failed to parse signer response: %w", err)}
	}
	if out.Error != "" {
		return nil, &domain.RemoteCallError{Op: op, Err: errors.New(out.Error)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.RemoteCallError{Op: op, Err: fmt.Errorf("signer returned %s", resp.Status)}
	}
	if out.TransactionHash == "" {
		return nil, &domain.RemoteCallError{Op: op, Err: errors.New("signer returned no transaction hash"), Indeterminate: true}
	}
	if out.SignerID == "" {
		out.SignerID = s.account
	}
	return &out.TxOutcome, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Ensure RemoteSigner implements Wallet
var _ usecase.Wallet = (*RemoteSigner)(nil)
