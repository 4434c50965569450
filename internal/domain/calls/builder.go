// Package calls builds the contract calls behind every state transition.
// Builders only describe calls; submitting them is the wallet's job.
package calls

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
)

// Gas budgets per call.
const (
	ProposeGas         = 100 * domain.TGas
	DisputeGas         = 300 * domain.TGas
	SettleGas          = 300 * domain.TGas
	CommitVoteGas      = 200 * domain.TGas
	RevealVoteGas      = 100 * domain.TGas
	AdvanceToRevealGas = 100 * domain.TGas
	ResolvePriceGas    = 200 * domain.TGas
	StorageDepositGas  = 30 * domain.TGas
)

// Builder produces calls against one network's contracts.
type Builder struct {
	network *config.Network
}

// NewBuilder creates a builder for network.
func NewBuilder(network *config.Network) *Builder {
	return &Builder{network: network}
}

// FtTransferCallArgs are the NEP-141 ft_transfer_call arguments.
type FtTransferCallArgs struct {
	ReceiverID string `json:"receiver_id"`
	Amount     string `json:"amount"`
	Memo       any    `json:"memo"`
	Msg        string `json:"msg"`
}

// AssertTruthMsg is the transfer message that opens an assertion.
type AssertTruthMsg struct {
	Action            string          `json:"action"`
	Claim             domain.Bytes32  `json:"claim"`
	Asserter          string          `json:"asserter"`
	CallbackRecipient *string         `json:"callback_recipient"`
	EscalationManager *string         `json:"escalation_manager"`
	LivenessNs        string          `json:"liveness_ns"`
	Identifier        *domain.Bytes32 `json:"identifier"`
	DomainID          *domain.Bytes32 `json:"domain_id"`
}

// DisputeMsg is the transfer message that disputes an assertion.
type DisputeMsg struct {
	Action      string         `json:"action"`
	AssertionID domain.Bytes32 `json:"assertion_id"`
	Disputer    string         `json:"disputer"`
}

// CommitVoteMsg is the transfer message that stakes a committed vote.
type CommitVoteMsg struct {
	Action     string         `json:"action"`
	RequestID  domain.Bytes32 `json:"request_id"`
	CommitHash domain.Bytes32 `json:"commit_hash"`
}

// AssertionIDArgs identifies an assertion.
type AssertionIDArgs struct {
	AssertionID domain.Bytes32 `json:"assertion_id"`
}

// RequestIDArgs identifies a DVM request.
type RequestIDArgs struct {
	RequestID domain.Bytes32 `json:"request_id"`
}

// RevealVoteArgs carries the price as a JSON integer literal.
type RevealVoteArgs struct {
	RequestID domain.Bytes32 `json:"request_id"`
	Price     json.Number    `json:"price"`
	Salt      domain.Bytes32 `json:"salt"`
}

// StorageDepositArgs registers an account on a token contract.
type StorageDepositArgs struct {
	AccountID        string `json:"account_id"`
	RegistrationOnly bool   `json:"registration_only"`
}

// ProposeParams describes a new assertion.
type ProposeParams struct {
	Claim             domain.Bytes32
	Asserter          string
	Currency          string
	Bond              string // smallest unit
	Liveness          time.Duration
	CallbackRecipient string
	EscalationManager string
	Identifier        *domain.Bytes32
	DomainID          *domain.Bytes32
}

// Propose bonds Bond of Currency to the oracle, opening an assertion.
func (b *Builder) Propose(p ProposeParams) (domain.FunctionCall, error) {
	if p.Liveness <= 0 {
		return domain.FunctionCall{}, fmt.Errorf("liveness must be positive, got %s", p.Liveness)
	}
	msg := AssertTruthMsg{
		Action:            "AssertTruth",
		Claim:             p.Claim,
		Asserter:          p.Asserter,
		CallbackRecipient: optional(p.CallbackRecipient),
		EscalationManager: optional(p.EscalationManager),
		LivenessNs:        strconv.FormatInt(p.Liveness.Nanoseconds(), 10),
		Identifier:        p.Identifier,
		DomainID:          p.DomainID,
	}
	return b.transferCall(p.Currency, b.network.Contracts.Oracle, p.Bond, msg, ProposeGas)
}

// Dispute bonds the assertion's own bond against it.
func (b *Builder) Dispute(assertionID domain.Bytes32, disputer, currency, bond string) (domain.FunctionCall, error) {
	msg := DisputeMsg{
		Action:      "DisputeAssertion",
		AssertionID: assertionID,
		Disputer:    disputer,
	}
	return b.transferCall(currency, b.network.Contracts.Oracle, bond, msg, DisputeGas)
}

// Settle finalizes an assertion.
func (b *Builder) Settle(assertionID domain.Bytes32) domain.FunctionCall {
	return domain.FunctionCall{
		ContractID: b.network.Contracts.Oracle,
		Method:     "settle_assertion",
		Args:       AssertionIDArgs{AssertionID: assertionID},
		Gas:        SettleGas,
		Deposit:    domain.NoDeposit,
	}
}

// RetrySettlement re-issues settle_assertion, which the oracle treats as a
// payout retry once phase one has completed.
func (b *Builder) RetrySettlement(assertionID domain.Bytes32) domain.FunctionCall {
	return b.Settle(assertionID)
}

// CommitVote stakes on the voting contract with a hidden vote.
func (b *Builder) CommitVote(requestID, commitHash domain.Bytes32, stake string) (domain.FunctionCall, error) {
	msg := CommitVoteMsg{
		Action:     "CommitVote",
		RequestID:  requestID,
		CommitHash: commitHash,
	}
	return b.transferCall(b.network.Contracts.VotingToken, b.network.Contracts.Voting, stake, msg, CommitVoteGas)
}

// RevealVote discloses a committed price and salt.
func (b *Builder) RevealVote(requestID domain.Bytes32, price *big.Int, salt domain.Bytes32) (domain.FunctionCall, error) {
	if price == nil {
		return domain.FunctionCall{}, fmt.Errorf("reveal price is required")
	}
	if _, err := domain.EncodeI128LE(price); err != nil {
		return domain.FunctionCall{}, err
	}
	return domain.FunctionCall{
		ContractID: b.network.Contracts.Voting,
		Method:     "reveal_vote",
		Args: RevealVoteArgs{
			RequestID: requestID,
			Price:     json.Number(price.String()),
			Salt:      salt,
		},
		Gas:     RevealVoteGas,
		Deposit: domain.NoDeposit,
	}, nil
}

// AdvanceToReveal moves a request whose commit window ended into reveal.
func (b *Builder) AdvanceToReveal(requestID domain.Bytes32) domain.FunctionCall {
	return b.votingCall("advance_to_reveal", requestID, AdvanceToRevealGas)
}

// ResolvePrice tallies a request whose reveal window ended.
func (b *Builder) ResolvePrice(requestID domain.Bytes32) domain.FunctionCall {
	return b.votingCall("resolve_price", requestID, ResolvePriceGas)
}

// StorageDeposit registers accountID on a token contract.
func (b *Builder) StorageDeposit(tokenID, accountID string) domain.FunctionCall {
	return domain.FunctionCall{
		ContractID: tokenID,
		Method:     "storage_deposit",
		Args: StorageDepositArgs{
			AccountID:        accountID,
			RegistrationOnly: true,
		},
		Gas:     StorageDepositGas,
		Deposit: domain.StorageDepositFT,
	}
}

func (b *Builder) votingCall(method string, requestID domain.Bytes32, gas domain.Gas) domain.FunctionCall {
	return domain.FunctionCall{
		ContractID: b.network.Contracts.Voting,
		Method:     method,
		Args:       RequestIDArgs{RequestID: requestID},
		Gas:        gas,
		Deposit:    domain.NoDeposit,
	}
}

func (b *Builder) transferCall(tokenID, receiverID, amount string, msg any, gas domain.Gas) (domain.FunctionCall, error) {
	if tokenID == "" {
		return domain.FunctionCall{}, fmt.Errorf("token contract is required")
	}
	if _, err := domain.ParseRawAmount(amount); err != nil {
		return domain.FunctionCall{}, err
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return domain.FunctionCall{}, fmt.Errorf("failed to encode transfer message: %w", err)
	}
	return domain.FunctionCall{
		ContractID: tokenID,
		Method:     "ft_transfer_call",
		Args: FtTransferCallArgs{
			ReceiverID: receiverID,
			Amount:     amount,
			Msg:        string(encoded),
		},
		Gas:     gas,
		Deposit: domain.OneYocto,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
