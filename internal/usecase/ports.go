package usecase

import (
	"context"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
)

// Wallet signs and submits contract calls for the connected account.
type Wallet interface {
	// SignedAccountID returns "" when no account is connected.
	SignedAccountID() string
	// Ready reports ErrWalletNotConnected when calls cannot be submitted.
	Ready() error
	// IsDryRun is true when calls are printed instead of submitted.
	IsDryRun() bool
	CallFunction(ctx context.Context, call domain.FunctionCall) (*domain.TxOutcome, error)
}

// ContractViewer reads contract state through view calls. Absent values
// (no dispute request, unknown request, unregistered account) are nil, not errors.
type ContractViewer interface {
	GetDisputeRequest(ctx context.Context, assertionID domain.Bytes32) (*domain.Bytes32, error)
	GetRequest(ctx context.Context, requestID domain.Bytes32) (*domain.PriceRequest, error)
	GetConfig(ctx context.Context) (*domain.DvmConfig, error)
	FtBalanceOf(ctx context.Context, tokenID, accountID string) (string, error)
	StorageBalanceOf(ctx context.Context, tokenID, accountID string) (*domain.StorageBalance, error)
	GetOracleAssertion(ctx context.Context, assertionID domain.Bytes32) (*domain.OracleAssertionState, error)
}

// AssertionQuery filters an indexer listing. Zero values mean "any".
type AssertionQuery struct {
	Status             domain.AssertionStatus
	Asserter           string
	Disputer           string
	Currency           string
	SettlementPending  *bool
	SettlementInFlight *bool
	Page               int
	PerPage            int
}

// AssertionPage is one page of indexed assertions.
type AssertionPage struct {
	Assertions []*domain.Assertion
	Total      int
	Page       int
	PerPage    int
}

// IndexerStatus is the indexer's /health report.
type IndexerStatus struct {
	Status          string  `json:"status"`
	AssertionsCount int64   `json:"assertions_count"`
	LastBlockHeight *uint64 `json:"last_block_height"`
}

// Indexer serves denormalized assertion reads. It may lag the chain.
type Indexer interface {
	ListAssertions(ctx context.Context, query AssertionQuery) (*AssertionPage, error)
	GetAssertion(ctx context.Context, id domain.Bytes32) (*domain.Assertion, error)
	Health(ctx context.Context) (*IndexerStatus, error)
}

// CommitmentStore persists vote commitments per account. Get returns
// domain.ErrNotFound when absent; Delete of an absent entry is not an error.
type CommitmentStore interface {
	Put(ctx context.Context, account string, commitment *domain.VoteCommitment) error
	Get(ctx context.Context, account, requestID string) (*domain.VoteCommitment, error)
	Delete(ctx context.Context, account, requestID string) error
	List(ctx context.Context, account string) ([]*domain.VoteCommitment, error)
	// Prune removes every commitment for which keep returns false and
	// reports how many were removed.
	Prune(ctx context.Context, account string, keep func(*domain.VoteCommitment) bool) (int, error)
}

// LocalConfigStore manages local configuration persistence
type LocalConfigStore interface {
	Exists() bool
	Load(ctx context.Context) (*config.LocalConfig, error)
	Save(ctx context.Context, config *config.LocalConfig) error
	GetPath() string
}

// CacheInvalidator drops cached reads whose keys start with any of the given prefixes.
type CacheInvalidator interface {
	Invalidate(prefixes ...string)
}

// Cache key prefixes invalidated after writes.
const (
	KeyAssertions     = "assertions"
	KeyDisputedVotes  = "disputed-votes"
	KeyBalances       = "balance"
	KeyStorage        = "storage"
	keyOracleAssert   = "oracle-assertion:"
	keyCommitmentsFor = "commitments:"
)

// KeyOracleAssertion is the cache key of one assertion's oracle state.
func KeyOracleAssertion(id domain.Bytes32) string {
	return keyOracleAssert + id.Hex()
}

// KeyCommitments is the cache key of an account's stored commitments.
func KeyCommitments(account string) string {
	return keyCommitmentsFor + account
}

// NopInvalidator is used when reads are not cached.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(...string) {}

// Clock supplies the current time for status and phase derivation.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   string
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// VoteSelector picks a disputed vote interactively
type VoteSelector interface {
	SelectVote(ctx context.Context, votes []*DisputedVote, prompt string) (*DisputedVote, error)
}

// CommitmentSelector picks a stored commitment interactively
type CommitmentSelector interface {
	SelectCommitment(ctx context.Context, commitments []*domain.VoteCommitment, prompt string) (*domain.VoteCommitment, error)
}
