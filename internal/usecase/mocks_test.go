package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/calls"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockWallet is a mock implementation of Wallet
type MockWallet struct {
	mock.Mock
	account  string
	notReady error
}

func (m *MockWallet) SignedAccountID() string {
	return m.account
}

func (m *MockWallet) Ready() error {
	if m.account == "" {
		return domain.ErrWalletNotConnected
	}
	if m.notReady != nil {
		return m.notReady
	}
	return nil
}

func (m *MockWallet) IsDryRun() bool { return false }

func (m *MockWallet) CallFunction(ctx context.Context, call domain.FunctionCall) (*domain.TxOutcome, error) {
	args := m.Called(ctx, call)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TxOutcome), args.Error(1)
}

// MockViewer is a mock implementation of ContractViewer
type MockViewer struct {
	mock.Mock
}

func (m *MockViewer) GetDisputeRequest(ctx context.Context, assertionID domain.Bytes32) (*domain.Bytes32, error) {
	args := m.Called(ctx, assertionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bytes32), args.Error(1)
}

func (m *MockViewer) GetRequest(ctx context.Context, requestID domain.Bytes32) (*domain.PriceRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceRequest), args.Error(1)
}

func (m *MockViewer) GetConfig(ctx context.Context) (*domain.DvmConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DvmConfig), args.Error(1)
}

func (m *MockViewer) FtBalanceOf(ctx context.Context, tokenID, accountID string) (string, error) {
	args := m.Called(ctx, tokenID, accountID)
	return args.String(0), args.Error(1)
}

func (m *MockViewer) StorageBalanceOf(ctx context.Context, tokenID, accountID string) (*domain.StorageBalance, error) {
	args := m.Called(ctx, tokenID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StorageBalance), args.Error(1)
}

func (m *MockViewer) GetOracleAssertion(ctx context.Context, assertionID domain.Bytes32) (*domain.OracleAssertionState, error) {
	args := m.Called(ctx, assertionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OracleAssertionState), args.Error(1)
}

// MockIndexer is a mock implementation of Indexer
type MockIndexer struct {
	mock.Mock
}

func (m *MockIndexer) ListAssertions(ctx context.Context, query usecase.AssertionQuery) (*usecase.AssertionPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.AssertionPage), args.Error(1)
}

func (m *MockIndexer) GetAssertion(ctx context.Context, id domain.Bytes32) (*domain.Assertion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assertion), args.Error(1)
}

func (m *MockIndexer) Health(ctx context.Context) (*usecase.IndexerStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.IndexerStatus), args.Error(1)
}

// memoryStore is an in-memory CommitmentStore
type memoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]*domain.VoteCommitment
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]map[string]*domain.VoteCommitment)}
}

func (s *memoryStore) Put(_ context.Context, account string, c *domain.VoteCommitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[account] == nil {
		s.data[account] = make(map[string]*domain.VoteCommitment)
	}
	cp := *c
	s.data[account][c.RequestID] = &cp
	return nil
}

func (s *memoryStore) Get(_ context.Context, account, requestID string) (*domain.VoteCommitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data[account][requestID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memoryStore) Delete(_ context.Context, account, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data[account], requestID)
	return nil
}

func (s *memoryStore) List(_ context.Context, account string) ([]*domain.VoteCommitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.VoteCommitment, 0, len(s.data[account]))
	for _, c := range s.data[account] {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestID < out[j].RequestID })
	return out, nil
}

func (s *memoryStore) Prune(_ context.Context, account string, keep func(*domain.VoteCommitment) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, c := range s.data[account] {
		if !keep(c) {
			delete(s.data[account], id)
			removed++
		}
	}
	return removed, nil
}

// recordingInvalidator remembers invalidated prefixes
type recordingInvalidator struct {
	mu       sync.Mutex
	prefixes []string
}

func (r *recordingInvalidator) Invalidate(prefixes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes = append(r.prefixes, prefixes...)
}

func (r *recordingInvalidator) Invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prefixes...)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRuntimeConfig(t *testing.T) *config.RuntimeConfig {
	t.Helper()
	network, err := config.BuiltinNetwork(config.Testnet)
	require.NoError(t, err)
	return &config.RuntimeConfig{
		Network:      network,
		StoreBackend: config.StoreJSON,
		FanOut:       4,
		PollInterval: time.Second,
		IndexerRPS:   10,
	}
}

func testBuilder(cfg *config.RuntimeConfig) *calls.Builder {
	return calls.NewBuilder(cfg.Network)
}

// id32 returns a Bytes32 filled with b.
func id32(b byte) domain.Bytes32 {
	var out domain.Bytes32
	for i := range out {
		out[i] = b
	}
	return out
}

var okOutcome = &domain.TxOutcome{TransactionHash: "9xTx", SignerID: "alice.testnet"}
