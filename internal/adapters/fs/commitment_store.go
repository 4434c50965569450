package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// commitmentFile holds one account's commitments keyed by normalized
// request id. On disk it is a bare JSON array of commitments.
type commitmentFile struct {
	Commitments map[string]*domain.VoteCommitment
}

// sorted returns the commitments ordered by request id.
func (f *commitmentFile) sorted() []*domain.VoteCommitment {
	out := make([]*domain.VoteCommitment, 0, len(f.Commitments))
	for _, c := range f.Commitments {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestID < out[j].RequestID })
	return out
}

// CommitmentStoreAdapter implements CommitmentStore with one JSON file per
// account under <data dir>/commitments/<network>/.
type CommitmentStoreAdapter struct {
	dir string
	mu  sync.Mutex
}

// NewCommitmentStoreAdapter creates a new CommitmentStoreAdapter
func NewCommitmentStoreAdapter(cfg *config.RuntimeConfig) *CommitmentStoreAdapter {
	return NewCommitmentStoreAdapterAt(filepath.Join(cfg.DataDir, "commitments", string(cfg.Network.ID)))
}

// NewCommitmentStoreAdapterAt stores files directly under dir.
func NewCommitmentStoreAdapterAt(dir string) *CommitmentStoreAdapter {
	return &CommitmentStoreAdapter{dir: dir}
}

// Put stores or replaces the commitment for its request id.
func (s *CommitmentStoreAdapter) Put(_ context.Context, account string, c *domain.VoteCommitment) error {
	key, err := domain.NormalizeRequestID(c.RequestID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(account)
	if err != nil {
		return err
	}
	stored := *c
	stored.RequestID = key
	file.Commitments[key] = &stored
	return s.save(account, file)
}

// Get returns the commitment or domain.ErrNotFound.
func (s *CommitmentStoreAdapter) Get(_ context.Context, account, requestID string) (*domain.VoteCommitment, error) {
	key, err := domain.NormalizeRequestID(requestID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(account)
	if err != nil {
		return nil, err
	}
	c, ok := file.Commitments[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

// Delete removes the commitment; deleting an absent one is not an error.
func (s *CommitmentStoreAdapter) Delete(_ context.Context, account, requestID string) error {
	key, err := domain.NormalizeRequestID(requestID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(account)
	if err != nil {
		return err
	}
	if _, ok := file.Commitments[key]; !ok {
		return nil
	}
	delete(file.Commitments, key)
	return s.save(account, file)
}

// List returns the account's commitments ordered by request id.
func (s *CommitmentStoreAdapter) List(_ context.Context, account string) ([]*domain.VoteCommitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(account)
	if err != nil {
		return nil, err
	}
	return file.sorted(), nil
}

// Prune removes every commitment keep rejects.
func (s *CommitmentStoreAdapter) Prune(_ context.Context, account string, keep func(*domain.VoteCommitment) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load(account)
	if err != nil {
		return 0, err
	}
	removed := 0
	for key, c := range file.Commitments {
		if !keep(c) {
			delete(file.Commitments, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(account, file)
}

// PathFor returns the file holding account's commitments.
func (s *CommitmentStoreAdapter) PathFor(account string) string {
	return filepath.Join(s.dir, SanitizeAccountID(account)+".json")
}

func (s *CommitmentStoreAdapter) load(account string) (*commitmentFile, error) {
	file := &commitmentFile{Commitments: map[string]*domain.VoteCommitment{}}
	data, err := os.ReadFile(s.PathFor(account))
	if err != nil {
		if os.IsNotExist(err) {
			return file, nil
		}
		return nil, fmt.Errorf("failed to read commitments file: %w", err)
	}

	var list []*domain.VoteCommitment
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse commitments file: %w", err)
	}
	for _, c := range list {
		if c == nil {
			continue
		}
		key, err := domain.NormalizeRequestID(c.RequestID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse commitments file: %w", err)
		}
		c.RequestID = key
		file.Commitments[key] = c
	}
	return file, nil
}

func (s *CommitmentStoreAdapter) save(account string, file *commitmentFile) error {
	data, err := json.MarshalIndent(file.sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal commitments: %w", err)
	}
	if err := writeFileAtomic(s.PathFor(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write commitments file: %w", err)
	}
	return nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeAccountID maps an account id to a safe file name.
func SanitizeAccountID(account string) string {
	name := unsafeFileChars.ReplaceAllString(account, "_")
	if name == "" || name == "." || name == ".." {
		name = "_" + name
	}
	return name
}

// Ensure CommitmentStoreAdapter implements CommitmentStore
var _ usecase.CommitmentStore = (*CommitmentStoreAdapter)(nil)
