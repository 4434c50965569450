// Package sqlite stores vote commitments in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"

	_ "modernc.org/sqlite"
)

// DatabaseFileName is created under the data directory.
const DatabaseFileName = "nest.db"

const schema = `
CREATE TABLE IF NOT EXISTS commitments (
	network      TEXT NOT NULL,
	account      TEXT NOT NULL,
	request_id   TEXT NOT NULL,
	assertion_id TEXT NOT NULL,
	price        TEXT NOT NULL,
	salt         TEXT NOT NULL,
	commit_hash  TEXT NOT NULL,
	committed_at INTEGER NOT NULL,
	PRIMARY KEY (network, account, request_id)
)`

// CommitmentStore implements usecase.CommitmentStore on SQLite. Rows are
// partitioned by network and account.
type CommitmentStore struct {
	db      *sql.DB
	network string

	mu     sync.Mutex
	schema bool
}

// NewCommitmentStore opens <data dir>/nest.db.
func NewCommitmentStore(cfg *config.RuntimeConfig) (*CommitmentStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return Open(filepath.Join(cfg.DataDir, DatabaseFileName), string(cfg.Network.ID))
}

// Open opens the database at dsn for one network.
func Open(dsn, network string) (*CommitmentStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return NewWithDB(db, network), nil
}

// NewWithDB wraps an open database handle. The table is created on first use.
func NewWithDB(db *sql.DB, network string) *CommitmentStore {
	return &CommitmentStore{db: db, network: network}
}

// Close releases the database handle.
func (s *CommitmentStore) Close() error {
	return s.db.Close()
}

// ensureSchema must be called with s.mu held.
func (s *CommitmentStore) ensureSchema(ctx context.Context) error {
	if s.schema {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to init commitments table: %w", err)
	}
	s.schema = true
	return nil
}

// Put upserts the commitment for its request id.
func (s *CommitmentStore) Put(ctx context.Context, account string, c *domain.VoteCommitment) error {
	key, err := domain.NormalizeRequestID(c.RequestID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO commitments (network, account, request_id, assertion_id, price, salt, commit_hash, committed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (network, account, request_id) DO UPDATE SET
			assertion_id = excluded.assertion_id,
			price = excluded.price,
			salt = excluded.salt,
			commit_hash = excluded.commit_hash,
			committed_at = excluded.committed_at`,
		s.network, account, key, c.AssertionID, c.Price, c.Salt.Hex(), c.CommitHash.Hex(), c.CommittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store commitment: %w", err)
	}
	return nil
}

// Get returns the commitment or domain.ErrNotFound.
func (s *CommitmentStore) Get(ctx context.Context, account, requestID string) (*domain.VoteCommitment, error) {
	key, err := domain.NormalizeRequestID(requestID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT request_id, assertion_id, price, salt, commit_hash, committed_at
		FROM commitments WHERE network = ? AND account = ? AND request_id = ?`,
		s.network, account, key,
	)
	c, err := scanCommitment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read commitment: %w", err)
	}
	return c, nil
}

// Delete removes the commitment; deleting an absent one is not an error.
func (s *CommitmentStore) Delete(ctx context.Context, account, requestID string) error {
	key, err := domain.NormalizeRequestID(requestID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM commitments WHERE network = ? AND account = ? AND request_id = ?`,
		s.network, account, key,
	); err != nil {
		return fmt.Errorf("failed to delete commitment: %w", err)
	}
	return nil
}

// List returns the account's commitments ordered by request id.
func (s *CommitmentStore) List(ctx context.Context, account string) ([]*domain.VoteCommitment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s.list(ctx, account)
}

func (s *CommitmentStore) list(ctx context.Context, account string) ([]*domain.VoteCommitment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT request_id, assertion_id, price, salt, commit_hash, committed_at
		FROM commitments WHERE network = ? AND account = ? ORDER BY request_id`,
		s.network, account,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list commitments: %w", err)
	}
	defer rows.Close()

	var out []*domain.VoteCommitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read commitment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Prune removes every commitment keep rejects, in one transaction.
func (s *CommitmentStore) Prune(ctx context.Context, account string, keep func(*domain.VoteCommitment) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}

	all, err := s.list(ctx, account)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	removed := 0
	for _, c := range all {
		if keep(c) {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM commitments WHERE network = ? AND account = ? AND request_id = ?`,
			s.network, account, c.RequestID,
		); err != nil {
			return 0, fmt.Errorf("failed to delete commitment: %w", err)
		}
		removed++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return removed, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCommitment(row scanner) (*domain.VoteCommitment, error) {
	var (
		c          domain.VoteCommitment
		salt, hash string
	)
	if err := row.Scan(&c.RequestID, &c.AssertionID, &c.Price, &salt, &hash, &c.CommittedAt); err != nil {
		return nil, err
	}
	var err error
	if c.Salt, err = domain.ParseBytes32(salt); err != nil {
		return nil, err
	}
	if c.CommitHash, err = domain.ParseBytes32(hash); err != nil {
		return nil, err
	}
	return &c, nil
}

// Ensure CommitmentStore implements CommitmentStore
var _ usecase.CommitmentStore = (*CommitmentStore)(nil)
