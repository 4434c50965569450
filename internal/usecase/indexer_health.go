package usecase

import (
	"context"
	"fmt"
)

// IndexerHealth reports the indexer's sync status
type IndexerHealth struct {
	indexer Indexer
}

// NewIndexerHealth creates a new IndexerHealth use case
func NewIndexerHealth(indexer Indexer) *IndexerHealth {
	return &IndexerHealth{indexer: indexer}
}

// Run executes the health check
func (uc *IndexerHealth) Run(ctx context.Context) (*IndexerStatus, error) {
	status, err := uc.indexer.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("indexer health check failed: %w", err)
	}
	return status, nil
}
