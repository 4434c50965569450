package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

const keyDvmConfig = "dvm-config"

// CachedViewer memoizes ContractViewer reads.
type CachedViewer struct {
	next  usecase.ContractViewer
	cache *ViewCache
}

// NewCachedViewer wraps next with cache.
func NewCachedViewer(next usecase.ContractViewer, cache *ViewCache) *CachedViewer {
	return &CachedViewer{next: next, cache: cache}
}

func (v *CachedViewer) GetDisputeRequest(ctx context.Context, assertionID domain.Bytes32) (*domain.Bytes32, error) {
	key := usecase.KeyDisputedVotes + ":dispute-request:" + assertionID.Hex()
	return fetch(ctx, v.cache, key, func(ctx context.Context) (*domain.Bytes32, error) {
		return v.next.GetDisputeRequest(ctx, assertionID)
	})
}

func (v *CachedViewer) GetRequest(ctx context.Context, requestID domain.Bytes32) (*domain.PriceRequest, error) {
	key := usecase.KeyDisputedVotes + ":request:" + requestID.Hex()
	return fetch(ctx, v.cache, key, func(ctx context.Context) (*domain.PriceRequest, error) {
		return v.next.GetRequest(ctx, requestID)
	})
}

func (v *CachedViewer) GetConfig(ctx context.Context) (*domain.DvmConfig, error) {
	return fetch(ctx, v.cache, keyDvmConfig, v.next.GetConfig)
}

func (v *CachedViewer) FtBalanceOf(ctx context.Context, tokenID, accountID string) (string, error) {
	key := fmt.Sprintf("%s:%s:%s", usecase.KeyBalances, tokenID, accountID)
	return fetch(ctx, v.cache, key, func(ctx context.Context) (string, error) {
		return v.next.FtBalanceOf(ctx, tokenID, accountID)
	})
}

func (v *CachedViewer) StorageBalanceOf(ctx context.Context, tokenID, accountID string) (*domain.StorageBalance, error) {
	key := fmt.Sprintf("%s:%s:%s", usecase.KeyStorage, tokenID, accountID)
	return fetch(ctx, v.cache, key, func(ctx context.Context) (*domain.StorageBalance, error) {
		return v.next.StorageBalanceOf(ctx, tokenID, accountID)
	})
}

func (v *CachedViewer) GetOracleAssertion(ctx context.Context, assertionID domain.Bytes32) (*domain.OracleAssertionState, error) {
	return fetch(ctx, v.cache, usecase.KeyOracleAssertion(assertionID), func(ctx context.Context) (*domain.OracleAssertionState, error) {
		return v.next.GetOracleAssertion(ctx, assertionID)
	})
}

// CachedIndexer memoizes Indexer reads. Health is never cached.
type CachedIndexer struct {
	next  usecase.Indexer
	cache *ViewCache
}

// NewCachedIndexer wraps next with cache.
func NewCachedIndexer(next usecase.Indexer, cache *ViewCache) *CachedIndexer {
	return &CachedIndexer{next: next, cache: cache}
}

func (i *CachedIndexer) ListAssertions(ctx context.Context, query usecase.AssertionQuery) (*usecase.AssertionPage, error) {
	return fetch(ctx, i.cache, listKey(query), func(ctx context.Context) (*usecase.AssertionPage, error) {
		return i.next.ListAssertions(ctx, query)
	})
}

func (i *CachedIndexer) GetAssertion(ctx context.Context, id domain.Bytes32) (*domain.Assertion, error) {
	key := usecase.KeyAssertions + ":get:" + id.Hex()
	return fetch(ctx, i.cache, key, func(ctx context.Context) (*domain.Assertion, error) {
		return i.next.GetAssertion(ctx, id)
	})
}

func (i *CachedIndexer) Health(ctx context.Context) (*usecase.IndexerStatus, error) {
	return i.next.Health(ctx)
}

func listKey(q usecase.AssertionQuery) string {
	return fmt.Sprintf("%s:list:%s|%s|%s|%s|%s|%s|%d|%d", usecase.KeyAssertions,
		q.Status, q.Asserter, q.Disputer, q.Currency,
		optBool(q.SettlementPending), optBool(q.SettlementInFlight), q.Page, q.PerPage)
}

func optBool(b *bool) string {
	if b == nil {
		return "-"
	}
	return strconv.FormatBool(*b)
}

var (
	_ usecase.ContractViewer = (*CachedViewer)(nil)
	_ usecase.Indexer        = (*CachedIndexer)(nil)
)
