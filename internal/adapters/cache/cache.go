// Package cache memoizes indexer and contract reads for the lifetime of a
// command, with prefix invalidation after writes.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nest-oracle/nest-cli/internal/usecase"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL bounds how long a read is reused.
const DefaultTTL = 30 * time.Second

type entry struct {
	value   any
	expires time.Time
}

// ViewCache is a TTL cache keyed by strings. Concurrent misses for the same
// key share one fetch. Errors are never cached.
type ViewCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu       sync.Mutex
	entries  map[string]entry
	inflight map[string]uint64
	// epoch is bumped on every invalidation so fetches that started before it
	// do not store their results.
	epoch uint64
	loads uint64
}

// NewViewCache creates a cache with the given TTL.
func NewViewCache(ttl time.Duration) *ViewCache {
	return &ViewCache{
		ttl:      ttl,
		now:      time.Now,
		entries:  make(map[string]entry),
		inflight: make(map[string]uint64),
	}
}

// Invalidate drops every entry whose key starts with one of prefixes. Fetches
// still in flight for those keys are detached, so later callers start a new
// fetch instead of joining a stale one.
func (c *ViewCache) Invalidate(prefixes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	for key := range c.entries {
		if hasAnyPrefix(key, prefixes) {
			delete(c.entries, key)
		}
	}
	for key := range c.inflight {
		if hasAnyPrefix(key, prefixes) {
			c.group.Forget(key)
			delete(c.inflight, key)
		}
	}
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Len returns the number of live entries.
func (c *ViewCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}

func (c *ViewCache) lookup(key string) (any, bool, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok && c.now().Before(e.expires) {
		return e.value, true, c.epoch
	}
	if ok {
		delete(c.entries, key)
	}
	return nil, false, c.epoch
}

// begin registers an in-flight load and returns its token with the epoch
// the result must be stored under.
func (c *ViewCache) begin(key string) (token, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	c.inflight[key] = c.loads
	return c.loads, c.epoch
}

func (c *ViewCache) end(key string, token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] == token {
		delete(c.inflight, key)
	}
}

func (c *ViewCache) store(key string, value any, epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return
	}
	c.entries[key] = entry{value: value, expires: c.now().Add(c.ttl)}
}

// fetch returns the cached value for key or calls load once for all
// concurrent callers. The shared load runs with the first caller's context;
// a caller whose own context is still live retries alone when that context
// was cancelled under it.
func fetch[T any](ctx context.Context, c *ViewCache, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok, _ := c.lookup(key); ok {
		return v.(T), nil
	}

	shared := func(loadCtx context.Context) func() (any, error) {
		return func() (any, error) {
			token, epoch := c.begin(key)
			defer c.end(key, token)
			val, err := load(loadCtx)
			if err != nil {
				return nil, err
			}
			c.store(key, val, epoch)
			return val, nil
		}
	}

	v, err, _ := c.group.Do(key, shared(ctx))
	if err != nil && isCancellation(err) && ctx.Err() == nil {
		c.group.Forget(key)
		v, err = shared(ctx)()
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Ensure ViewCache implements CacheInvalidator
var _ usecase.CacheInvalidator = (*ViewCache)(nil)
