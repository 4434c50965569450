package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
)

// DisputedVotesLister is satisfied by ListDisputedVotes.
type DisputedVotesLister interface {
	Run(ctx context.Context, params ListDisputedVotesParams) (*DisputedVotesResult, error)
}

// WatchVotesParams contains parameters for watching disputed votes
type WatchVotesParams struct {
	Account  string
	Interval time.Duration
	// MaxPolls stops after that many polls; 0 watches until ctx is done.
	MaxPolls int
	// OnUpdate receives every applied result in generation order.
	OnUpdate func(generation uint64, result *DisputedVotesResult)
	// OnError receives failures of the newest poll.
	OnError func(generation uint64, err error)
}

// WatchVotes polls the disputed vote listing. Each poll carries a generation
// number; starting a poll cancels the one before it, and a result is applied
// only when it is newer than the last applied one.
type WatchVotes struct {
	lister      DisputedVotesLister
	invalidator CacheInvalidator
	log         *slog.Logger
}

// NewWatchVotes creates a new WatchVotes use case
func NewWatchVotes(lister *ListDisputedVotes, invalidator CacheInvalidator, log *slog.Logger) *WatchVotes {
	return NewWatchVotesWithLister(lister, invalidator, log)
}

// NewWatchVotesWithLister creates a WatchVotes over any lister.
func NewWatchVotesWithLister(lister DisputedVotesLister, invalidator CacheInvalidator, log *slog.Logger) *WatchVotes {
	return &WatchVotes{lister: lister, invalidator: invalidator, log: log}
}

type pollResult struct {
	generation uint64
	result     *DisputedVotesResult
	err        error
}

// Run polls until ctx is done or MaxPolls is reached. It returns nil when ctx
// is cancelled.
func (uc *WatchVotes) Run(ctx context.Context, params WatchVotesParams) error {
	if params.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", params.Interval)
	}

	gate := &GenerationGate{}
	results := make(chan pollResult)
	var wg sync.WaitGroup
	defer wg.Wait()

	var cancelPrev context.CancelFunc = func() {}
	defer func() { cancelPrev() }()

	started := 0
	outstanding := 0
	startPoll := func() {
		cancelPrev()
		pollCtx, cancel := context.WithCancel(ctx)
		cancelPrev = cancel
		gen := gate.Begin()
		started++
		outstanding++
		uc.invalidator.Invalidate(KeyAssertions, KeyDisputedVotes)

		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := uc.lister.Run(pollCtx, ListDisputedVotesParams{Account: params.Account})
			select {
			case results <- pollResult{generation: gen, result: res, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	ticker := time.NewTicker(params.Interval)
	defer ticker.Stop()

	startPoll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if params.MaxPolls == 0 || started < params.MaxPolls {
				startPoll()
			}
		case r := <-results:
			outstanding--
			uc.apply(gate, params, r)
			if params.MaxPolls > 0 && started >= params.MaxPolls && outstanding == 0 {
				return nil
			}
		}
	}
}

func (uc *WatchVotes) apply(gate *GenerationGate, params WatchVotesParams, r pollResult) {
	if err := gate.Accept(r.generation); err != nil {
		uc.log.Debug("dropping poll result", "generation", r.generation, "latest", gate.Latest(), "error", err)
		return
	}
	if r.err != nil {
		if errors.Is(r.err, context.Canceled) {
			return
		}
		if params.OnError != nil {
			params.OnError(r.generation, r.err)
		}
		return
	}
	if params.OnUpdate != nil {
		params.OnUpdate(r.generation, r.result)
	}
}

// GenerationGate orders asynchronous reads. Begin numbers a read; Accept
// admits a completed read only if nothing newer has been applied and no newer
// read has started.
type GenerationGate struct {
	mu      sync.Mutex
	latest  uint64
	applied uint64
}

// Begin starts a new generation and returns its number.
func (g *GenerationGate) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latest++
	return g.latest
}

// Accept returns domain.ErrStaleRead for superseded generations.
func (g *GenerationGate) Accept(gen uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen <= g.applied || gen < g.latest {
		return fmt.Errorf("%w: generation %d superseded by %d", domain.ErrStaleRead, gen, g.latest)
	}
	g.applied = gen
	return nil
}

// Latest returns the newest generation started.
func (g *GenerationGate) Latest() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.latest
}
