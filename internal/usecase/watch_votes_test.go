package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationGate(t *testing.T) {
	gate := &usecase.GenerationGate{}

	g1 := gate.Begin()
	g2 := gate.Begin()

	err := gate.Accept(g1)
	assert.ErrorIs(t, err, domain.ErrStaleRead, "superseded poll must be dropped")

	require.NoError(t, gate.Accept(g2))
	assert.ErrorIs(t, gate.Accept(g2), domain.ErrStaleRead, "same generation applies once")

	g3 := gate.Begin()
	assert.NoError(t, gate.Accept(g3))
	assert.Equal(t, uint64(3), gate.Latest())
}

type scriptedLister struct {
	mu    sync.Mutex
	calls int
}

func (l *scriptedLister) Run(ctx context.Context, _ usecase.ListDisputedVotesParams) (*usecase.DisputedVotesResult, error) {
	l.mu.Lock()
	l.calls++
	n := l.calls
	l.mu.Unlock()

	if n == 2 {
		return nil, errors.New("indexer unavailable")
	}
	return &usecase.DisputedVotesResult{Total: n}, nil
}

func TestWatchVotes_AppliesInOrder(t *testing.T) {
	lister := &scriptedLister{}
	inv := &recordingInvalidator{}
	uc := usecase.NewWatchVotesWithLister(lister, inv, discardLogger())

	var (
		mu       sync.Mutex
		applied  []uint64
		failures []uint64
	)
	err := uc.Run(context.Background(), usecase.WatchVotesParams{
		Interval: 5 * time.Millisecond,
		MaxPolls: 3,
		OnUpdate: func(gen uint64, _ *usecase.DisputedVotesResult) {
			mu.Lock()
			defer mu.Unlock()
			applied = append(applied, gen)
		},
		OnError: func(gen uint64, _ error) {
			mu.Lock()
			defer mu.Unlock()
			failures = append(failures, gen)
		},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(applied); i++ {
		assert.Greater(t, applied[i], applied[i-1])
	}
	assert.LessOrEqual(t, len(applied)+len(failures), 3)
	assert.Contains(t, inv.Invalidated(), usecase.KeyDisputedVotes)
}

func TestWatchVotes_StopsOnCancel(t *testing.T) {
	uc := usecase.NewWatchVotesWithLister(&scriptedLister{}, usecase.NopInvalidator{}, discardLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := uc.Run(ctx, usecase.WatchVotesParams{Interval: time.Millisecond})
	assert.NoError(t, err)
}

func TestWatchVotes_RejectsBadInterval(t *testing.T) {
	uc := usecase.NewWatchVotesWithLister(&scriptedLister{}, usecase.NopInvalidator{}, discardLogger())
	assert.Error(t, uc.Run(context.Background(), usecase.WatchVotesParams{}))
}
