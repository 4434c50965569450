package app

import (
	"log/slog"

	"github.com/nest-oracle/nest-cli/internal/adapters/progress"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Progress           *progress.SpinnerSink
	VoteSelector       usecase.VoteSelector
	CommitmentSelector usecase.CommitmentSelector

	// Assertions
	ListAssertions   *usecase.ListAssertions
	ShowAssertion    *usecase.ShowAssertion
	ProposeAssertion *usecase.ProposeAssertion
	DisputeAssertion *usecase.DisputeAssertion
	SettleAssertion  *usecase.SettleAssertion
	RetrySettlement  *usecase.RetrySettlement

	// Voting
	ListDisputedVotes *usecase.ListDisputedVotes
	WatchVotes        *usecase.WatchVotes
	CommitVote        *usecase.CommitVote
	RevealVote        *usecase.RevealVote
	AdvanceToReveal   *usecase.AdvanceToReveal
	ResolvePrice      *usecase.ResolvePrice

	// Management
	ListCommitments   *usecase.ListCommitments
	DiscardCommitment *usecase.DiscardCommitment
	PruneCommitments  *usecase.PruneCommitments
	AccountOverview   *usecase.AccountOverview
	RegisterStorage   *usecase.RegisterStorage
	IndexerHealth     *usecase.IndexerHealth
	ShowConfig        *usecase.ShowConfig
	SetConfig         *usecase.SetConfig
	RemoveConfig      *usecase.RemoveConfig
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	sink *progress.SpinnerSink,
	voteSelector usecase.VoteSelector,
	commitmentSelector usecase.CommitmentSelector,
	listAssertions *usecase.ListAssertions,
	showAssertion *usecase.ShowAssertion,
	proposeAssertion *usecase.ProposeAssertion,
	disputeAssertion *usecase.DisputeAssertion,
	settleAssertion *usecase.SettleAssertion,
	retrySettlement *usecase.RetrySettlement,
	listDisputedVotes *usecase.ListDisputedVotes,
	watchVotes *usecase.WatchVotes,
	commitVote *usecase.CommitVote,
	revealVote *usecase.RevealVote,
	advanceToReveal *usecase.AdvanceToReveal,
	resolvePrice *usecase.ResolvePrice,
	listCommitments *usecase.ListCommitments,
	discardCommitment *usecase.DiscardCommitment,
	pruneCommitments *usecase.PruneCommitments,
	accountOverview *usecase.AccountOverview,
	registerStorage *usecase.RegisterStorage,
	indexerHealth *usecase.IndexerHealth,
	showConfig *usecase.ShowConfig,
	setConfig *usecase.SetConfig,
	removeConfig *usecase.RemoveConfig,
) (*App, error) {
	return &App{
		Config:             cfg,
		Log:                log,
		Progress:           sink,
		VoteSelector:       voteSelector,
		CommitmentSelector: commitmentSelector,
		ListAssertions:     listAssertions,
		ShowAssertion:      showAssertion,
		ProposeAssertion:   proposeAssertion,
		DisputeAssertion:   disputeAssertion,
		SettleAssertion:    settleAssertion,
		RetrySettlement:    retrySettlement,
		ListDisputedVotes:  listDisputedVotes,
		WatchVotes:         watchVotes,
		CommitVote:         commitVote,
		RevealVote:         revealVote,
		AdvanceToReveal:    advanceToReveal,
		ResolvePrice:       resolvePrice,
		ListCommitments:    listCommitments,
		DiscardCommitment:  discardCommitment,
		PruneCommitments:   pruneCommitments,
		AccountOverview:    accountOverview,
		RegisterStorage:    registerStorage,
		IndexerHealth:      indexerHealth,
		ShowConfig:         showConfig,
		SetConfig:          setConfig,
		RemoveConfig:       removeConfig,
	}, nil
}
