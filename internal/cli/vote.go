package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nest-oracle/nest-cli/internal/app"
	"github.com/nest-oracle/nest-cli/internal/cli/render"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// NewVoteCmd creates the vote command with the DVM voting subcommands
func NewVoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote",
		Short: "Take part in DVM votes on disputed assertions",
		Long: `Take part in DVM votes on disputed assertions.

A vote runs in two windows. During the commit window you submit a hash of
your vote and a random salt; during the reveal window you disclose both. The
salt is stored in the local data directory only, so reveal from the machine
you committed on.`,
	}

	cmd.AddCommand(newVoteListCmd())
	cmd.AddCommand(newVoteCommitCmd())
	cmd.AddCommand(newVoteRevealCmd())
	cmd.AddCommand(newVoteAdvanceCmd())
	cmd.AddCommand(newVoteResolveCmd())
	cmd.AddCommand(newVoteWatchCmd())

	return cmd
}

func newVoteListCmd() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List disputed assertions with their DVM phase",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListDisputedVotes.Run(cmd.Context(), usecase.ListDisputedVotesParams{
				Account: app.Config.Account,
				Page:    page,
			})
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewDisputedVotesJSON(result), func() error {
				return render.NewVotesRenderer(cmd.OutOrStdout(), app.Config.Network, time.Now()).RenderList(result)
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Indexer page of disputed assertions")
	return cmd
}

// voteTarget resolves the assertion (and request, when known) a vote command acts on.
// Without an argument the user picks among disputes that offer action.
func voteTarget(cmd *cobra.Command, a *app.App, args []string, requestFlag string, action domain.VoteAction) (domain.Bytes32, *domain.Bytes32, error) {
	requestID, err := optionalRequestID(requestFlag)
	if err != nil {
		return domain.Bytes32{}, nil, err
	}
	if len(args) == 1 {
		id, err := parseID("assertion id", args[0])
		return id, requestID, err
	}

	listing, err := a.ListDisputedVotes.Run(cmd.Context(), usecase.ListDisputedVotesParams{Account: a.Config.Account})
	if err != nil {
		return domain.Bytes32{}, nil, err
	}
	a.Progress.Stop()

	candidates := lo.Filter(listing.Votes, func(v *usecase.DisputedVote, _ int) bool {
		return lo.Contains(v.Actions, action)
	})
	if len(candidates) == 0 {
		return domain.Bytes32{}, nil, fmt.Errorf("no disputed assertion currently allows %s", action)
	}

	selected, err := a.VoteSelector.SelectVote(cmd.Context(), candidates, fmt.Sprintf("Select a dispute to %s", action))
	if err != nil {
		return domain.Bytes32{}, nil, err
	}
	return selected.Assertion.ID, selected.RequestID, nil
}

func newVoteCommitCmd() *cobra.Command {
	var (
		yes       bool
		no        bool
		stake     string
		requestID string
	)

	cmd := &cobra.Command{
		Use:   "commit [assertion-id]",
		Short: "Commit a hidden vote with a stake of voting tokens",
		Long: `Commit a hidden vote on the DVM request of a disputed assertion.

--yes votes that the claim is true, --no that it is false. The commitment is
saved locally before the transaction is sent; keep the data directory until
you have revealed.`,
		Example: `  nest vote commit 0x5f1c...e9 --yes --stake 250`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if yes == no {
				return fmt.Errorf("choose exactly one of --yes or --no")
			}

			assertionID, reqID, err := voteTarget(cmd, app, args, requestID, domain.VoteActionCommit)
			if err != nil {
				return err
			}

			result, err := app.CommitVote.Run(cmd.Context(), usecase.CommitVoteParams{
				AssertionID: assertionID,
				RequestID:   reqID,
				Vote:        yes,
				Stake:       stake,
			})
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewCommitJSON(result), func() error {
				return render.NewVotesRenderer(cmd.OutOrStdout(), app.Config.Network, time.Now()).RenderCommit(result)
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Vote that the claim is true")
	cmd.Flags().BoolVar(&no, "no", false, "Vote that the claim is false")
	cmd.Flags().StringVar(&stake, "stake", "", "Voting tokens to stake, e.g. 250")
	cmd.Flags().StringVar(&requestID, "request-id", "", "DVM request id, skips the dispute lookup")
	cmd.MarkFlagsMutuallyExclusive("yes", "no")
	_ = cmd.MarkFlagRequired("stake")

	return cmd
}

func newVoteRevealCmd() *cobra.Command {
	var requestID string

	cmd := &cobra.Command{
		Use:   "reveal [assertion-id]",
		Short: "Reveal a committed vote",
		Long: `Reveal a vote committed from this machine. Without an assertion id you
pick one of the stored commitments.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params, err := revealTarget(cmd, app, args, requestID)
			if err != nil {
				return err
			}

			result, err := app.RevealVote.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewRevealJSON(result), func() error {
				return render.NewVotesRenderer(cmd.OutOrStdout(), app.Config.Network, time.Now()).RenderReveal(result)
			})
		},
	}

	cmd.Flags().StringVar(&requestID, "request-id", "", "DVM request id, skips the dispute lookup")
	return cmd
}

func revealTarget(cmd *cobra.Command, a *app.App, args []string, requestFlag string) (usecase.RevealVoteParams, error) {
	reqID, err := optionalRequestID(requestFlag)
	if err != nil {
		return usecase.RevealVoteParams{}, err
	}
	if len(args) == 1 {
		id, err := parseID("assertion id", args[0])
		return usecase.RevealVoteParams{AssertionID: id, RequestID: reqID}, err
	}

	commitments, err := a.ListCommitments.Run(cmd.Context())
	if err != nil {
		return usecase.RevealVoteParams{}, err
	}
	if len(commitments) == 0 {
		return usecase.RevealVoteParams{}, domain.ErrNoCommitmentFound
	}

	selected, err := a.CommitmentSelector.SelectCommitment(cmd.Context(), commitments, "Select a commitment to reveal")
	if err != nil {
		return usecase.RevealVoteParams{}, err
	}
	assertionID, err := domain.ParseBytes32(selected.AssertionID)
	if err != nil {
		return usecase.RevealVoteParams{}, err
	}
	requestID, err := selected.RequestIDBytes()
	if err != nil {
		return usecase.RevealVoteParams{}, err
	}
	return usecase.RevealVoteParams{AssertionID: assertionID, RequestID: &requestID}, nil
}

func newVoteAdvanceCmd() *cobra.Command {
	var requestID string

	cmd := &cobra.Command{
		Use:   "advance [assertion-id]",
		Short: "Move a request whose commit window ended into reveal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			assertionID, reqID, err := voteTarget(cmd, app, args, requestID, domain.VoteActionAdvanceToReveal)
			if err != nil {
				return err
			}

			result, err := app.AdvanceToReveal.Run(cmd.Context(), usecase.VoteRequestParams{AssertionID: assertionID, RequestID: reqID})
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewAdvanceJSON(result), func() error {
				return render.NewVotesRenderer(cmd.OutOrStdout(), app.Config.Network, time.Now()).RenderAdvance(result)
			})
		},
	}

	cmd.Flags().StringVar(&requestID, "request-id", "", "DVM request id, skips the dispute lookup")
	return cmd
}

func newVoteResolveCmd() *cobra.Command {
	var requestID string

	cmd := &cobra.Command{
		Use:   "resolve [assertion-id]",
		Short: "Tally the reveals of a request whose reveal window ended",
		Long: `Tally the reveals of a request whose reveal window ended.

With too little participation the contract extends the reveal window, or
flags the request for emergency resolution; both are reported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			assertionID, reqID, err := voteTarget(cmd, app, args, requestID, domain.VoteActionResolvePrice)
			if err != nil {
				return err
			}

			result, err := app.ResolvePrice.Run(cmd.Context(), usecase.VoteRequestParams{AssertionID: assertionID, RequestID: reqID})
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewResolveJSON(result), func() error {
				return render.NewVotesRenderer(cmd.OutOrStdout(), app.Config.Network, time.Now()).RenderResolve(result)
			})
		},
	}

	cmd.Flags().StringVar(&requestID, "request-id", "", "DVM request id, skips the dispute lookup")
	return cmd
}

func newVoteWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		maxPolls int
	)

	cmd := &cobra.Command{
		Use:         "watch",
		Short:       "Poll disputed votes until interrupted",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{noTimeoutAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			if interval == 0 {
				interval = app.Config.PollInterval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			renderer := render.NewVotesRenderer(out, app.Config.Network, time.Now())

			return app.WatchVotes.Run(ctx, usecase.WatchVotesParams{
				Account:  app.Config.Account,
				Interval: interval,
				MaxPolls: maxPolls,
				OnUpdate: func(generation uint64, result *usecase.DisputedVotesResult) {
					app.Progress.Stop()
					var err error
					if app.Config.JSON {
						err = render.JSON(out, render.NewDisputedVotesJSON(result))
					} else {
						err = renderer.RenderWatchUpdate(generation, time.Now(), result)
					}
					if err != nil {
						app.Log.Warn("failed to render poll", "generation", generation, "error", err)
					}
				},
				OnError: func(generation uint64, err error) {
					app.Progress.Stop()
					if ctx.Err() != nil {
						return
					}
					fmt.Fprintln(cmd.ErrOrStderr(), render.FormatError(err))
				},
			})
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Time between polls (default 15s)")
	cmd.Flags().IntVar(&maxPolls, "max-polls", 0, "Stop after this many polls; 0 watches until interrupted")
	return cmd
}

