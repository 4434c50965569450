package cli

import (
	"github.com/nest-oracle/nest-cli/internal/cli/render"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/spf13/cobra"
)

// NewCommitmentsCmd creates the commitments command for the local vote store
func NewCommitmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commitments",
		Short: "Manage locally stored vote commitments",
		Long: `Manage the vote commitments stored in the data directory.

A commitment holds the only copy of the salt needed to reveal a vote. It is
removed automatically after a successful reveal.`,
	}

	cmd.AddCommand(newCommitmentsListCmd())
	cmd.AddCommand(newCommitmentsDiscardCmd())
	cmd.AddCommand(newCommitmentsPruneCmd())

	return cmd
}

func newCommitmentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored commitments for the connected account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			commitments, err := app.ListCommitments.Run(cmd.Context())
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewCommitmentsJSON(commitments), func() error {
				return render.NewAccountRenderer(cmd.OutOrStdout(), app.Config.Network).RenderCommitments(commitments)
			})
		},
	}
}

func newCommitmentsDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard [request-id]",
		Short: "Delete a stored commitment; the vote can no longer be revealed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			var requestID string
			if len(args) == 1 {
				requestID = args[0]
			} else {
				commitments, err := app.ListCommitments.Run(cmd.Context())
				if err != nil {
					return err
				}
				if len(commitments) == 0 {
					return domain.ErrNoCommitmentFound
				}
				selected, err := app.CommitmentSelector.SelectCommitment(cmd.Context(), commitments, "Select a commitment to discard")
				if err != nil {
					return err
				}
				requestID = selected.RequestID
			}

			removed, err := app.DiscardCommitment.Run(cmd.Context(), requestID)
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewCommitmentsJSON([]*domain.VoteCommitment{removed}), func() error {
				return render.NewAccountRenderer(cmd.OutOrStdout(), app.Config.Network).RenderDiscard(removed)
			})
		},
	}
}

func newCommitmentsPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove commitments whose request has resolved",
		Long: `Remove commitments whose DVM request has resolved or no longer exists.
With --dry-run the commitments are listed but kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			dryRun := app.Config.DryRun
			result, err := app.PruneCommitments.Run(cmd.Context(), dryRun)
			if err != nil {
				return err
			}

			view := struct {
				Removed []render.CommitmentJSON `json:"removed"`
				Kept    int                     `json:"kept"`
				DryRun  bool                    `json:"dry_run"`
			}{render.NewCommitmentsJSON(result.Removed), result.Kept, dryRun}

			return emit(cmd, app, view, func() error {
				return render.NewAccountRenderer(cmd.OutOrStdout(), app.Config.Network).RenderPrune(result, dryRun)
			})
		},
	}
}
