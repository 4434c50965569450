package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/nest-oracle/nest-cli/internal/cli/render"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// NewAssertionsCmd creates the assertions command with its list and show subcommands
func NewAssertionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assertions",
		Aliases: []string{"a"},
		Short:   "Browse oracle assertions",
	}
	cmd.AddCommand(newAssertionsListCmd())
	cmd.AddCommand(newAssertionsShowCmd())
	return cmd
}

func newAssertionsListCmd() *cobra.Command {
	var (
		status   string
		asserter string
		disputer string
		currency string
		pending  bool
		page     int
		perPage  int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List assertions from the indexer",
		Long: `List assertions known to the indexer, newest first.

Statuses are derived locally from the assertion's flags and the current time:
` + strings.Join(lo.Map(domain.AllAssertionStatuses, func(s domain.AssertionStatus, _ int) string {
			return "  " + string(s)
		}), "\n"),
		Example: `  # Disputed assertions
  nest assertions list --status disputed

  # Assertions made by one account
  nest assertions list --asserter alice.near`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ListAssertionsParams{
				Asserter: asserter,
				Disputer: disputer,
				Currency: currency,
				Page:     page,
				PerPage:  perPage,
			}
			if status != "" {
				params.Status, err = domain.ParseAssertionStatus(status)
				if err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("settlement-pending") {
				params.SettlementPending = &pending
			}
			if params.Currency != "" {
				if id, ok := app.Config.Network.FindCurrencyBySymbol(strings.ToUpper(params.Currency)); ok {
					params.Currency = id
				}
			}

			result, err := app.ListAssertions.Run(cmd.Context(), params)
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewAssertionListJSON(result), func() error {
				return render.NewAssertionsRenderer(cmd.OutOrStdout(), app.Config.Network, time.Now()).RenderList(result)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by derived status")
	cmd.Flags().StringVar(&asserter, "asserter", "", "Filter by asserter account")
	cmd.Flags().StringVar(&disputer, "disputer", "", "Filter by disputer account")
	cmd.Flags().StringVar(&currency, "currency", "", "Filter by bond token (contract id or symbol)")
	cmd.Flags().BoolVar(&pending, "settlement-pending", false, "Only assertions whose settlement payout is pending")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&perPage, "per-page", 20, "Results per page")

	return cmd
}

func newAssertionsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <assertion-id>",
		Short: "Show one assertion with its settlement and DVM state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			id, err := parseID("assertion id", args[0])
			if err != nil {
				return err
			}

			detail, err := app.ShowAssertion.Run(cmd.Context(), id)
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewAssertionDetailJSON(detail), func() error {
				return render.NewAssertionsRenderer(cmd.OutOrStdout(), app.Config.Network, time.Now()).RenderDetail(detail)
			})
		},
	}
}

// NewProposeCmd creates the propose command
func NewProposeCmd() *cobra.Command {
	var (
		currency          string
		bond              string
		liveness          string
		hashClaim         bool
		callbackRecipient string
		escalationManager string
	)

	presets := lo.Map(domain.LivenessPresets, func(p domain.LivenessPreset, _ int) string { return p.Label })

	cmd := &cobra.Command{
		Use:   "propose <claim>",
		Short: "Assert a claim with a bond",
		Long: `Assert a claim on the optimistic oracle. The claim becomes true unless
someone disputes it before the liveness window ends.

Claims are stored as 32 bytes. Longer claims need --hash-claim, which stores
the Keccak-256 of the text instead.`,
		Example: `  nest propose "ETH above 3000 on 2026-01-01" --currency USDC --bond 100 --liveness 6h`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			window, err := parseLiveness(liveness)
			if err != nil {
				return err
			}

			result, err := app.ProposeAssertion.Run(cmd.Context(), usecase.ProposeAssertionParams{
				Claim:             args[0],
				HashClaim:         hashClaim,
				Currency:          currency,
				Bond:              bond,
				Liveness:          window,
				CallbackRecipient: callbackRecipient,
				EscalationManager: escalationManager,
			})
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewProposeJSON(result), func() error {
				return render.NewAccountRenderer(cmd.OutOrStdout(), app.Config.Network).RenderPropose(result)
			})
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "", "Bond token (contract id or symbol)")
	cmd.Flags().StringVar(&bond, "bond", "", "Bond amount in token units, e.g. 100.5")
	cmd.Flags().StringVar(&liveness, "liveness", presets[0], fmt.Sprintf("Liveness window (%s)", strings.Join(presets, ", ")))
	cmd.Flags().BoolVar(&hashClaim, "hash-claim", false, "Store the Keccak-256 of the claim")
	cmd.Flags().StringVar(&callbackRecipient, "callback", "", "Contract notified on resolution")
	cmd.Flags().StringVar(&escalationManager, "escalation-manager", "", "Escalation manager contract")
	_ = cmd.MarkFlagRequired("currency")
	_ = cmd.MarkFlagRequired("bond")

	return cmd
}

// parseLiveness accepts a preset label or any positive duration.
func parseLiveness(s string) (time.Duration, error) {
	if p, ok := lo.Find(domain.LivenessPresets, func(p domain.LivenessPreset) bool { return p.Label == s }); ok {
		return p.Duration, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid liveness %q: use a duration such as 2h", s)
	}
	return d, nil
}

// NewDisputeCmd creates the dispute command
func NewDisputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispute <assertion-id>",
		Short: "Dispute an active assertion, posting the same bond",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			id, err := parseID("assertion id", args[0])
			if err != nil {
				return err
			}

			result, err := app.DisputeAssertion.Run(cmd.Context(), id)
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewDisputeJSON(result), func() error {
				return render.NewAccountRenderer(cmd.OutOrStdout(), app.Config.Network).RenderDispute(result)
			})
		},
	}
}

// NewSettleCmd creates the settle command
func NewSettleCmd() *cobra.Command {
	var retry bool

	cmd := &cobra.Command{
		Use:   "settle <assertion-id>",
		Short: "Settle an expired or resolved assertion",
		Long: `Settle an assertion whose liveness window ended or whose DVM vote resolved.

Settlement pays out in a second step. If that payout callback failed, the
assertion stays pending and --retry submits the payout again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			id, err := parseID("assertion id", args[0])
			if err != nil {
				return err
			}

			var result *usecase.SettleResult
			if retry {
				result, err = app.RetrySettlement.Run(cmd.Context(), id)
			} else {
				result, err = app.SettleAssertion.Run(cmd.Context(), id)
			}
			if err != nil {
				return err
			}

			return emit(cmd, app, render.NewSettleJSON(result), func() error {
				return render.NewAccountRenderer(cmd.OutOrStdout(), app.Config.Network).RenderSettle(result)
			})
		},
	}

	cmd.Flags().BoolVar(&retry, "retry", false, "Retry a pending settlement payout")
	return cmd
}
