package cli

import (
	"github.com/nest-oracle/nest-cli/internal/cli/render"
	"github.com/spf13/cobra"
)

// NewAccountCmd creates the account command
func NewAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show voting power and bond token balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.AccountOverview.Run(cmd.Context())
			if err != nil {
				return err
			}

			return emit(cmd, app, result, func() error {
				return render.NewAccountRenderer(cmd.OutOrStdout(), app.Config.Network).RenderOverview(result)
			})
		},
	}
}

// NewRegisterStorageCmd creates the register-storage command
func NewRegisterStorageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register-storage <token>",
		Short: "Register the account on a token contract so it can receive payouts",
		Long: `Register the connected account for storage on a token contract. Tokens
cannot be transferred to an unregistered account, so bond payouts need it.

<token> is a contract id or a configured symbol such as USDC.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.RegisterStorage.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return emit(cmd, app, result, func() error {
				return render.NewAccountRenderer(cmd.OutOrStdout(), app.Config.Network).RenderRegisterStorage(result)
			})
		},
	}
}

// NewHealthCmd creates the health command
func NewHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the indexer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			status, err := app.IndexerHealth.Run(cmd.Context())
			if err != nil {
				return err
			}

			return emit(cmd, app, status, func() error {
				return render.NewAccountRenderer(cmd.OutOrStdout(), app.Config.Network).RenderHealth(status)
			})
		},
	}
}
