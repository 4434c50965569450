package cli

import (
	"strings"

	"github.com/nest-oracle/nest-cli/internal/cli/render"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// configKeyList renders the settable keys for help text.
func configKeyList() string {
	return strings.Join(lo.Map(config.ValidConfigKeys(), func(k config.ConfigKey, _ int) string {
		return string(k)
	}), ", ")
}

// NewConfigCmd creates the config command; without a subcommand it shows the config
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the defaults in config.local.json",
		Long: `Show or change the defaults stored in <data-dir>/config.local.json.

Stored values apply whenever the matching flag and NEST_* variable are unset.
Settable keys: ` + configKeyList() + `

The resolved view also shows the contracts and endpoints of the active
network, including overrides from nest.toml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowConfig.Run(cmd.Context())
			if err != nil {
				return err
			}
			return emit(cmd, app, result.Config, func() error {
				return render.NewConfigRenderer(cmd.OutOrStdout()).RenderConfig(result)
			})
		},
	}

	cmd.AddCommand(newConfigSetCmd(), newConfigRemoveCmd())
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a default value",
		Example: `  nest config set network mainnet
  nest config set account alice.near
  nest config set signer http://127.0.0.1:7700
  nest config set store sqlite`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.SetConfig.Run(cmd.Context(), usecase.SetConfigParams{Key: args[0], Value: args[1]})
			if err != nil {
				return err
			}
			return emit(cmd, app, result.UpdatedConfig, func() error {
				return render.NewConfigRenderer(cmd.OutOrStdout()).RenderSet(result)
			})
		},
	}
}

func newConfigRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"rm", "unset"},
		Short:   "Drop a stored default; network falls back to " + string(config.DefaultNetworkID),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.RemoveConfig.Run(cmd.Context(), usecase.RemoveConfigParams{Key: args[0]})
			if err != nil {
				return err
			}
			return emit(cmd, app, result.UpdatedConfig, func() error {
				return render.NewConfigRenderer(cmd.OutOrStdout()).RenderRemove(result)
			})
		},
	}
}
