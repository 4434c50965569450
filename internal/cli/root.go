package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/nest-oracle/nest-cli/internal/app"
	"github.com/nest-oracle/nest-cli/internal/config"
	"github.com/spf13/cobra"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// noTimeoutAnnotation marks commands that run until interrupted.
const noTimeoutAnnotation = "nest/no-timeout"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nest",
		Short: "Optimistic oracle client for NEAR",
		Long: `nest asserts, disputes and settles claims on the optimistic oracle and
takes part in DVM votes on disputed assertions.

Votes use commit-reveal: the salt needed to reveal is kept only in the local
data directory, so a vote must be revealed from the machine it was committed on.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if skipsApp(cmd) {
				return nil
			}

			dataDir, err := resolveDataDir(cmd)
			if err != nil {
				return err
			}

			// Set up viper with all flags visible to this command
			v := config.SetupViper(dataDir, cmd)

			// Initialize app with DI
			appInstance, err := app.InitApp(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			// Store app in context
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			// Add timeout if configured
			if appInstance.Config.Timeout > 0 && cmd.Annotations[noTimeoutAnnotation] == "" {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				cmd.PostRun = func(cmd *cobra.Command, args []string) {
					cancel()
				}
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("network", "n", "", "Network to use (mainnet, testnet)")
	flags.String("account", "", "NEAR account used to sign transactions")
	flags.String("signer-url", "", "Remote signer endpoint")
	flags.String("rpc-url", "", "Override the network's RPC endpoint")
	flags.String("indexer-url", "", "Override the network's indexer endpoint")
	flags.String("data-dir", "", "Directory for config and vote commitments (default ~/.nest)")
	flags.String("config", "", "Network overrides file (default ./nest.toml, then <data-dir>/nest.toml)")
	flags.String("store", "", "Commitment store backend (json, sqlite)")
	flags.Bool("dry-run", false, "Print transactions instead of submitting them")
	flags.Bool("json", false, "Output in JSON format")
	flags.Bool("debug", false, "Enable debug output")
	flags.Bool("non-interactive", false, "Disable interactive prompts")
	flags.Duration("timeout", 0, "Overall command timeout (default 5m)")

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "assertions",
		Title: "Assertion Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "voting",
		Title: "Voting Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	for _, cmd := range []*cobra.Command{
		NewAssertionsCmd(),
		NewProposeCmd(),
		NewDisputeCmd(),
		NewSettleCmd(),
	} {
		cmd.GroupID = "assertions"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewVoteCmd(),
		NewCommitmentsCmd(),
	} {
		cmd.GroupID = "voting"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewAccountCmd(),
		NewRegisterStorageCmd(),
		NewHealthCmd(),
		NewConfigCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	// Version command
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// skipsApp reports whether cmd runs without the application container.
func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	return !cmd.Runnable()
}

// resolveDataDir picks --data-dir, then NEST_DATA_DIR, then ~/.nest.
func resolveDataDir(cmd *cobra.Command) (string, error) {
	if f := cmd.Flag("data-dir"); f != nil && f.Changed {
		return f.Value.String(), nil
	}
	if dir := os.Getenv("NEST_DATA_DIR"); dir != "" {
		return dir, nil
	}
	dir, err := config.DefaultDataDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return dir, nil
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
