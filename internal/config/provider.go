package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultTimeout      = "5m"
	defaultFanOut       = 8
	defaultPollInterval = "15s"
	defaultIndexerRPS   = 10.0
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	dataDir := v.GetString("data_dir")
	if dataDir == "" {
		var err error
		dataDir, err = DefaultDataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
	}

	fileCfg, source, err := loadFileConfig(v.GetString("config"), dataDir)
	if err != nil {
		return nil, err
	}

	networkID := v.GetString("network")
	if networkID == "" && fileCfg != nil {
		networkID = fileCfg.Network
	}
	if networkID == "" {
		networkID = string(config.DefaultNetworkID)
	}

	network, err := ResolveNetwork(config.NetworkID(networkID), fileCfg)
	if err != nil {
		return nil, err
	}
	if rpcURL := v.GetString("rpc_url"); rpcURL != "" {
		network.RPCURL = rpcURL
	}
	if indexerURL := v.GetString("indexer_url"); indexerURL != "" {
		network.IndexerURL = indexerURL
	}

	cfg := &config.RuntimeConfig{
		DataDir:        dataDir,
		Network:        network,
		Account:        strings.TrimSpace(v.GetString("account")),
		SignerURL:      v.GetString("signer_url"),
		DryRun:         v.GetBool("dry_run"),
		StoreBackend:   strings.ToLower(v.GetString("store")),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		FanOut:         v.GetInt("fan_out"),
		PollInterval:   v.GetDuration("poll_interval"),
		IndexerRPS:     v.GetFloat64("indexer_rps"),
		ConfigSource:   source,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *config.RuntimeConfig) error {
	switch cfg.StoreBackend {
	case config.StoreJSON, config.StoreSQLite:
	default:
		return fmt.Errorf("invalid store backend %q: must be %q or %q", cfg.StoreBackend, config.StoreJSON, config.StoreSQLite)
	}
	if cfg.FanOut < 1 {
		return fmt.Errorf("fan_out must be at least 1, got %d", cfg.FanOut)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.IndexerRPS <= 0 {
		return fmt.Errorf("indexer_rps must be positive, got %v", cfg.IndexerRPS)
	}
	return nil
}

// DefaultDataDir returns ~/.nest
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".nest"), nil
}

// defaults apply below flags, NEST_* variables and config.local.json.
var defaults = map[string]any{
	"store":           config.StoreJSON,
	"timeout":         defaultTimeout,
	"fan_out":         defaultFanOut,
	"poll_interval":   defaultPollInterval,
	"indexer_rps":     defaultIndexerRPS,
	"debug":           false,
	"non_interactive": false,
}

// SetupViper layers .env, NEST_* variables, <dataDir>/config.local.json and
// the command's flags into one viper instance.
func SetupViper(dataDir string, cmd *cobra.Command) *viper.Viper {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("NEST")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", dataDir)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigFile(filepath.Join(dataDir, "config.local.json"))
	// a missing or unreadable local config leaves the defaults in place
	_ = v.ReadInConfig()

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(flagKey(f.Name), f); err != nil {
			panic(err)
		}
	})

	return v
}

// flagKey maps --signer-url to the signer_url config key.
func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
