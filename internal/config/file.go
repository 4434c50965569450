package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/nest-oracle/nest-cli/internal/domain/config"
)

// FileConfigName is the optional network override file.
const FileConfigName = "nest.toml"

// loadDotEnv loads .env files from the working directory so their values are
// visible to viper and to ${VAR} references in nest.toml.
func loadDotEnv() {
	for _, envFile := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// loadFileConfig reads nest.toml from an explicit path, the working
// directory, or the data directory, in that order. A missing file is not an
// error unless the path was given explicitly.
func loadFileConfig(explicit, dataDir string) (*config.FileConfig, string, error) {
	candidates := []string{FileConfigName, filepath.Join(dataDir, FileConfigName)}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, "", fmt.Errorf("failed to read config file: %w", err)
		}
		candidates = []string{explicit}
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var cfg config.FileConfig
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return &cfg, path, nil
	}
	return nil, "", nil
}

// ResolveNetwork starts from the built-in network (if any) and applies the
// overrides from fileCfg. Unknown ids must be fully defined in the file.
func ResolveNetwork(id config.NetworkID, fileCfg *config.FileConfig) (*config.Network, error) {
	network, builtinErr := config.BuiltinNetwork(id)

	var override *config.NetworkOverride
	if fileCfg != nil {
		if o, ok := fileCfg.Networks[string(id)]; ok {
			override = &o
		}
	}

	if builtinErr != nil {
		if override == nil {
			return nil, builtinErr
		}
		network = &config.Network{ID: id, VotingTokenSymbol: "NEST", VotingTokenDecimals: 24}
	}

	if override != nil {
		override.Apply(network)
	}

	network.RPCURL = os.ExpandEnv(network.RPCURL)
	network.IndexerURL = os.ExpandEnv(network.IndexerURL)

	if network.RPCURL == "" {
		return nil, fmt.Errorf("network %s has no rpc_url", id)
	}
	if network.Contracts.Oracle == "" || network.Contracts.Voting == "" || network.Contracts.VotingToken == "" {
		return nil, fmt.Errorf("network %s must define oracle, voting and voting_token contracts", id)
	}
	return network, nil
}
