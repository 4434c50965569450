package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
	"gopkg.in/yaml.v3"
)

// ConfigRenderer renders config-related output
type ConfigRenderer struct {
	out io.Writer
}

// NewConfigRenderer creates a new config renderer
func NewConfigRenderer(out io.Writer) *ConfigRenderer {
	return &ConfigRenderer{
		out: out,
	}
}

// getRelativePath returns the relative path from current directory
func getRelativePath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}

	relPath, err := filepath.Rel(cwd, path)
	if err != nil {
		return path
	}

	return relPath
}

// resolvedConfig is the YAML view of the effective configuration.
type resolvedConfig struct {
	Network      string            `yaml:"network"`
	RPCURL       string            `yaml:"rpc_url"`
	IndexerURL   string            `yaml:"indexer_url"`
	Contracts    config.Contracts  `yaml:"contracts"`
	Currencies   map[string]string `yaml:"currencies,omitempty"`
	Account      string            `yaml:"account,omitempty"`
	SignerURL    string            `yaml:"signer_url,omitempty"`
	Store        string            `yaml:"store"`
	DataDir      string            `yaml:"data_dir"`
	FanOut       int               `yaml:"fan_out"`
	PollInterval string            `yaml:"poll_interval"`
	Timeout      string            `yaml:"timeout"`
	ConfigFile   string            `yaml:"config_file,omitempty"`
}

func newResolvedConfig(rc *config.RuntimeConfig) resolvedConfig {
	out := resolvedConfig{
		Account:      rc.Account,
		SignerURL:    rc.SignerURL,
		Store:        rc.StoreBackend,
		DataDir:      rc.DataDir,
		FanOut:       rc.FanOut,
		PollInterval: rc.PollInterval.String(),
		Timeout:      rc.Timeout.String(),
		ConfigFile:   rc.ConfigSource,
	}
	if n := rc.Network; n != nil {
		out.Network = string(n.ID)
		out.RPCURL = n.RPCURL
		out.IndexerURL = n.IndexerURL
		out.Contracts = n.Contracts
		out.Currencies = make(map[string]string, len(n.Currencies))
		for id, c := range n.Currencies {
			out.Currencies[id] = fmt.Sprintf("%s (%d decimals)", c.Symbol, c.Decimals)
		}
	}
	return out
}

// RenderConfig renders the configuration display
func (r *ConfigRenderer) RenderConfig(result *usecase.ShowConfigResult) error {
	if !result.Exists {
		fmt.Fprintf(r.out, "No %s found, using defaults\n", getRelativePath(result.ConfigPath))
	} else {
		fmt.Fprintln(r.out, "📋 Current config:")
		for _, key := range config.ValidConfigKeys() {
			value := result.Config.Get(key)
			if value == "" {
				value = "(not set)"
			}
			fmt.Fprintf(r.out, "%-11s %s\n", string(key)+":", value)
		}
		fmt.Fprintf(r.out, "📁 config file: %s\n", getRelativePath(result.ConfigPath))
	}

	if result.Runtime == nil {
		return nil
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headerStyle.Sprint("Resolved:"))
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(newResolvedConfig(result.Runtime)); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// RenderSet renders the result of setting a configuration value
func (r *ConfigRenderer) RenderSet(result *usecase.SetConfigResult) error {
	fmt.Fprintf(r.out, "✅ Set %s to: %s\n", result.Key, result.Value)
	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}

// RenderRemove renders the result of removing a configuration value
func (r *ConfigRenderer) RenderRemove(result *usecase.RemoveConfigResult) error {
	switch result.Key {
	case config.ConfigKeyNetwork:
		fmt.Fprintf(r.out, "✅ Reset network to: %s\n", config.DefaultNetworkID)
	default:
		fmt.Fprintf(r.out, "✅ Removed %s from config\n", result.Key)
	}

	fmt.Fprintf(r.out, "📁 config saved to: %s\n", getRelativePath(result.ConfigPath))
	return nil
}
