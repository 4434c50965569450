package config

import "fmt"

// LocalConfig is the per-user config persisted in <data dir>/config.local.json
type LocalConfig struct {
	Network   string `json:"network,omitempty"`
	Account   string `json:"account,omitempty"`
	SignerURL string `json:"signer_url,omitempty"`
	Store     string `json:"store,omitempty"`
}

// ConfigKey represents a configuration key
type ConfigKey string

const (
	ConfigKeyNetwork   ConfigKey = "network"
	ConfigKeyAccount   ConfigKey = "account"
	ConfigKeySignerURL ConfigKey = "signer_url"
	ConfigKeyStore     ConfigKey = "store"
)

// DefaultLocalConfig returns the default local configuration
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Network: string(DefaultNetworkID),
	}
}

// ValidConfigKeys returns all valid configuration keys
func ValidConfigKeys() []ConfigKey {
	return []ConfigKey{
		ConfigKeyNetwork,
		ConfigKeyAccount,
		ConfigKeySignerURL,
		ConfigKeyStore,
	}
}

// IsValidConfigKey checks if a key is valid
func IsValidConfigKey(key string) bool {
	normalized := NormalizeConfigKey(key)
	for _, validKey := range ValidConfigKeys() {
		if validKey == normalized {
			return true
		}
	}
	return false
}

// NormalizeConfigKey normalizes aliases (e.g. "signer" -> "signer_url")
func NormalizeConfigKey(key string) ConfigKey {
	switch key {
	case "signer", "signer-url":
		return ConfigKeySignerURL
	case "net":
		return ConfigKeyNetwork
	}
	return ConfigKey(key)
}

// Get returns the value stored for key.
func (c *LocalConfig) Get(key ConfigKey) string {
	switch key {
	case ConfigKeyNetwork:
		return c.Network
	case ConfigKeyAccount:
		return c.Account
	case ConfigKeySignerURL:
		return c.SignerURL
	case ConfigKeyStore:
		return c.Store
	}
	return ""
}

// Set stores value under key.
func (c *LocalConfig) Set(key ConfigKey, value string) {
	switch key {
	case ConfigKeyNetwork:
		c.Network = value
	case ConfigKeyAccount:
		c.Account = value
	case ConfigKeySignerURL:
		c.SignerURL = value
	case ConfigKeyStore:
		c.Store = value
	}
}

// ValidateAccountID checks the NEAR account id rules: 2 to 64 characters of
// lowercase alphanumerics, with single '-', '_' or '.' separators between them.
func ValidateAccountID(id string) error {
	if len(id) < 2 || len(id) > 64 {
		return fmt.Errorf("invalid account id %q: must be 2 to 64 characters", id)
	}
	prevSep := true
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			prevSep = false
		case c == '-' || c == '_' || c == '.':
			if prevSep {
				return fmt.Errorf("invalid account id %q: separator at position %d", id, i)
			}
			prevSep = true
		default:
			return fmt.Errorf("invalid account id %q: unexpected character %q", id, c)
		}
	}
	if prevSep {
		return fmt.Errorf("invalid account id %q: must not end with a separator", id)
	}
	return nil
}
