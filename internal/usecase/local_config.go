package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/samber/lo"
)

// ShowConfigResult pairs the stored defaults with the configuration in effect.
type ShowConfigResult struct {
	Config     *config.LocalConfig
	ConfigPath string
	Exists     bool
	Runtime    *config.RuntimeConfig
}

// ShowConfig reports config.local.json alongside the resolved runtime config.
type ShowConfig struct {
	store LocalConfigStore
	cfg   *config.RuntimeConfig
}

func NewShowConfig(store LocalConfigStore, cfg *config.RuntimeConfig) *ShowConfig {
	return &ShowConfig{store: store, cfg: cfg}
}

func (uc *ShowConfig) Run(ctx context.Context) (*ShowConfigResult, error) {
	stored, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &ShowConfigResult{
		Config:     stored,
		ConfigPath: uc.store.GetPath(),
		Exists:     uc.store.Exists(),
		Runtime:    uc.cfg,
	}, nil
}

type SetConfigParams struct {
	Key   string
	Value string
}

type SetConfigResult struct {
	UpdatedConfig *config.LocalConfig
	ConfigPath    string
	Key           config.ConfigKey
	Value         string
}

// SetConfig validates and stores a single default.
type SetConfig struct {
	store LocalConfigStore
}

func NewSetConfig(store LocalConfigStore) *SetConfig {
	return &SetConfig{store: store}
}

func (uc *SetConfig) Run(ctx context.Context, params SetConfigParams) (*SetConfigResult, error) {
	key, err := lookupConfigKey(params.Key)
	if err != nil {
		return nil, err
	}
	value := strings.TrimSpace(params.Value)
	if err := checkConfigValue(key, value); err != nil {
		return nil, err
	}

	updated, err := editLocalConfig(ctx, uc.store, func(c *config.LocalConfig) {
		c.Set(key, value)
	})
	if err != nil {
		return nil, err
	}
	return &SetConfigResult{
		UpdatedConfig: updated,
		ConfigPath:    uc.store.GetPath(),
		Key:           key,
		Value:         value,
	}, nil
}

type RemoveConfigParams struct {
	Key string
}

type RemoveConfigResult struct {
	UpdatedConfig *config.LocalConfig
	ConfigPath    string
	Key           config.ConfigKey
	RemovedValue  string
}

// RemoveConfig clears a stored default. The network falls back to the
// default network rather than becoming empty.
type RemoveConfig struct {
	store LocalConfigStore
}

func NewRemoveConfig(store LocalConfigStore) *RemoveConfig {
	return &RemoveConfig{store: store}
}

func (uc *RemoveConfig) Run(ctx context.Context, params RemoveConfigParams) (*RemoveConfigResult, error) {
	if !uc.store.Exists() {
		return nil, fmt.Errorf("no config file found at %s", uc.store.GetPath())
	}
	key, err := lookupConfigKey(params.Key)
	if err != nil {
		return nil, err
	}

	var removed string
	updated, err := editLocalConfig(ctx, uc.store, func(c *config.LocalConfig) {
		removed = c.Get(key)
		if key == config.ConfigKeyNetwork {
			c.Set(key, string(config.DefaultNetworkID))
		} else {
			c.Set(key, "")
		}
	})
	if err != nil {
		return nil, err
	}
	return &RemoveConfigResult{
		UpdatedConfig: updated,
		ConfigPath:    uc.store.GetPath(),
		Key:           key,
		RemovedValue:  removed,
	}, nil
}

// editLocalConfig loads the stored config, applies mutate and writes it back.
// Nothing is written when mutate leaves the value unchanged.
func editLocalConfig(ctx context.Context, store LocalConfigStore, mutate func(*config.LocalConfig)) (*config.LocalConfig, error) {
	cfg, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	before := *cfg
	mutate(cfg)
	if before == *cfg && store.Exists() {
		return cfg, nil
	}
	if err := store.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config: %w", err)
	}
	return cfg, nil
}

func lookupConfigKey(raw string) (config.ConfigKey, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if config.IsValidConfigKey(key) {
		return config.NormalizeConfigKey(key), nil
	}
	names := lo.Map(config.ValidConfigKeys(), func(k config.ConfigKey, _ int) string { return string(k) })
	return "", fmt.Errorf("unknown config key: %s\nAvailable keys: %s", raw, strings.Join(names, ", "))
}

func checkConfigValue(key config.ConfigKey, value string) error {
	switch key {
	case config.ConfigKeyNetwork:
		if value == "" {
			return fmt.Errorf("network must not be empty")
		}
	case config.ConfigKeyAccount:
		return config.ValidateAccountID(value)
	case config.ConfigKeyStore:
		if value != config.StoreJSON && value != config.StoreSQLite {
			return fmt.Errorf("invalid store %q: must be %q or %q", value, config.StoreJSON, config.StoreSQLite)
		}
	case config.ConfigKeySignerURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid signer url %q: must be an http:// or https:// url", value)
		}
	}
	return nil
}
