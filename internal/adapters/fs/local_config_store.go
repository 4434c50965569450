package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/nest-oracle/nest-cli/internal/domain/config"
	"github.com/nest-oracle/nest-cli/internal/usecase"
)

// LocalConfigFileName is read by viper as well as by this store.
const LocalConfigFileName = "config.local.json"

// LocalConfigStoreAdapter keeps the user's defaults in <data dir>/config.local.json.
type LocalConfigStoreAdapter struct {
	path string
}

func NewLocalConfigStoreAdapter(cfg *config.RuntimeConfig) *LocalConfigStoreAdapter {
	return &LocalConfigStoreAdapter{path: filepath.Join(cfg.DataDir, LocalConfigFileName)}
}

func (s *LocalConfigStoreAdapter) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

// Load returns the defaults when the file has not been written yet.
func (s *LocalConfigStoreAdapter) Load(_ context.Context) (*config.LocalConfig, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, iofs.ErrNotExist) {
		return config.DefaultLocalConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	cfg := config.DefaultLocalConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s is not valid JSON: %w", s.path, err)
	}
	if cfg.Network == "" {
		cfg.Network = string(config.DefaultNetworkID)
	}
	return cfg, nil
}

func (s *LocalConfigStoreAdapter) Save(_ context.Context, cfg *config.LocalConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'), 0600)
}

func (s *LocalConfigStoreAdapter) GetPath() string {
	return s.path
}

var _ usecase.LocalConfigStore = (*LocalConfigStoreAdapter)(nil)
