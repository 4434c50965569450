package config

import (
	"time"
)

// Commitment store backends
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	DataDir string
	Network *Network

	// Wallet settings; an empty Account means no wallet is connected
	Account   string
	SignerURL string
	DryRun    bool

	// Local state
	StoreBackend string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// Read path tuning
	FanOut       int
	PollInterval time.Duration
	IndexerRPS   float64

	// ConfigSource names the file that provided network overrides, if any
	ConfigSource string
}
