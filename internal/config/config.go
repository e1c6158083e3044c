// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/0ji3/a2a-supply-chain-project/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Client contains payment client configuration
	Client ClientConfig `json:"client"`

	// Settlement contains settlement adapter configuration
	Settlement SettlementConfig `json:"settlement"`

	// Server contains API server configuration
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// ClientConfig contains payment client settings
type ClientConfig struct {
	// RequesterID is the on-registry identity of the requesting agent
	RequesterID int64 `json:"requester_id"`

	// StrictExact fails EXACT-scheme settlement on amount mismatch
	// instead of warning
	StrictExact bool `json:"strict_exact"`

	// ConfirmTimeoutSeconds waits this long for on-chain confirmation
	// after a transfer; 0 skips the wait
	ConfirmTimeoutSeconds int `json:"confirm_timeout_seconds"`
}

// SettlementConfig contains settlement adapter settings
type SettlementConfig struct {
	// Mode selects the adapter: "simulated" or "live"
	Mode string `json:"mode"`

	// GatewayURL is the settlement gateway endpoint (live mode)
	GatewayURL string `json:"gateway_url,omitempty"`

	// TokenAddress is the payment token contract address (live mode)
	TokenAddress string `json:"token_address,omitempty"`

	// ConfirmDelayMs is how long the simulated adapter takes to
	// confirm a transfer (simulated mode)
	ConfirmDelayMs int `json:"confirm_delay_ms,omitempty"`
}

// ServerConfig contains API server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// AllowOrigin is the CORS origin allowed for the dashboard
	AllowOrigin string `json:"allow_origin"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Client: ClientConfig{
			RequesterID:           0,
			StrictExact:           false,
			ConfirmTimeoutSeconds: 0,
		},
		Settlement: SettlementConfig{
			Mode:           "simulated",
			ConfirmDelayMs: 50,
		},
		Server: ServerConfig{
			Addr:        ":8080",
			AllowOrigin: "http://localhost:3000",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
