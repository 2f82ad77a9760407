package config

import (
	"encoding/json"
	"os"
)

// Page identifies the active view.
type Page int

const (
	PageHome Page = iota
	PageWallet
	PageOrdinals
	PageDetails
	PageCreate
	PageSettings
)

// Config represents the application configuration
type Config struct {
	Network        string `json:"network"`
	BackendURL     string `json:"backend_url"`
	BridgeURL      string `json:"bridge_url,omitempty"`
	EsploraMainnet string `json:"esplora_mainnet,omitempty"`
	EsploraTestnet string `json:"esplora_testnet,omitempty"`
	ContentMainnet string `json:"content_mainnet,omitempty"`
	ContentTestnet string `json:"content_testnet,omitempty"`
	Logger         bool   `json:"logger"`
}

// Load reads the config from the specified path
func Load(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}

	return cfg
}

// Save writes the config to the specified path
func Save(path string, cfg Config) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0644)
}

// DefaultConfig returns a new configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Network:    "testnet",
		BackendURL: "http://localhost:3002/api",
		Logger:     false,
	}
}

// LoadOrCreate loads config from path, or creates a default one if not found
func LoadOrCreate(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		cfg := DefaultConfig()
		Save(path, cfg)
		return cfg
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}

	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultConfig().BackendURL
	}
	return cfg
}
