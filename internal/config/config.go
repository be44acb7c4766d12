// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"vanquote/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Backend contains backend endpoint configuration
	Backend BackendConfig `json:"backend"`

	// Workflow contains workflow pacing configuration
	Workflow WorkflowConfig `json:"workflow"`

	// Currency contains currency display configuration
	Currency CurrencyConfig `json:"currency"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// BackendConfig contains settings for the marketplace backend
type BackendConfig struct {
	// BaseURL is the backend base URL
	BaseURL string `json:"base_url"`

	// SubmitTimeoutSeconds bounds the quote submission call
	SubmitTimeoutSeconds int `json:"submit_timeout_seconds"`

	// TelemetryTimeoutSeconds bounds the selection telemetry call
	TelemetryTimeoutSeconds int `json:"telemetry_timeout_seconds"`
}

// WorkflowConfig contains pacing settings for the quote workflow
type WorkflowConfig struct {
	// MinDisplayDelayMS is how long the detail presenter stays
	// non-interactive after opening, even when data is ready
	MinDisplayDelayMS int `json:"min_display_delay_ms"`

	// GateStepIntervalMS is the interval between preparation gate steps
	GateStepIntervalMS int `json:"gate_step_interval_ms"`
}

// CurrencyConfig contains currency display settings
type CurrencyConfig struct {
	// Symbol is the currency symbol prefixed to formatted amounts
	Symbol string `json:"symbol"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Backend: BackendConfig{
			BaseURL:                 "http://localhost:8000",
			SubmitTimeoutSeconds:    15,
			TelemetryTimeoutSeconds: 15,
		},
		Workflow: WorkflowConfig{
			MinDisplayDelayMS:  2000,
			GateStepIntervalMS: 800,
		},
		Currency: CurrencyConfig{
			Symbol: "£",
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
