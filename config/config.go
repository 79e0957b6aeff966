package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/capguard/risk"
)

// Config is the file configuration for the capguard CLI.
type Config struct {
	Account    AccountConfig `json:"account" yaml:"account"`
	Protection risk.Config   `json:"protection" yaml:"protection"`
	Journal    JournalConfig `json:"journal" yaml:"journal"`
	Metrics    MetricsConfig `json:"metrics" yaml:"metrics"`
	Log        LogConfig     `json:"log" yaml:"log"`
}

// AccountConfig identifies the protected account. Balance is the reference
// balance used by commands that need one before any tick has been seen.
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TicksFile  string `json:"ticks_file,omitempty" yaml:"ticks_file,omitempty"`
	AlertsFile string `json:"alerts_file,omitempty" yaml:"alerts_file,omitempty"`
}

// MetricsConfig names the Prometheus textfile written after a replay.
// Empty disables it.
type MetricsConfig struct {
	TextFile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// LoadFromFile loads configuration from a file (JSON or YAML). Fields absent
// from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file, YAML for .yaml/.yml and JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.ID == "" {
		return fmt.Errorf("account.id is required")
	}
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance < 0 {
		return fmt.Errorf("account.balance must not be negative")
	}
	if err := c.Protection.Validate(); err != nil {
		return fmt.Errorf("protection: %w", err)
	}
	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "csv":
		if c.Journal.TicksFile == "" || c.Journal.AlertsFile == "" {
			return fmt.Errorf("journal ticks_file and alerts_file required for CSV type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "ACCT-001",
			Currency: "USD",
			Balance:  100000,
		},
		Protection: risk.DefaultConfig(),
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./capguard.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
