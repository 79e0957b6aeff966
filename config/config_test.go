package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/capguard/risk"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "USD", cfg.Account.Currency)
	assert.Equal(t, 100000.0, cfg.Account.Balance)
	assert.Equal(t, risk.DefaultConfig(), cfg.Protection)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing account id",
			mutate:  func(c *Config) { c.Account.ID = "" },
			wantErr: true,
			errMsg:  "account.id is required",
		},
		{
			name:    "missing currency",
			mutate:  func(c *Config) { c.Account.Currency = "" },
			wantErr: true,
			errMsg:  "account.currency is required",
		},
		{
			name:    "negative balance",
			mutate:  func(c *Config) { c.Account.Balance = -1000 },
			wantErr: true,
			errMsg:  "account.balance must not be negative",
		},
		{
			name:    "warning above max",
			mutate:  func(c *Config) { c.Protection.WarningDrawdownThreshold = 12 },
			wantErr: true,
			errMsg:  "protection:",
		},
		{
			name:    "unknown journal type",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal.type must be 'csv' or 'sqlite'",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Journal.DBPath = "" },
			wantErr: true,
			errMsg:  "journal db_path required",
		},
		{
			name: "csv without files",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "csv", TicksFile: "ticks.csv"}
			},
			wantErr: true,
			errMsg:  "journal ticks_file and alerts_file required",
		},
		{
			name: "csv with files",
			mutate: func(c *Config) {
				c.Journal = JournalConfig{Type: "csv", TicksFile: "ticks.csv", AlertsFile: "alerts.csv"}
			},
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
			errMsg:  "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWrapsProtectionSentinel(t *testing.T) {
	cfg := Default()
	cfg.Protection.MaxDrawdownThreshold = 20
	assert.ErrorIs(t, cfg.Validate(), risk.ErrInvalidConfiguration)
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
		{"yml format", ".yml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Account.ID = "ACCT-42"
			cfg.Protection.DailyLossLimit = 3
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Account, loaded.Account)
			assert.Equal(t, cfg.Protection, loaded.Protection)
			assert.Equal(t, cfg.Journal, loaded.Journal)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("account:\n  id: ACCT-9\n  currency: EUR\nprotection:\n  daily_loss_limit: 1.5\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ACCT-9", cfg.Account.ID)
	assert.Equal(t, "EUR", cfg.Account.Currency)
	assert.Equal(t, 1.5, cfg.Protection.DailyLossLimit)
	assert.Equal(t, 15.0, cfg.Protection.CriticalDrawdownThreshold)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
}

func TestLoadRejectsInvalidThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := []byte("protection:\n  warning_drawdown_threshold: 11\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, risk.ErrInvalidConfiguration)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not: [valid"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}
