package risk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 5.0, cfg.WarningDrawdownThreshold)
	assert.Equal(t, 10.0, cfg.MaxDrawdownThreshold)
	assert.Equal(t, 15.0, cfg.CriticalDrawdownThreshold)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"warning equals max", func(c *Config) { c.WarningDrawdownThreshold = 10 }, "warning_drawdown_threshold"},
		{"warning above max", func(c *Config) { c.WarningDrawdownThreshold = 12 }, "must be below max_drawdown_threshold"},
		{"max equals critical", func(c *Config) { c.MaxDrawdownThreshold = 15 }, "must be below critical_drawdown_threshold"},
		{"negative daily limit", func(c *Config) { c.DailyLossLimit = -1 }, "daily_loss_limit must not be negative"},
		{"negative warning", func(c *Config) { c.WarningDrawdownThreshold = -1 }, "warning_drawdown_threshold must not be negative"},
		{"negative recovery", func(c *Config) { c.RecoveryThreshold = -0.5 }, "recovery_threshold"},
		{"negative loss count", func(c *Config) { c.ConsecutiveLossLimit = -2 }, "consecutive_loss_limit"},
		{"factor above one", func(c *Config) { c.PositionSizeReductionFactor = 1.5 }, "position_size_reduction_factor"},
		{"critical above hundred", func(c *Config) { c.CriticalDrawdownThreshold = 120 }, "exceeds 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfiguration))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfigPatchApply(t *testing.T) {
	base := DefaultConfig()

	got := ConfigPatch{
		WarningDrawdownThreshold: Float(6),
		ConsecutiveLossLimit:     Int(5),
	}.Apply(base)

	assert.Equal(t, 6.0, got.WarningDrawdownThreshold)
	assert.Equal(t, 5, got.ConsecutiveLossLimit)
	assert.Equal(t, base.MaxDrawdownThreshold, got.MaxDrawdownThreshold)
	assert.Equal(t, base.DailyLossLimit, got.DailyLossLimit)
	assert.Equal(t, base.AlertCapacity, got.AlertCapacity)

	// The original is a value and must be untouched.
	assert.Equal(t, 5.0, base.WarningDrawdownThreshold)

	assert.Equal(t, base, ConfigPatch{}.Apply(base))
}
