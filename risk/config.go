package risk

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is wrapped by every configuration validation error.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Config holds the protection thresholds. Drawdown thresholds and loss
// limits are percentages (5 means 5%).
type Config struct {
	// Drawdown escalation, warning < max < critical
	WarningDrawdownThreshold  float64 `json:"warning_drawdown_threshold" yaml:"warning_drawdown_threshold"`
	MaxDrawdownThreshold      float64 `json:"max_drawdown_threshold" yaml:"max_drawdown_threshold"`
	CriticalDrawdownThreshold float64 `json:"critical_drawdown_threshold" yaml:"critical_drawdown_threshold"`

	// Stored and persisted; no rule consumes them yet.
	ConsecutiveLossLimit        int     `json:"consecutive_loss_limit" yaml:"consecutive_loss_limit"`
	PositionSizeReductionFactor float64 `json:"position_size_reduction_factor" yaml:"position_size_reduction_factor"`

	// Drawdown below which an emergency may be considered recovered.
	RecoveryThreshold float64 `json:"recovery_threshold" yaml:"recovery_threshold"`

	// Circuit breakers, percent of current balance. 0 disables a window.
	DailyLossLimit   float64 `json:"daily_loss_limit" yaml:"daily_loss_limit"`
	WeeklyLossLimit  float64 `json:"weekly_loss_limit" yaml:"weekly_loss_limit"`
	MonthlyLossLimit float64 `json:"monthly_loss_limit" yaml:"monthly_loss_limit"`

	// Percent of balance a single symbol may carry. 0 disables.
	ConcentrationThreshold float64 `json:"concentration_threshold" yaml:"concentration_threshold"`

	// Number of alerts kept in memory.
	AlertCapacity int `json:"alert_capacity" yaml:"alert_capacity"`
}

// DefaultConfig returns the stock protection thresholds.
func DefaultConfig() Config {
	return Config{
		WarningDrawdownThreshold:    5,
		MaxDrawdownThreshold:        10,
		CriticalDrawdownThreshold:   15,
		ConsecutiveLossLimit:        3,
		PositionSizeReductionFactor: 0.5,
		RecoveryThreshold:           3,
		DailyLossLimit:              2,
		WeeklyLossLimit:             5,
		MonthlyLossLimit:            10,
		ConcentrationThreshold:      50,
		AlertCapacity:               1000,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Validate checks threshold ordering and signs.
func (c Config) Validate() error {
	nonNegative := []struct {
		name string
		v    float64
	}{
		{"warning_drawdown_threshold", c.WarningDrawdownThreshold},
		{"max_drawdown_threshold", c.MaxDrawdownThreshold},
		{"critical_drawdown_threshold", c.CriticalDrawdownThreshold},
		{"position_size_reduction_factor", c.PositionSizeReductionFactor},
		{"recovery_threshold", c.RecoveryThreshold},
		{"daily_loss_limit", c.DailyLossLimit},
		{"weekly_loss_limit", c.WeeklyLossLimit},
		{"monthly_loss_limit", c.MonthlyLossLimit},
		{"concentration_threshold", c.ConcentrationThreshold},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return invalid("%s must not be negative (got %.2f)", f.name, f.v)
		}
	}
	if c.ConsecutiveLossLimit < 0 {
		return invalid("consecutive_loss_limit must not be negative (got %d)", c.ConsecutiveLossLimit)
	}
	if c.WarningDrawdownThreshold >= c.MaxDrawdownThreshold {
		return invalid("warning_drawdown_threshold %.2f must be below max_drawdown_threshold %.2f",
			c.WarningDrawdownThreshold, c.MaxDrawdownThreshold)
	}
	if c.MaxDrawdownThreshold >= c.CriticalDrawdownThreshold {
		return invalid("max_drawdown_threshold %.2f must be below critical_drawdown_threshold %.2f",
			c.MaxDrawdownThreshold, c.CriticalDrawdownThreshold)
	}
	if c.CriticalDrawdownThreshold > 100 {
		return invalid("critical_drawdown_threshold %.2f exceeds 100", c.CriticalDrawdownThreshold)
	}
	if c.PositionSizeReductionFactor > 1 {
		return invalid("position_size_reduction_factor %.2f must be between 0 and 1", c.PositionSizeReductionFactor)
	}
	if c.AlertCapacity < 0 {
		return invalid("alert_capacity must not be negative (got %d)", c.AlertCapacity)
	}
	return nil
}

// ConfigPatch lists the overridable fields. Nil fields are left untouched.
type ConfigPatch struct {
	WarningDrawdownThreshold    *float64
	MaxDrawdownThreshold        *float64
	CriticalDrawdownThreshold   *float64
	ConsecutiveLossLimit        *int
	PositionSizeReductionFactor *float64
	RecoveryThreshold           *float64
	DailyLossLimit              *float64
	WeeklyLossLimit             *float64
	MonthlyLossLimit            *float64
	ConcentrationThreshold      *float64
}

// Apply returns c with the non-nil fields of p merged in.
func (p ConfigPatch) Apply(c Config) Config {
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setF(&c.WarningDrawdownThreshold, p.WarningDrawdownThreshold)
	setF(&c.MaxDrawdownThreshold, p.MaxDrawdownThreshold)
	setF(&c.CriticalDrawdownThreshold, p.CriticalDrawdownThreshold)
	setF(&c.PositionSizeReductionFactor, p.PositionSizeReductionFactor)
	setF(&c.RecoveryThreshold, p.RecoveryThreshold)
	setF(&c.DailyLossLimit, p.DailyLossLimit)
	setF(&c.WeeklyLossLimit, p.WeeklyLossLimit)
	setF(&c.MonthlyLossLimit, p.MonthlyLossLimit)
	setF(&c.ConcentrationThreshold, p.ConcentrationThreshold)
	if p.ConsecutiveLossLimit != nil {
		c.ConsecutiveLossLimit = *p.ConsecutiveLossLimit
	}
	return c
}

// Float is a helper for building patches.
func Float(v float64) *float64 { return &v }

// Int is a helper for building patches.
func Int(v int) *int { return &v }
