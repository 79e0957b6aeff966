package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		pct       float64
		balance   float64
		pnl       float64
		limit     float64
		current   float64
		remaining float64
	}{
		{"profit", 2, 10000, 150, 200, 0, 200},
		{"partial loss", 2, 10000, -50, 200, 50, 150},
		{"exact loss", 2, 10000, -200, 200, 200, 0},
		{"over limit", 2, 9700, -300, 194, 300, 0},
		{"zero balance", 2, 0, -10, 0, 10, 0},
		{"negative balance", 2, -100, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Budget(Daily, tt.pct, tt.balance, tt.pnl)
			assert.InDelta(t, tt.limit, got.Limit, 1e-9)
			assert.InDelta(t, tt.current, got.Current, 1e-9)
			assert.InDelta(t, tt.remaining, got.Remaining, 1e-9)
			assert.GreaterOrEqual(t, got.Remaining, 0.0)
		})
	}
}

func TestLossWindowsDailyExhaustedHalts(t *testing.T) {
	t.Parallel()

	tr := newLossWindowTracker(DefaultConfig())
	v := tr.evaluate(9700, -300, -300, -300, t0)

	assert.True(t, v.halt)
	assert.Len(t, alertsOf(v.alerts, AlertEmergencyStop), 1)
	assert.Equal(t, SeverityCritical, alertsOf(v.alerts, AlertEmergencyStop)[0].Severity)
	assert.Contains(t, v.actions, ActionHaltForDay)
}

func TestLossWindowsApproaching(t *testing.T) {
	t.Parallel()

	tr := newLossWindowTracker(DefaultConfig())
	// weekly limit 500, 420 lost leaves 80 < 100
	v := tr.evaluate(10000, 0, -420, -420, t0)

	assert.False(t, v.halt)
	warnings := alertsOf(v.alerts, AlertLimitWarning)
	if assert.Len(t, warnings, 1) {
		assert.Equal(t, SeverityMedium, warnings[0].Severity)
		assert.Contains(t, warnings[0].Message, "Weekly loss limit approaching")
	}
}

func TestLossWindowsWeeklyReachedDoesNotHalt(t *testing.T) {
	t.Parallel()

	tr := newLossWindowTracker(DefaultConfig())
	v := tr.evaluate(10000, 0, -600, -600, t0)

	assert.False(t, v.halt)
	reached := alertsOf(v.alerts, AlertLimitWarning)
	if assert.Len(t, reached, 1) {
		assert.Equal(t, SeverityHigh, reached[0].Severity)
		assert.Contains(t, reached[0].Message, "Weekly loss limit reached")
	}
	assert.Contains(t, v.actions, ActionReduceExpo)
}

func TestLossWindowsDisabledWindow(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DailyLossLimit = 0
	v := newLossWindowTracker(cfg).evaluate(10000, -5000, 0, 0, t0)

	assert.False(t, v.halt)
	assert.Empty(t, alertsOf(v.alerts, AlertEmergencyStop))
	assert.Equal(t, 5000.0, v.limits.Daily.Current)
}

func TestLossWindowsNonPositiveBalanceHalts(t *testing.T) {
	t.Parallel()

	lw := LossWindowTracker{DailyPct: 2, WeeklyPct: 5, MonthlyPct: 10}
	for _, bal := range []float64{0, -250} {
		v := lw.evaluate(bal, 0, 0, 0, t0)
		assert.True(t, v.halt)
		assert.Contains(t, v.actions, ActionHaltForDay)
		assert.Len(t, alertsOf(v.alerts, AlertEmergencyStop), 1)
		assert.Len(t, alertsOf(v.alerts, AlertLimitWarning), 2)
		for _, a := range v.alerts {
			assert.Contains(t, a.Message, "is not positive")
			assert.NotContains(t, a.Message, "exhausted")
			assert.NotContains(t, a.Message, "reached")
		}
	}
}

func alertsOf(alerts []Alert, typ AlertType) []Alert {
	var out []Alert
	for _, a := range alerts {
		if a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}
