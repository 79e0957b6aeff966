package risk

import (
	"fmt"
	"strings"
	"time"
)

// approachingFraction is the share of a limit below which the remaining
// budget is reported as approaching.
const approachingFraction = 0.20

// LossWindowTracker turns realized window P/L into loss budgets.
type LossWindowTracker struct {
	DailyPct   float64
	WeeklyPct  float64
	MonthlyPct float64
}

func newLossWindowTracker(c Config) LossWindowTracker {
	return LossWindowTracker{
		DailyPct:   c.DailyLossLimit,
		WeeklyPct:  c.WeeklyLossLimit,
		MonthlyPct: c.MonthlyLossLimit,
	}
}

// Budget computes one window's status. pnl is the realized P/L for the
// window, negative for a loss.
func Budget(w Window, pct, balance, pnl float64) LossLimitStatus {
	limit := pct / 100 * balance
	if limit < 0 {
		limit = 0
	}
	current := 0.0
	if pnl < 0 {
		current = -pnl
	}
	remaining := limit - current
	if remaining < 0 {
		remaining = 0
	}
	return LossLimitStatus{
		Window:    w,
		Limit:     limit,
		Current:   current,
		Remaining: remaining,
	}
}

// windowVerdict is what the windows contribute to a tick.
type windowVerdict struct {
	limits  LossLimits
	alerts  []Alert
	actions []string
	halt    bool
}

func (t LossWindowTracker) evaluate(balance, dailyPnL, weeklyPnL, monthlyPnL float64, now time.Time) windowVerdict {
	v := windowVerdict{
		limits: LossLimits{
			Daily:   Budget(Daily, t.DailyPct, balance, dailyPnL),
			Weekly:  Budget(Weekly, t.WeeklyPct, balance, weeklyPnL),
			Monthly: Budget(Monthly, t.MonthlyPct, balance, monthlyPnL),
		},
	}

	pcts := map[Window]float64{Daily: t.DailyPct, Weekly: t.WeeklyPct, Monthly: t.MonthlyPct}
	for _, st := range v.limits.All() {
		if pcts[st.Window] <= 0 {
			continue
		}
		name := windowName(st.Window)

		switch {
		case balance <= 0 && st.Window == Daily:
			v.halt = true
			v.alerts = append(v.alerts, newAlert(AlertEmergencyStop, SeverityCritical,
				fmt.Sprintf("Daily loss limit unavailable: balance %.2f is not positive", balance), now))
			v.actions = append(v.actions, ActionHaltForDay)

		case balance <= 0:
			v.alerts = append(v.alerts, newAlert(AlertLimitWarning, SeverityHigh,
				fmt.Sprintf("%s loss limit unavailable: balance %.2f is not positive", name, balance), now))
			v.actions = append(v.actions, ActionReduceExpo)

		case st.Remaining == 0 && st.Window == Daily:
			v.halt = true
			v.alerts = append(v.alerts, newAlert(AlertEmergencyStop, SeverityCritical,
				fmt.Sprintf("Daily loss limit exhausted: loss %.2f >= limit %.2f", st.Current, st.Limit), now))
			v.actions = append(v.actions, ActionHaltForDay)

		case st.Remaining == 0:
			v.alerts = append(v.alerts, newAlert(AlertLimitWarning, SeverityHigh,
				fmt.Sprintf("%s loss limit reached: loss %.2f >= limit %.2f", name, st.Current, st.Limit), now))
			v.actions = append(v.actions, ActionReduceExpo)

		case st.Remaining < approachingFraction*st.Limit:
			v.alerts = append(v.alerts, newAlert(AlertLimitWarning, SeverityMedium,
				fmt.Sprintf("%s loss limit approaching: %.2f of %.2f remaining", name, st.Remaining, st.Limit), now))
		}
	}
	return v
}

func windowName(w Window) string {
	s := string(w)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
