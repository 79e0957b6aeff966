package risk

import (
	"fmt"
	"time"
)

// recoveryProgressGate is the minimum retrace, in percent, before an
// emergency counts as recovered.
const recoveryProgressGate = 80

// RiskStateMachine owns the sticky protection state: the emergency flag, the
// risk-reduction level and the last drawdown level.
type RiskStateMachine struct {
	emergency bool
	reduction float64
	level     Status

	episodes    int
	activations int
}

type stateVerdict struct {
	level     Status
	alerts    []Alert
	actions   []string
	activated bool
	changed   bool
}

// classify maps a drawdown onto a level without looking at sticky state.
func classify(c Config, dd float64) Status {
	switch {
	case dd >= c.CriticalDrawdownThreshold:
		return StatusEmergency
	case dd >= c.MaxDrawdownThreshold:
		return StatusHighRisk
	case dd >= c.WarningDrawdownThreshold:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// reductionFor scales linearly from 0 at the max threshold to 100 at the
// critical threshold.
func reductionFor(c Config, dd float64) float64 {
	span := c.CriticalDrawdownThreshold - c.MaxDrawdownThreshold
	if span <= 0 {
		return 100
	}
	return clamp((dd-c.MaxDrawdownThreshold)/span*100, 0, 100)
}

func escalated(s Status) bool {
	return s == StatusWarning || s == StatusHighRisk || s == StatusEmergency
}

func (m *RiskStateMachine) evaluate(c Config, st DrawdownStatus, now time.Time) stateVerdict {
	dd := st.CurrentDrawdown
	prev := m.level
	if prev == "" {
		prev = StatusNormal
	}
	v := stateVerdict{level: classify(c, dd)}
	v.changed = v.level != prev
	if !escalated(prev) && escalated(v.level) {
		m.episodes++
	}

	target := 0.0
	switch v.level {
	case StatusWarning:
		v.alerts = append(v.alerts, newAlert(AlertDrawdownWarning, SeverityMedium,
			fmt.Sprintf("Drawdown %.2f%% from peak %.2f reached warning threshold %.2f%%",
				dd, st.PeakBalance, c.WarningDrawdownThreshold), now))

	case StatusHighRisk:
		target = reductionFor(c, dd)
		// The level only ratchets up while the episode stays at or above max.
		if prev == StatusHighRisk || prev == StatusEmergency {
			target = max(target, m.reduction)
		}
		v.alerts = append(v.alerts, newAlert(AlertDrawdownHigh, SeverityHigh,
			fmt.Sprintf("Drawdown %.2f%% exceeds max threshold %.2f%%, reducing position sizes by %.0f%%",
				dd, c.MaxDrawdownThreshold, target), now))
		v.actions = append(v.actions, ActionReduceSizes)

	case StatusEmergency:
		target = 100
		if !m.emergency {
			m.emergency = true
			m.activations++
			v.activated = true
		}
		v.alerts = append(v.alerts, newAlert(AlertEmergencyStop, SeverityCritical,
			fmt.Sprintf("Drawdown %.2f%% breached critical threshold %.2f%%, emergency stop",
				dd, c.CriticalDrawdownThreshold), now))
	}

	if m.emergency {
		target = 100
		v.actions = append(v.actions, ActionHaltTrading, ActionReduceExpo)
	}
	m.reduction = target
	m.level = v.level
	return v
}

// status labels the tick. An active emergency reads as RECOVERING once the
// recovery conditions hold.
func (m *RiskStateMachine) status(c Config, st DrawdownStatus) Status {
	if m.emergency {
		if checkRecovery(c, st) {
			return StatusRecovering
		}
		return StatusEmergency
	}
	if m.level == "" {
		return StatusNormal
	}
	return m.level
}

// protectionLabel is the status reported in statistics.
func (m *RiskStateMachine) protectionLabel() Status {
	if m.emergency {
		return StatusEmergency
	}
	if m.level == "" {
		return StatusNormal
	}
	return m.level
}

func (m *RiskStateMachine) resume() bool {
	was := m.emergency
	m.emergency = false
	m.reduction = 0
	return was
}

func checkRecovery(c Config, st DrawdownStatus) bool {
	if !st.EmergencyMeasuresActive {
		return true
	}
	return st.CurrentDrawdown < c.RecoveryThreshold && st.RecoveryProgress >= recoveryProgressGate
}
