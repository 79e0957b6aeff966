package journal

import (
	"time"

	"github.com/rustyeddy/capguard/risk"
)

// TickRecord is one guard verdict, flattened for storage.
type TickRecord struct {
	Time             time.Time
	Balance          float64
	Peak             float64
	Drawdown         float64
	MaxDrawdown      float64
	RiskReduction    float64
	TradingAllowed   bool
	Emergency        bool
	Status           string
	DailyRemaining   float64
	WeeklyRemaining  float64
	MonthlyRemaining float64
}

func TickFromResult(res risk.MonitoringResult) TickRecord {
	dd := res.DrawdownStatus
	return TickRecord{
		Time:             res.Time,
		Balance:          dd.CurrentBalance,
		Peak:             dd.PeakBalance,
		Drawdown:         dd.CurrentDrawdown,
		MaxDrawdown:      dd.MaxDrawdown,
		RiskReduction:    dd.RiskReductionLevel,
		TradingAllowed:   res.TradingAllowed,
		Emergency:        dd.EmergencyMeasuresActive,
		Status:           string(res.Status),
		DailyRemaining:   res.LossLimits.Daily.Remaining,
		WeeklyRemaining:  res.LossLimits.Weekly.Remaining,
		MonthlyRemaining: res.LossLimits.Monthly.Remaining,
	}
}

type Journal interface {
	RecordTick(TickRecord) error
	RecordAlert(risk.Alert) error
	Close() error
}

// Record writes the tick and each of its alerts.
func Record(j Journal, res risk.MonitoringResult) error {
	if err := j.RecordTick(TickFromResult(res)); err != nil {
		return err
	}
	for _, a := range res.Alerts {
		if err := j.RecordAlert(a); err != nil {
			return err
		}
	}
	return nil
}
