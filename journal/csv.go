package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/capguard/risk"
)

var (
	tickHeader  = []string{"time", "balance", "peak", "drawdown", "max_drawdown", "risk_reduction", "trading_allowed", "emergency", "status", "daily_remaining", "weekly_remaining", "monthly_remaining"}
	alertHeader = []string{"alert_id", "type", "severity", "message", "time"}
)

// CSVJournal appends ticks and alerts to two CSV files.
type CSVJournal struct {
	ticks  *csv.Writer
	alerts *csv.Writer
	tf, af *os.File
}

func NewCSV(ticksPath, alertsPath string) (*CSVJournal, error) {
	tf, err := os.Create(ticksPath)
	if err != nil {
		return nil, err
	}
	af, err := os.Create(alertsPath)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}

	j := &CSVJournal{
		ticks:  csv.NewWriter(tf),
		alerts: csv.NewWriter(af),
		tf:     tf,
		af:     af,
	}
	if err := j.write(j.ticks, tickHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	if err := j.write(j.alerts, alertHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) RecordTick(t TickRecord) error {
	return j.write(j.ticks, []string{
		t.Time.UTC().Format(time.RFC3339),
		f(t.Balance),
		f(t.Peak),
		f(t.Drawdown),
		f(t.MaxDrawdown),
		f(t.RiskReduction),
		strconv.FormatBool(t.TradingAllowed),
		strconv.FormatBool(t.Emergency),
		t.Status,
		f(t.DailyRemaining),
		f(t.WeeklyRemaining),
		f(t.MonthlyRemaining),
	})
}

func (j *CSVJournal) RecordAlert(a risk.Alert) error {
	return j.write(j.alerts, []string{
		a.ID,
		string(a.Type),
		string(a.Severity),
		a.Message,
		a.Timestamp.UTC().Format(time.RFC3339),
	})
}

func (j *CSVJournal) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) Close() error {
	j.ticks.Flush()
	if err := j.ticks.Error(); err != nil {
		return err
	}
	j.alerts.Flush()
	if err := j.alerts.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.af.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
