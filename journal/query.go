package journal

import (
	"time"

	"github.com/rustyeddy/capguard/risk"
)

// RecentAlerts returns the newest n alerts in chronological order.
func (j *SQLite) RecentAlerts(n int) ([]risk.Alert, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := j.db.Query(`
		SELECT alert_id, type, severity, message, time
		FROM alerts
		ORDER BY time DESC, alert_id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []risk.Alert
	for rows.Next() {
		var (
			a        risk.Alert
			typ, sev string
		)
		if err := rows.Scan(&a.ID, &typ, &sev, &a.Message, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Type = risk.AlertType(typ)
		a.Severity = risk.Severity(sev)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// DeleteAlertsBefore removes alerts stamped before cutoff and reports how
// many were removed.
func (j *SQLite) DeleteAlertsBefore(cutoff time.Time) (int64, error) {
	res, err := j.db.Exec(`DELETE FROM alerts WHERE time < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteAllAlerts empties the alert journal.
func (j *SQLite) DeleteAllAlerts() (int64, error) {
	res, err := j.db.Exec(`DELETE FROM alerts`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListTicksBetween returns ticks whose time is within [start, end).
func (j *SQLite) ListTicksBetween(start, end time.Time) ([]TickRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, balance, peak, drawdown, max_drawdown, risk_reduction, trading_allowed, emergency, status,
		       daily_remaining, weekly_remaining, monthly_remaining
		FROM ticks
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TickRecord
	for rows.Next() {
		var rec TickRecord
		if err := rows.Scan(
			&rec.Time,
			&rec.Balance,
			&rec.Peak,
			&rec.Drawdown,
			&rec.MaxDrawdown,
			&rec.RiskReduction,
			&rec.TradingAllowed,
			&rec.Emergency,
			&rec.Status,
			&rec.DailyRemaining,
			&rec.WeeklyRemaining,
			&rec.MonthlyRemaining,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
