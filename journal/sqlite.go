package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/capguard/risk"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTick(t TickRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO ticks
		(time, balance, peak, drawdown, max_drawdown, risk_reduction, trading_allowed, emergency, status,
		 daily_remaining, weekly_remaining, monthly_remaining)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Time.UTC(), t.Balance, t.Peak, t.Drawdown, t.MaxDrawdown, t.RiskReduction,
		t.TradingAllowed, t.Emergency, t.Status,
		t.DailyRemaining, t.WeeklyRemaining, t.MonthlyRemaining,
	)
	return err
}

func (j *SQLite) RecordAlert(a risk.Alert) error {
	_, err := j.db.Exec(`
		INSERT INTO alerts
		(alert_id, type, severity, message, time)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, string(a.Type), string(a.Severity), a.Message, a.Timestamp.UTC(),
	)
	return err
}

// SaveState upserts the guard state for account.
func (j *SQLite) SaveState(account string, s risk.State) error {
	_, err := j.db.Exec(`
		INSERT INTO guard_state
		(account, has_peak, peak_balance, peak_at, max_drawdown, drawdown_ticks, emergency_active,
		 risk_reduction_level, level, last_drawdown, last_balance, episodes, activations, ticks, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account) DO UPDATE SET
			has_peak = excluded.has_peak,
			peak_balance = excluded.peak_balance,
			peak_at = excluded.peak_at,
			max_drawdown = excluded.max_drawdown,
			drawdown_ticks = excluded.drawdown_ticks,
			emergency_active = excluded.emergency_active,
			risk_reduction_level = excluded.risk_reduction_level,
			level = excluded.level,
			last_drawdown = excluded.last_drawdown,
			last_balance = excluded.last_balance,
			episodes = excluded.episodes,
			activations = excluded.activations,
			ticks = excluded.ticks,
			updated_at = excluded.updated_at`,
		account, s.HasPeak, s.PeakBalance, s.PeakAt.UTC(), s.MaxDrawdown, s.DrawdownTicks, s.EmergencyActive,
		s.RiskReductionLevel, string(s.Level), s.LastDrawdown, s.LastBalance, s.Episodes, s.Activations, s.Ticks,
		s.UpdatedAt.UTC(),
	)
	return err
}

// LoadState returns the saved state for account. ok is false when nothing
// has been saved yet.
func (j *SQLite) LoadState(account string) (s risk.State, ok bool, err error) {
	var level string
	row := j.db.QueryRow(`
		SELECT has_peak, peak_balance, peak_at, max_drawdown, drawdown_ticks, emergency_active,
		       risk_reduction_level, level, last_drawdown, last_balance, episodes, activations, ticks, updated_at
		FROM guard_state
		WHERE account = ?`, account)

	err = row.Scan(
		&s.HasPeak,
		&s.PeakBalance,
		&s.PeakAt,
		&s.MaxDrawdown,
		&s.DrawdownTicks,
		&s.EmergencyActive,
		&s.RiskReductionLevel,
		&level,
		&s.LastDrawdown,
		&s.LastBalance,
		&s.Episodes,
		&s.Activations,
		&s.Ticks,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return risk.State{}, false, nil
	}
	if err != nil {
		return risk.State{}, false, err
	}
	s.Level = risk.Status(level)
	return s, true, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
