package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/capguard/risk"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('ticks','alerts','guard_state')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["ticks"])
	assert.True(t, found["alerts"])
	assert.True(t, found["guard_state"])
}

func TestSQLiteRecordTickRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := TickRecord{
		Time:             at,
		Balance:          8800,
		Peak:             10000,
		Drawdown:         12,
		MaxDrawdown:      12,
		RiskReduction:    40,
		TradingAllowed:   true,
		Status:           "HIGH_RISK",
		DailyRemaining:   176,
		WeeklyRemaining:  440,
		MonthlyRemaining: 880,
	}
	require.NoError(t, j.RecordTick(rec))

	got, err := j.ListTicksBetween(at.Add(-time.Minute), at.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.True(t, got[0].Time.Equal(at))
	assert.InDelta(t, 8800, got[0].Balance, 1e-9)
	assert.InDelta(t, 40, got[0].RiskReduction, 1e-9)
	assert.True(t, got[0].TradingAllowed)
	assert.False(t, got[0].Emergency)
	assert.Equal(t, "HIGH_RISK", got[0].Status)
	assert.InDelta(t, 880, got[0].MonthlyRemaining, 1e-9)
}

func TestSQLiteListTicksBetweenIsHalfOpen(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, j.RecordTick(TickRecord{
			Time:    base.Add(time.Duration(i) * time.Hour),
			Balance: 10000 - float64(i)*100,
			Status:  "NORMAL",
		}))
	}

	got, err := j.ListTicksBetween(base.Add(time.Hour), base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 9900, got[0].Balance, 1e-9)
	assert.InDelta(t, 9800, got[1].Balance, 1e-9)
}

func testAlert(id string, at time.Time) risk.Alert {
	return risk.Alert{
		ID:        id,
		Type:      risk.AlertDrawdownWarning,
		Severity:  risk.SeverityMedium,
		Message:   "drawdown " + id,
		Timestamp: at,
	}
}

func TestSQLiteRecentAlertsChronological(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"A1", "A2", "A3"} {
		require.NoError(t, j.RecordAlert(testAlert(id, base.Add(time.Duration(i)*time.Minute))))
	}

	got, err := j.RecentAlerts(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A2", got[0].ID)
	assert.Equal(t, "A3", got[1].ID)
	assert.Equal(t, risk.AlertDrawdownWarning, got[1].Type)
	assert.Equal(t, risk.SeverityMedium, got[1].Severity)
	assert.Equal(t, "drawdown A3", got[1].Message)

	none, err := j.RecentAlerts(0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLiteDeleteAlertsBefore(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordAlert(testAlert("OLD", base)))
	require.NoError(t, j.RecordAlert(testAlert("NEW", base.Add(48*time.Hour))))

	n, err := j.DeleteAlertsBefore(base.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := j.RecentAlerts(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NEW", got[0].ID)
}

func TestSQLiteDeleteAllAlerts(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	// Alerts stamped in the future are still removed.
	base := time.Now().Add(24 * time.Hour)
	require.NoError(t, j.RecordAlert(testAlert("A", base)))
	require.NoError(t, j.RecordAlert(testAlert("B", base.Add(time.Hour))))

	n, err := j.DeleteAllAlerts()
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := j.RecentAlerts(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteRecordAlertDuplicateID(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	a := testAlert("DUP", time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC))
	require.NoError(t, j.RecordAlert(a))
	assert.Error(t, j.RecordAlert(a))
}

func TestSQLiteStateRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	_, ok, err := j.LoadState("acct-1")
	require.NoError(t, err)
	assert.False(t, ok)

	peakAt := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	s := risk.State{
		HasPeak:            true,
		PeakBalance:        10000,
		PeakAt:             peakAt,
		MaxDrawdown:        16,
		DrawdownTicks:      7,
		EmergencyActive:    true,
		RiskReductionLevel: 100,
		Level:              risk.StatusEmergency,
		LastDrawdown:       16,
		LastBalance:        8400,
		Episodes:           1,
		Activations:        1,
		Ticks:              9,
		UpdatedAt:          peakAt.Add(time.Hour),
	}
	require.NoError(t, j.SaveState("acct-1", s))

	got, ok, err := j.LoadState("acct-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.PeakAt.Equal(s.PeakAt))
	assert.True(t, got.UpdatedAt.Equal(s.UpdatedAt))
	assert.True(t, got.EmergencyActive)
	assert.Equal(t, risk.StatusEmergency, got.Level)
	assert.InDelta(t, 8400, got.LastBalance, 1e-9)
	assert.Equal(t, 9, got.Ticks)

	// Upsert replaces the previous row.
	s.EmergencyActive = false
	s.RiskReductionLevel = 0
	s.Level = risk.StatusNormal
	require.NoError(t, j.SaveState("acct-1", s))

	got, ok, err = j.LoadState("acct-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, got.EmergencyActive)
	assert.Equal(t, risk.StatusNormal, got.Level)

	_, ok, err = j.LoadState("acct-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordWritesTickAndAlerts(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	at := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	res := risk.MonitoringResult{
		Time: at,
		DrawdownStatus: risk.DrawdownStatus{
			PeakBalance:     10000,
			CurrentBalance:  9400,
			CurrentDrawdown: 6,
			MaxDrawdown:     6,
		},
		Alerts:         []risk.Alert{testAlert("R1", at)},
		TradingAllowed: true,
		Status:         risk.StatusWarning,
	}
	require.NoError(t, Record(j, res))

	ticks, err := j.ListTicksBetween(at, at.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, ticks, 1)
	assert.Equal(t, "WARNING", ticks[0].Status)

	alerts, err := j.RecentAlerts(5)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "R1", alerts[0].ID)
}
