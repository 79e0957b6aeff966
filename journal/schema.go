package journal

const Schema = `
CREATE TABLE IF NOT EXISTS ticks (
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	peak REAL NOT NULL,
	drawdown REAL NOT NULL,
	max_drawdown REAL NOT NULL,
	risk_reduction REAL NOT NULL,
	trading_allowed INTEGER NOT NULL,
	emergency INTEGER NOT NULL,
	status TEXT NOT NULL,
	daily_remaining REAL NOT NULL,
	weekly_remaining REAL NOT NULL,
	monthly_remaining REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ticks_time ON ticks(time);

CREATE TABLE IF NOT EXISTS alerts (
	alert_id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	severity TEXT NOT NULL,
	message TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_time ON alerts(time);

CREATE TABLE IF NOT EXISTS guard_state (
	account TEXT PRIMARY KEY,
	has_peak INTEGER NOT NULL,
	peak_balance REAL NOT NULL,
	peak_at DATETIME NOT NULL,
	max_drawdown REAL NOT NULL,
	drawdown_ticks INTEGER NOT NULL,
	emergency_active INTEGER NOT NULL,
	risk_reduction_level REAL NOT NULL,
	level TEXT NOT NULL,
	last_drawdown REAL NOT NULL,
	last_balance REAL NOT NULL,
	episodes INTEGER NOT NULL,
	activations INTEGER NOT NULL,
	ticks INTEGER NOT NULL,
	updated_at DATETIME NOT NULL
);
`
