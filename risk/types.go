package risk

import "time"

type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

// Position is an open position as reported by the caller. The guard only
// reads positions.
type Position struct {
	ID            string
	Symbol        string // "EUR_USD" or "BTC-USD"
	Size          float64
	EntryPrice    float64
	CurrentPrice  float64
	Side          Side
	UnrealizedPnL float64
	StopLoss      float64
	TakeProfit    float64
	OpenedAt      time.Time

	// For correlation buckets (optional), e.g. "USD" or "majors"
	RiskBucket string
}

// Status is the protection level label.
type Status string

const (
	StatusNormal     Status = "NORMAL"
	StatusWarning    Status = "WARNING"
	StatusHighRisk   Status = "HIGH_RISK"
	StatusEmergency  Status = "EMERGENCY"
	StatusRecovering Status = "RECOVERING"
)

// DrawdownStatus describes the account relative to its peak balance.
type DrawdownStatus struct {
	PeakBalance    float64
	CurrentBalance float64

	CurrentDrawdown float64 // percent, 0..100
	MaxDrawdown     float64 // percent, non-decreasing until ResetPeak

	DrawdownTicks    int           // ticks since the last peak
	DrawdownDuration time.Duration // clock time since the last peak

	RecoveryProgress float64 // percent, 0..100

	EmergencyMeasuresActive bool
	RiskReductionLevel      float64 // percent, 0..100
}

type Window string

const (
	Daily   Window = "daily"
	Weekly  Window = "weekly"
	Monthly Window = "monthly"
)

// LossLimitStatus is the budget for one loss window, in account currency.
type LossLimitStatus struct {
	Window    Window
	Limit     float64
	Current   float64
	Remaining float64
}

type LossLimits struct {
	Daily   LossLimitStatus
	Weekly  LossLimitStatus
	Monthly LossLimitStatus
}

// All returns the windows in daily, weekly, monthly order.
func (l LossLimits) All() []LossLimitStatus {
	return []LossLimitStatus{l.Daily, l.Weekly, l.Monthly}
}

// MonitoringResult is the verdict for one tick.
type MonitoringResult struct {
	Time             time.Time
	DrawdownStatus   DrawdownStatus
	LossLimits       LossLimits
	Alerts           []Alert
	EmergencyActions []string
	TradingAllowed   bool
	Status           Status

	// EmergencyActivated is true only on the tick that set the emergency flag.
	EmergencyActivated bool
}

const (
	ActionReduceSizes = "reduce position sizes"
	ActionHaltTrading = "halt all new trading"
	ActionHaltForDay  = "halt new orders for the rest of the day"
	ActionReduceExpo  = "reduce exposure"
)

// Stats summarises the guard's history.
type Stats struct {
	DrawdownEpisodes     int
	MaxDrawdown          float64
	EmergencyActivations int
	Status               Status

	CurrentDrawdown  float64
	PeakBalance      float64
	Ticks            int
	TotalAlerts      int
	AlertsBySeverity map[Severity]int
}

// State is the persistable part of a Guard. Restoring a State into a new
// Guard keeps the emergency flag sticky across process restarts.
type State struct {
	HasPeak            bool      `json:"has_peak"`
	PeakBalance        float64   `json:"peak_balance"`
	PeakAt             time.Time `json:"peak_at"`
	MaxDrawdown        float64   `json:"max_drawdown"`
	DrawdownTicks      int       `json:"drawdown_ticks"`
	EmergencyActive    bool      `json:"emergency_active"`
	RiskReductionLevel float64   `json:"risk_reduction_level"`
	Level              Status    `json:"level"`
	LastDrawdown       float64   `json:"last_drawdown"`
	LastBalance        float64   `json:"last_balance"`
	Episodes           int       `json:"episodes"`
	Activations        int       `json:"activations"`
	Ticks              int       `json:"ticks"`
	UpdatedAt          time.Time `json:"updated_at"`
}
