package risk

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Observer receives every verdict. metrics.Prometheus implements it.
type Observer interface {
	ObserveTick(MonitoringResult)
	ObserveResume(DrawdownStatus)
}

type nopObserver struct{}

func (nopObserver) ObserveTick(MonitoringResult) {}
func (nopObserver) ObserveResume(DrawdownStatus) {}

// Guard is the capital-preservation guard. It is meant to be driven by one
// evaluation loop; the mutex only makes operator calls from other
// goroutines safe.
type Guard struct {
	mu       sync.Mutex
	cfg      Config
	clock    Clock
	log      *zap.Logger
	observer Observer

	peak    PeakTracker
	machine RiskStateMachine
	alerts  *AlertLog

	ticks      int
	total      int
	bySeverity map[Severity]int
	updatedAt  time.Time
}

type Option func(*Guard)

func WithClock(c Clock) Option {
	return func(g *Guard) {
		if c != nil {
			g.clock = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(g *Guard) {
		if o != nil {
			g.observer = o
		}
	}
}

// WithState restores previously persisted state.
func WithState(s State) Option {
	return func(g *Guard) { g.restore(s) }
}

// NewGuard validates cfg and returns a guard with no recorded peak.
func NewGuard(cfg Config, opts ...Option) (*Guard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Guard{
		cfg:        cfg,
		clock:      SystemClock{},
		log:        zap.NewNop(),
		observer:   nopObserver{},
		alerts:     NewAlertLog(cfg.AlertCapacity),
		bySeverity: map[Severity]int{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Monitor evaluates one tick. P/L arguments are realized P/L for each
// window, negative for losses.
func (g *Guard) Monitor(balance float64, positions []Position, dailyPnL, weeklyPnL, monthlyPnL float64) MonitoringResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	g.ticks++
	g.updatedAt = now

	dd := g.peak.Update(balance, now)
	sv := g.machine.evaluate(g.cfg, dd, now)
	dd.EmergencyMeasuresActive = g.machine.emergency
	dd.RiskReductionLevel = g.machine.reduction

	wv := newLossWindowTracker(g.cfg).evaluate(balance, dailyPnL, weeklyPnL, monthlyPnL, now)
	corr := CorrelationAnalyzer{ConcentrationThreshold: g.cfg.ConcentrationThreshold}.Analyze(positions, balance, now)

	res := MonitoringResult{
		Time:           now,
		DrawdownStatus: dd,
		LossLimits:     wv.limits,
		TradingAllowed: !g.machine.emergency && !wv.halt,
		Status:         g.machine.status(g.cfg, dd),

		EmergencyActivated: sv.activated,
	}
	res.Alerts = append(res.Alerts, sv.alerts...)
	res.Alerts = append(res.Alerts, wv.alerts...)
	res.Alerts = append(res.Alerts, corr...)
	res.EmergencyActions = dedupe(append(sv.actions, wv.actions...))

	g.record(res.Alerts)
	g.logTick(res, sv, wv.halt)
	g.observer.ObserveTick(res)
	return res
}

func (g *Guard) record(alerts []Alert) {
	g.alerts.Append(alerts...)
	g.total += len(alerts)
	for _, a := range alerts {
		g.bySeverity[a.Severity]++
	}
}

func (g *Guard) logTick(res MonitoringResult, sv stateVerdict, dailyHalt bool) {
	dd := res.DrawdownStatus
	fields := []zap.Field{
		zap.Float64("balance", dd.CurrentBalance),
		zap.Float64("peak", dd.PeakBalance),
		zap.Float64("drawdown_pct", dd.CurrentDrawdown),
		zap.Float64("risk_reduction", dd.RiskReductionLevel),
		zap.String("status", string(res.Status)),
	}

	if sv.activated {
		g.log.Error("emergency measures activated", fields...)
	} else if sv.changed {
		g.log.Warn("drawdown level changed", append(fields, zap.String("level", string(sv.level)))...)
	}
	if dailyHalt {
		g.log.Warn("daily loss limit exhausted, trading halted for tick",
			zap.Float64("daily_loss", res.LossLimits.Daily.Current),
			zap.Float64("daily_limit", res.LossLimits.Daily.Limit))
	}
	g.log.Debug("tick evaluated", append(fields,
		zap.Bool("trading_allowed", res.TradingAllowed),
		zap.Int("alerts", len(res.Alerts)))...)
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// CalculatePositionSizeAdjustment is AdjustPositionSize.
func (g *Guard) CalculatePositionSizeAdjustment(baseSize float64, status DrawdownStatus) float64 {
	return AdjustPositionSize(baseSize, status)
}

// CheckRecoveryConditions reports whether trading could safely resume. It
// never changes state; only ResumeNormalOperations clears an emergency.
func (g *Guard) CheckRecoveryConditions(status DrawdownStatus) bool {
	g.mu.Lock()
	cfg := g.cfg
	g.mu.Unlock()
	return checkRecovery(cfg, status)
}

// ResumeNormalOperations is the operator action that clears the sticky
// emergency flag and resets the risk-reduction level.
func (g *Guard) ResumeNormalOperations() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	wasActive := g.machine.resume()
	st := g.drawdownStatus(now)

	msg := "Normal operations resumed by operator"
	if wasActive {
		msg = fmt.Sprintf("Emergency measures cleared by operator at drawdown %.2f%%", st.CurrentDrawdown)
	}
	g.record([]Alert{newAlert(AlertRecovery, SeverityLow, msg, now)})
	g.log.Info("normal operations resumed",
		zap.Bool("was_emergency", wasActive),
		zap.Float64("drawdown_pct", st.CurrentDrawdown))
	g.observer.ObserveResume(st)
}

// ResetPeak forgets the recorded peak and the historical maximum drawdown.
// The emergency flag is not touched.
func (g *Guard) ResetPeak() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.peak.Reset()
	g.log.Info("peak tracker reset")
}

// DrawdownStatus returns the status as of the last tick.
func (g *Guard) DrawdownStatus() DrawdownStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.drawdownStatus(g.clock.Now())
}

func (g *Guard) drawdownStatus(now time.Time) DrawdownStatus {
	st := g.peak.status(now)
	st.EmergencyMeasuresActive = g.machine.emergency
	st.RiskReductionLevel = g.machine.reduction
	return st
}

func (g *Guard) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	bySev := make(map[Severity]int, len(g.bySeverity))
	for k, v := range g.bySeverity {
		bySev[k] = v
	}
	return Stats{
		DrawdownEpisodes:     g.machine.episodes,
		MaxDrawdown:          g.peak.maxDrawdown,
		EmergencyActivations: g.machine.activations,
		Status:               g.machine.protectionLabel(),
		CurrentDrawdown:      g.peak.current,
		PeakBalance:          g.peak.peak,
		Ticks:                g.ticks,
		TotalAlerts:          g.total,
		AlertsBySeverity:     bySev,
	}
}

// RecentAlerts returns the last n alerts in chronological order.
func (g *Guard) RecentAlerts(n int) []Alert {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alerts.Recent(n)
}

// ClearOldAlerts evicts alerts older than maxAge. A zero maxAge evicts
// everything. It returns the number evicted.
func (g *Guard) ClearOldAlerts(maxAge time.Duration) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if maxAge <= 0 {
		n := g.alerts.Len()
		g.alerts.Clear()
		return n
	}
	return g.alerts.EvictBefore(g.clock.Now().Add(-maxAge))
}

func (g *Guard) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// UpdateConfig merges p into the current config. An invalid result is
// rejected and the current config kept.
func (g *Guard) UpdateConfig(p ConfigPatch) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := p.Apply(g.cfg)
	if err := next.Validate(); err != nil {
		return err
	}
	g.cfg = next
	g.log.Info("protection config updated",
		zap.Float64("warning", next.WarningDrawdownThreshold),
		zap.Float64("max", next.MaxDrawdownThreshold),
		zap.Float64("critical", next.CriticalDrawdownThreshold))
	return nil
}

// State returns the persistable state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return State{
		HasPeak:            g.peak.hasPeak,
		PeakBalance:        g.peak.peak,
		PeakAt:             g.peak.peakAt,
		MaxDrawdown:        g.peak.maxDrawdown,
		DrawdownTicks:      g.peak.ticks,
		EmergencyActive:    g.machine.emergency,
		RiskReductionLevel: g.machine.reduction,
		Level:              g.machine.level,
		LastDrawdown:       g.peak.current,
		LastBalance:        g.peak.balance,
		Episodes:           g.machine.episodes,
		Activations:        g.machine.activations,
		Ticks:              g.ticks,
		UpdatedAt:          g.updatedAt,
	}
}

// Restore replaces the guard's state. Alerts are not part of State.
func (g *Guard) Restore(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restore(s)
}

func (g *Guard) restore(s State) {
	g.peak = PeakTracker{
		hasPeak:     s.HasPeak,
		peak:        s.PeakBalance,
		peakAt:      s.PeakAt,
		maxDrawdown: s.MaxDrawdown,
		ticks:       s.DrawdownTicks,
		current:     s.LastDrawdown,
		balance:     s.LastBalance,
	}
	g.machine = RiskStateMachine{
		emergency:   s.EmergencyActive,
		reduction:   clamp(s.RiskReductionLevel, 0, 100),
		level:       s.Level,
		episodes:    s.Episodes,
		activations: s.Activations,
	}
	g.ticks = s.Ticks
	g.updatedAt = s.UpdatedAt
}
