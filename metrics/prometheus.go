package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rustyeddy/capguard/risk"
)

// Prometheus exports guard verdicts as gauges and counters. Every series is
// labelled with the account the guard protects.
type Prometheus struct {
	account string

	drawdown        *prometheus.GaugeVec
	maxDrawdown     *prometheus.GaugeVec
	riskReduction   *prometheus.GaugeVec
	tradingAllowed  *prometheus.GaugeVec
	emergencyActive *prometheus.GaugeVec
	budgetRemaining *prometheus.GaugeVec
	alerts          *prometheus.CounterVec
	activations     *prometheus.CounterVec
	resumes         *prometheus.CounterVec
	ticks           *prometheus.CounterVec
}

// NewPrometheus builds the collectors and registers them with reg. A nil reg
// uses the default registerer.
func NewPrometheus(reg prometheus.Registerer, account string) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &Prometheus{
		account: account,
		drawdown: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "capguard_drawdown_pct",
			Help: "capguard.drawdown – percentage decline of balance from peak",
		}, []string{"account"}),
		maxDrawdown: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "capguard_max_drawdown_pct",
			Help: "capguard.max_drawdown – historical peak-to-trough drawdown",
		}, []string{"account"}),
		riskReduction: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "capguard_risk_reduction_level",
			Help: "capguard.risk_reduction – 0..100 shrink applied to new position sizes",
		}, []string{"account"}),
		tradingAllowed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "capguard_trading_allowed",
			Help: "capguard.trading_allowed – 1 when the latest verdict allows trading",
		}, []string{"account"}),
		emergencyActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "capguard_emergency_active",
			Help: "capguard.emergency_active – 1 while emergency measures are in force",
		}, []string{"account"}),
		budgetRemaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "capguard_loss_budget_remaining",
			Help: "capguard.loss_budget_remaining – remaining loss budget per window in account currency",
		}, []string{"account", "window"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capguard_alerts_total",
			Help: "capguard.alerts – alerts raised by type and severity",
		}, []string{"account", "type", "severity"}),
		activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capguard_emergency_activations_total",
			Help: "capguard.emergency_activations – times emergency measures were switched on",
		}, []string{"account"}),
		resumes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capguard_resumes_total",
			Help: "capguard.resumes – operator resumes of normal operations",
		}, []string{"account"}),
		ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capguard_ticks_total",
			Help: "capguard.ticks – evaluated ticks",
		}, []string{"account"}),
	}

	for _, c := range []prometheus.Collector{
		p.drawdown,
		p.maxDrawdown,
		p.riskReduction,
		p.tradingAllowed,
		p.emergencyActive,
		p.budgetRemaining,
		p.alerts,
		p.activations,
		p.resumes,
		p.ticks,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) ObserveTick(res risk.MonitoringResult) {
	dd := res.DrawdownStatus
	p.ticks.WithLabelValues(p.account).Inc()
	p.drawdown.WithLabelValues(p.account).Set(dd.CurrentDrawdown)
	p.maxDrawdown.WithLabelValues(p.account).Set(dd.MaxDrawdown)
	p.riskReduction.WithLabelValues(p.account).Set(dd.RiskReductionLevel)
	p.tradingAllowed.WithLabelValues(p.account).Set(boolGauge(res.TradingAllowed))
	p.emergencyActive.WithLabelValues(p.account).Set(boolGauge(dd.EmergencyMeasuresActive))

	for _, w := range res.LossLimits.All() {
		p.budgetRemaining.WithLabelValues(p.account, string(w.Window)).Set(w.Remaining)
	}
	for _, a := range res.Alerts {
		p.alerts.WithLabelValues(p.account, string(a.Type), string(a.Severity)).Inc()
	}

	if res.EmergencyActivated {
		p.activations.WithLabelValues(p.account).Inc()
	}
}

func (p *Prometheus) ObserveResume(dd risk.DrawdownStatus) {
	p.resumes.WithLabelValues(p.account).Inc()
	p.riskReduction.WithLabelValues(p.account).Set(dd.RiskReductionLevel)
	p.emergencyActive.WithLabelValues(p.account).Set(boolGauge(dd.EmergencyMeasuresActive))
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
