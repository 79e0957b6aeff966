package risk

import (
	"time"

	"github.com/rustyeddy/capguard/pkg/id"
)

type AlertType string

const (
	AlertDrawdownWarning AlertType = "DRAWDOWN_WARNING"
	AlertDrawdownHigh    AlertType = "DRAWDOWN_HIGH"
	AlertEmergencyStop   AlertType = "EMERGENCY_STOP"
	AlertCorrelationRisk AlertType = "CORRELATION_RISK"
	AlertLimitWarning    AlertType = "LIMIT_WARNING"
	AlertRecovery        AlertType = "RECOVERY"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Alert is a record for the notification pipeline. The guard never
// delivers alerts itself.
type Alert struct {
	ID        string
	Type      AlertType
	Severity  Severity
	Message   string
	Timestamp time.Time
}

func newAlert(t AlertType, sev Severity, msg string, now time.Time) Alert {
	return Alert{
		ID:        id.At(now),
		Type:      t,
		Severity:  sev,
		Message:   msg,
		Timestamp: now,
	}
}

// AlertLog is a fixed-capacity ring of alerts, oldest first. When full the
// oldest alert is overwritten.
type AlertLog struct {
	buf   []Alert
	start int
	n     int
}

func NewAlertLog(capacity int) *AlertLog {
	if capacity <= 0 {
		capacity = DefaultConfig().AlertCapacity
	}
	return &AlertLog{buf: make([]Alert, capacity)}
}

func (l *AlertLog) Len() int { return l.n }

func (l *AlertLog) Cap() int { return len(l.buf) }

func (l *AlertLog) Append(alerts ...Alert) {
	for _, a := range alerts {
		if l.n < len(l.buf) {
			l.buf[(l.start+l.n)%len(l.buf)] = a
			l.n++
			continue
		}
		l.buf[l.start] = a
		l.start = (l.start + 1) % len(l.buf)
	}
}

func (l *AlertLog) at(i int) Alert {
	return l.buf[(l.start+i)%len(l.buf)]
}

// Recent returns the last n alerts in chronological order.
func (l *AlertLog) Recent(n int) []Alert {
	if n <= 0 || l.n == 0 {
		return nil
	}
	if n > l.n {
		n = l.n
	}
	out := make([]Alert, 0, n)
	for i := l.n - n; i < l.n; i++ {
		out = append(out, l.at(i))
	}
	return out
}

// EvictBefore drops alerts stamped before cutoff and returns how many went.
func (l *AlertLog) EvictBefore(cutoff time.Time) int {
	kept := make([]Alert, 0, l.n)
	for i := 0; i < l.n; i++ {
		if a := l.at(i); !a.Timestamp.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	removed := l.n - len(kept)
	l.Clear()
	l.Append(kept...)
	return removed
}

func (l *AlertLog) Clear() {
	clear(l.buf)
	l.start = 0
	l.n = 0
}
