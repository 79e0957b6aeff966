package metrics

import "github.com/rustyeddy/capguard/risk"

// Nop discards observations.
type Nop struct{}

func (Nop) ObserveTick(risk.MonitoringResult) {}
func (Nop) ObserveResume(risk.DrawdownStatus) {}

var (
	_ risk.Observer = Nop{}
	_ risk.Observer = (*Prometheus)(nil)
)
