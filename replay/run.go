package replay

import (
	"context"
	"time"

	"github.com/rustyeddy/capguard/risk"
)

// Summary describes a finished replay.
type Summary struct {
	Ticks     int
	Halted    int
	Alerts    int
	FirstHalt time.Time
	Last      risk.MonitoringResult
}

// Handler sees every tick with its verdict. Returning an error stops the
// replay.
type Handler func(Tick, risk.MonitoringResult) error

// Run drives g over ticks, moving clock to each tick's time before
// evaluating it. The guard must have been built with the same clock.
// Cancelling ctx stops the replay between ticks.
func Run(ctx context.Context, g *risk.Guard, clock *risk.ManualClock, ticks []Tick, fn Handler) (Summary, error) {
	var s Summary
	for _, tk := range ticks {
		if err := ctx.Err(); err != nil {
			return s, err
		}

		clock.Set(tk.Time)
		res := g.Monitor(tk.Balance, tk.Positions, tk.DailyPnL, tk.WeeklyPnL, tk.MonthlyPnL)

		s.Ticks++
		s.Alerts += len(res.Alerts)
		if !res.TradingAllowed {
			if s.Halted == 0 {
				s.FirstHalt = tk.Time
			}
			s.Halted++
		}
		s.Last = res

		if fn != nil {
			if err := fn(tk, res); err != nil {
				return s, err
			}
		}
	}
	return s, nil
}
