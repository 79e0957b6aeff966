package risk

import "time"

// PeakTracker keeps the highest balance seen and derives drawdown from it.
type PeakTracker struct {
	hasPeak     bool
	peak        float64
	peakAt      time.Time
	maxDrawdown float64
	ticks       int

	current float64
	balance float64
}

// Update records a balance observed at now and returns the drawdown figures.
// The sticky fields of DrawdownStatus are left for the state machine.
func (p *PeakTracker) Update(balance float64, now time.Time) DrawdownStatus {
	p.balance = balance
	// Returning to the peak restarts the drawdown clock.
	if !p.hasPeak || balance >= p.peak {
		p.hasPeak = true
		p.peak = balance
		p.peakAt = now
		p.ticks = 0
	}

	p.current = drawdownPct(p.peak, balance)
	if p.current > p.maxDrawdown {
		p.maxDrawdown = p.current
	}
	if p.current > 0 {
		p.ticks++
	}
	return p.status(now)
}

func (p *PeakTracker) status(now time.Time) DrawdownStatus {
	st := DrawdownStatus{
		PeakBalance:      p.peak,
		CurrentBalance:   p.balance,
		CurrentDrawdown:  p.current,
		MaxDrawdown:      p.maxDrawdown,
		DrawdownTicks:    p.ticks,
		RecoveryProgress: recoveryProgress(p.maxDrawdown, p.current),
	}
	if p.current > 0 && !p.peakAt.IsZero() && now.After(p.peakAt) {
		st.DrawdownDuration = now.Sub(p.peakAt)
	}
	return st
}

// Reset forgets the peak and the historical maximum drawdown.
func (p *PeakTracker) Reset() {
	*p = PeakTracker{}
}

// drawdownPct is the decline from peak in percent, clamped to [0, 100].
// A non-positive peak has no meaningful drawdown.
func drawdownPct(peak, balance float64) float64 {
	if peak <= 0 {
		return 0
	}
	return clamp((peak-balance)/peak*100, 0, 100)
}

func recoveryProgress(maxDD, currentDD float64) float64 {
	if maxDD <= 0 {
		return 100
	}
	return clamp((maxDD-currentDD)/maxDD*100, 0, 100)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
