package risk

import "math"

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Notional is the position's absolute exposure in quote currency. The entry
// price stands in until the caller supplies a current price.
func Notional(p Position) float64 {
	px := p.CurrentPrice
	if px == 0 {
		px = p.EntryPrice
	}
	return abs(p.Size) * abs(px)
}

// RiskToStop computes the absolute loss if the stop is hit. A position
// without a stop reports 0.
func RiskToStop(p Position) float64 {
	if p.StopLoss == 0 {
		return 0
	}
	px := p.CurrentPrice
	if px == 0 {
		px = p.EntryPrice
	}
	return abs(p.Size) * abs(px-p.StopLoss)
}

// ExposurePct is notional as a percentage of balance. A non-positive
// balance makes any exposure infinite.
func ExposurePct(notional, balance float64) float64 {
	if balance <= 0 {
		if notional == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return notional / balance * 100
}
