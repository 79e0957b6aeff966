package risk

import "math"

// AdjustPositionSize scales baseSize down by the risk-reduction level:
// level 0 leaves it unchanged, level 100 yields zero.
func AdjustPositionSize(baseSize float64, status DrawdownStatus) float64 {
	level := clamp(status.RiskReductionLevel, 0, 100)
	return baseSize * (1 - level/100)
}

type Inputs struct {
	Equity      float64
	RiskPct     float64 // 0.005
	EntryPrice  float64
	StopPrice   float64
	PipLocation int

	// QuoteToAccount converts one unit of quote currency into the account
	// currency: EUR_USD in a USD account is 1.0, USD_JPY is 1 / USDJPY mid.
	QuoteToAccount float64
}

type Result struct {
	Units      float64
	StopPips   float64
	RiskAmount float64
}

func pipSize(loc int) float64 {
	return math.Pow(10, float64(loc))
}

// PipSize returns the pip size for a given pip location.
func PipSize(loc int) float64 {
	return pipSize(loc)
}

// Calculate sizes a position so that hitting the stop loses RiskPct of
// equity. A zero stop distance sizes nothing.
func Calculate(in Inputs) Result {
	pip := pipSize(in.PipLocation)
	stopPips := math.Abs(in.EntryPrice-in.StopPrice) / pip

	riskAmt := in.Equity * in.RiskPct
	pipValuePerUnit := pip * in.QuoteToAccount
	if stopPips == 0 || pipValuePerUnit == 0 {
		return Result{StopPips: stopPips, RiskAmount: riskAmt}
	}

	units := riskAmt / (stopPips * pipValuePerUnit)

	return Result{
		Units:      math.Floor(units),
		StopPips:   stopPips,
		RiskAmount: riskAmt,
	}
}

// SizeForRisk sizes a position by risk and then applies the guard's
// risk-reduction level. Units are whole.
func SizeForRisk(in Inputs, status DrawdownStatus) Result {
	res := Calculate(in)
	res.Units = math.Floor(AdjustPositionSize(res.Units, status))
	res.RiskAmount = AdjustPositionSize(res.RiskAmount, status)
	return res
}
