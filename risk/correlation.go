package risk

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// CorrelationAnalyzer flags concentrated exposure across open positions.
// Its alerts are advisory and never block trading.
type CorrelationAnalyzer struct {
	// Percent of balance a single symbol may carry. 0 disables.
	ConcentrationThreshold float64
}

type symbolGroup struct {
	symbol   string
	count    int
	notional float64
	risk     float64
}

func (c CorrelationAnalyzer) Analyze(positions []Position, balance float64, now time.Time) []Alert {
	if len(positions) == 0 {
		return nil
	}

	groups := map[string]*symbolGroup{}
	for _, p := range positions {
		sym := normalizeSymbol(p.Symbol)
		g, ok := groups[sym]
		if !ok {
			g = &symbolGroup{symbol: sym}
			groups[sym] = g
		}
		g.count++
		g.notional += Notional(p)
		g.risk += RiskToStop(p)
	}

	var alerts []Alert
	for _, g := range sortedGroups(groups) {
		if g.count > 1 {
			alerts = append(alerts, newAlert(AlertCorrelationRisk, SeverityMedium,
				fmt.Sprintf("%d open positions on %s (notional %.2f, risk to stop %.2f)", g.count, g.symbol, g.notional, g.risk), now))
		}
		if c.ConcentrationThreshold > 0 {
			if pct := ExposurePct(g.notional, balance); pct > c.ConcentrationThreshold {
				alerts = append(alerts, newAlert(AlertCorrelationRisk, SeverityMedium,
					fmt.Sprintf("%s exposure %.1f%% of balance exceeds %.1f%%", g.symbol, pct, c.ConcentrationThreshold), now))
			}
		}
	}
	return append(alerts, bucketAlerts(positions, now)...)
}

// bucketAlerts flags different symbols in the same risk bucket held in the
// same direction.
func bucketAlerts(positions []Position, now time.Time) []Alert {
	type key struct {
		bucket string
		side   Side
	}
	symbols := map[key]map[string]bool{}
	for _, p := range positions {
		if p.RiskBucket == "" {
			continue
		}
		k := key{bucket: p.RiskBucket, side: p.Side}
		if symbols[k] == nil {
			symbols[k] = map[string]bool{}
		}
		symbols[k][normalizeSymbol(p.Symbol)] = true
	}

	keys := make([]key, 0, len(symbols))
	for k := range symbols {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].bucket != keys[j].bucket {
			return keys[i].bucket < keys[j].bucket
		}
		return keys[i].side < keys[j].side
	})

	var alerts []Alert
	for _, k := range keys {
		if len(symbols[k]) < 2 {
			continue
		}
		names := make([]string, 0, len(symbols[k]))
		for s := range symbols[k] {
			names = append(names, s)
		}
		sort.Strings(names)
		alerts = append(alerts, newAlert(AlertCorrelationRisk, SeverityMedium,
			fmt.Sprintf("correlated %s exposure in bucket %s: %s", k.side, k.bucket, strings.Join(names, ", ")), now))
	}
	return alerts
}

func sortedGroups(groups map[string]*symbolGroup) []*symbolGroup {
	out := make([]*symbolGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].symbol < out[j].symbol })
	return out
}

// normalizeSymbol treats "EUR/USD", "eur_usd" and "EUR_USD" as one instrument.
func normalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "/", "_")
}
