package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/capguard/risk"
)

// FormatAlertOrg renders an alert as an org-mode heading with a property
// drawer, ready to paste into an incident log.
func FormatAlertOrg(a risk.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** %s %s (%s)\n", a.Severity, a.Type, shortID(a.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", a.ID)
	fmt.Fprintf(&b, ":TYPE: %s\n", a.Type)
	fmt.Fprintf(&b, ":SEVERITY: %s\n", a.Severity)
	fmt.Fprintf(&b, ":TIME: %s\n", a.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(":END:\n")
	b.WriteString(a.Message)
	b.WriteString("\n\n")
	b.WriteString("*** Response\n- \n")
	return b.String()
}

// FormatAlertsOrg renders multiple alerts separated by blank lines.
func FormatAlertsOrg(alerts []risk.Alert) string {
	var b strings.Builder
	for i, a := range alerts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatAlertOrg(a))
	}
	return b.String()
}

// FormatStatsOrg renders guard statistics as an org table.
func FormatStatsOrg(account string, s risk.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "* Capital preservation: %s\n", account)
	b.WriteString("| metric | value |\n")
	b.WriteString("|-\n")
	fmt.Fprintf(&b, "| status | %s |\n", s.Status)
	fmt.Fprintf(&b, "| peak balance | %.2f |\n", s.PeakBalance)
	fmt.Fprintf(&b, "| current drawdown | %.2f%% |\n", s.CurrentDrawdown)
	fmt.Fprintf(&b, "| max drawdown | %.2f%% |\n", s.MaxDrawdown)
	fmt.Fprintf(&b, "| drawdown episodes | %d |\n", s.DrawdownEpisodes)
	fmt.Fprintf(&b, "| emergency activations | %d |\n", s.EmergencyActivations)
	fmt.Fprintf(&b, "| ticks | %d |\n", s.Ticks)
	fmt.Fprintf(&b, "| alerts | %d |\n", s.TotalAlerts)
	return b.String()
}

func shortID(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}
