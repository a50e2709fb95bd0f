package report

import (
	"fmt"
	"strings"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// FormatAuditReport renders an audit report as human-readable text.
func FormatAuditReport(r model.AuditReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Energy Audit: %s\n\n", orDash(r.AuditID))

	b.WriteString("## Consumption\n")
	fmt.Fprintf(&b, "- Heating: %d kWh/month\n", r.EndUse.HeatingKWh)
	fmt.Fprintf(&b, "- Hot water: %d kWh/month\n", r.EndUse.DHWKWh)
	fmt.Fprintf(&b, "- Appliances: %d kWh/month\n", r.EndUse.AppliancesKWh)
	fmt.Fprintf(&b, "- Total: %d kWh/month\n\n", r.TotalKWh)

	fmt.Fprintf(&b, "## Efficiency score: %d/100\n\n", r.Score)

	b.WriteString("## Recommended actions\n")
	if r.AdviceOrigin == model.AdviceOriginFallback {
		fmt.Fprintf(&b, "(standard list, advice service unavailable: %s)\n", orDash(r.FallbackReason))
	}
	for i, a := range r.Advice {
		fmt.Fprintf(&b, "%d. %s [%s]\n", i+1, a.Title, a.Code)
		fmt.Fprintf(&b, "   Saves %.0f-%.0f kWh/month (about €%.0f). Difficulty %d/5, comfort %d/5.\n",
			a.Savings.KWhLow, a.Savings.KWhHigh, a.Savings.EURMid, a.Difficulty, a.Comfort)
		if a.Safety != "" {
			fmt.Fprintf(&b, "   Safety: %s\n", a.Safety)
		}
	}

	return b.String()
}

// FormatSiteReport renders a field report as human-readable text.
func FormatSiteReport(r model.SiteReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Site Report: lead %s\n\n", orDash(r.LeadID))
	fmt.Fprintf(&b, "Readiness: %d%%\n", r.ReadinessScore)
	fmt.Fprintf(&b, "System size: %.1f kW\n", r.Sizing.SystemSizeKW)
	fmt.Fprintf(&b, "Annual production: %.0f kWh\n", r.Sizing.AnnualProductionKWh)
	fmt.Fprintf(&b, "Cost: €%d-€%d\n", r.Economics.CostLowEUR, r.Economics.CostHighEUR)
	fmt.Fprintf(&b, "Annual savings: €%d\n", r.Economics.AnnualSavingsEUR)
	fmt.Fprintf(&b, "Payback: %.1f years\n", r.Economics.PaybackYears)
	fmt.Fprintf(&b, "CO2 saved: %.1f t/year\n\n", r.Economics.CO2TonsPerYear)

	b.WriteString("## Suggestions\n")
	for _, s := range r.Suggestions {
		fmt.Fprintf(&b, "- %s (%s): %s\n", s.Title, s.When, s.Detail)
	}

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
