package alerts

import (
	"fmt"

	"adcalc/internal/modules/calculator"
	"adcalc/internal/modules/upc"
)

// Severity ranks how urgently an alert needs attention.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Alert is one triggered rule.
type Alert struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Rule thresholds. CTR and NTB are decimal ratios here, margins likewise.
const (
	lowROASThreshold       = 1.0
	nearBreakevenCeiling   = 0.10
	lowCTRThreshold        = 0.003
	highNTBThreshold       = 0.40
	concentrationThreshold = 0.50
)

// Evaluate runs every campaign and SKU rule and returns the triggered
// alerts, most severe first. Rules whose metrics are missing simply do not
// fire; absence of data is never an alert.
func Evaluate(metrics calculator.Metrics, skus []upc.Metrics) []Alert {
	var alerts []Alert
	alerts = append(alerts, campaignAlerts(metrics)...)
	alerts = append(alerts, skuAlerts(skus)...)

	ordered := make([]Alert, 0, len(alerts))
	for _, severity := range []Severity{SeverityCritical, SeverityWarning, SeverityInfo} {
		for _, a := range alerts {
			if a.Severity == severity {
				ordered = append(ordered, a)
			}
		}
	}
	return ordered
}

func campaignAlerts(m calculator.Metrics) []Alert {
	var alerts []Alert

	if m.ProfitAfterAds != nil && *m.ProfitAfterAds < 0 {
		alerts = append(alerts, Alert{
			Rule:     "negative_profit",
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("Campaign is losing $%.2f after ad spend", -*m.ProfitAfterAds),
		})
	}

	if m.ROAS != nil && m.BreakevenROAS != nil && *m.ROAS < *m.BreakevenROAS {
		alerts = append(alerts, Alert{
			Rule:     "roas_below_breakeven",
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("ROAS %.2f is below the %.2f break-even point", *m.ROAS, *m.BreakevenROAS),
		})
	}

	if m.ROAS != nil && *m.ROAS < lowROASThreshold {
		alerts = append(alerts, Alert{
			Rule:     "low_roas",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("ROAS %.2f returns less than the ad spend itself", *m.ROAS),
		})
	}

	if m.MarginAfterAdsPct != nil && *m.MarginAfterAdsPct >= 0 && *m.MarginAfterAdsPct < nearBreakevenCeiling {
		alerts = append(alerts, Alert{
			Rule:     "near_breakeven",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Margin after ads is only %.1f%%, close to break-even", *m.MarginAfterAdsPct*100),
		})
	}

	if m.CAC != nil && m.AOV != nil && *m.CAC > *m.AOV {
		alerts = append(alerts, Alert{
			Rule:     "high_cac",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Acquiring a customer costs $%.2f, more than the $%.2f average order", *m.CAC, *m.AOV),
		})
	}

	if m.CTR != nil && *m.CTR < lowCTRThreshold {
		alerts = append(alerts, Alert{
			Rule:     "low_ctr",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("CTR %.2f%% suggests weak ad creative or targeting", *m.CTR*100),
		})
	}

	if m.NTBSales != nil && m.RepeatSales != nil {
		total := *m.NTBSales + *m.RepeatSales
		if total > 0 && *m.NTBSales/total > highNTBThreshold {
			alerts = append(alerts, Alert{
				Rule:     "high_ntb",
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("%.0f%% of sales are new-to-brand, a strong acquisition signal", *m.NTBSales/total*100),
			})
		}
	}

	return alerts
}

func skuAlerts(skus []upc.Metrics) []Alert {
	if len(skus) == 0 {
		return nil
	}

	var alerts []Alert

	var unprofitable, zeroSales int
	var totalProfit, topProfit float64
	topName := ""
	for _, s := range skus {
		if s.ProfitAfterAds < 0 {
			unprofitable++
		}
		if s.AttributedSales == 0 && s.AdSpend > 0 {
			zeroSales++
		}
		if s.ProfitAfterAds > 0 {
			totalProfit += s.ProfitAfterAds
			if s.ProfitAfterAds > topProfit {
				topProfit = s.ProfitAfterAds
				topName = s.ProductName
			}
		}
	}

	if unprofitable > 0 {
		alerts = append(alerts, Alert{
			Rule:     "unprofitable_skus",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d of %d SKUs are losing money after ads", unprofitable, len(skus)),
		})
	}

	if zeroSales > 0 {
		alerts = append(alerts, Alert{
			Rule:     "zero_sales_skus",
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d SKUs have ad spend but no attributed sales", zeroSales),
		})
	}

	if len(skus) > 1 && totalProfit > 0 && topProfit/totalProfit > concentrationThreshold {
		alerts = append(alerts, Alert{
			Rule:     "sku_concentration",
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("%s drives %.0f%% of SKU profit", topName, topProfit/totalProfit*100),
		})
	}

	return alerts
}

// HasCritical reports whether any alert is critical.
func HasCritical(alerts []Alert) bool {
	for _, a := range alerts {
		if a.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
