package planning

import (
	"adcalc/internal/modules/calculator"
	"adcalc/pkg/formulas"
)

// BreakEvenResult describes the campaign state at exactly break-even for a
// given ad spend.
type BreakEvenResult struct {
	AdSpend             float64  `json:"ad_spend"`
	BreakevenROAS       float64  `json:"breakeven_roas"`
	RequiredSales       float64  `json:"required_sales"`
	GrossMarginDollars  float64  `json:"gross_margin_dollars"`
	CommissionDollars   float64  `json:"commission_dollars"`
	ProfitAfterAds      float64  `json:"profit_after_ads"`
	ProfitMarginPercent float64  `json:"profit_margin_percent"`
	EffectiveMarginPct  *float64 `json:"effective_margin_pct"`
}

// Scenario is one what-if outcome: campaign metrics recomputed with the ad
// spend scaled by a percentage.
type Scenario struct {
	ChangePercent float64            `json:"change_percent"`
	AdSpend       *float64           `json:"ad_spend"`
	Metrics       calculator.Metrics `json:"metrics"`
}

// BreakEvenROAS returns the ROAS at which a campaign neither makes nor loses
// money: 1 / effective margin. A net margin of zero or below can never break
// even, so the result is nil.
func BreakEvenROAS(grossMarginPct, commissionPct *float64) *float64 {
	margin := calculator.EffectiveMargin(grossMarginPct, commissionPct)
	if margin == nil || *margin <= 0 {
		return nil
	}
	return formulas.Ptr(1 / *margin)
}

// RequiredROAS returns the ROAS needed to hit a target profit margin. Each
// sales dollar yields the effective margin and costs 1/ROAS in ad spend, so
// the target is reachable only while it sits strictly below the effective
// margin; otherwise nil.
func RequiredROAS(grossMarginPct, commissionPct, targetProfitMarginPct *float64) *float64 {
	margin := calculator.EffectiveMargin(grossMarginPct, commissionPct)
	target := formulas.NormalizePercent(targetProfitMarginPct)
	if margin == nil || target == nil {
		return nil
	}

	headroom := *margin - *target
	if headroom <= 0 {
		return nil
	}
	return formulas.Ptr(1 / headroom)
}

// BreakEvenAnalysis works out the full break-even picture for a planned ad
// spend: the sales needed, and the margin, commission and (near-zero) profit
// at that point. Nil when the campaign cannot break even at all.
func BreakEvenAnalysis(adSpend float64, grossMarginPct, commissionPct *float64) *BreakEvenResult {
	if adSpend <= 0 {
		return nil
	}

	roas := BreakEvenROAS(grossMarginPct, commissionPct)
	if roas == nil {
		return nil
	}

	sales := adSpend * *roas
	grossMargin := sales * formulas.OrZero(formulas.NormalizePercent(grossMarginPct))
	commission := sales * formulas.OrZero(formulas.NormalizePercent(commissionPct))
	profit := grossMargin - commission - adSpend

	return &BreakEvenResult{
		AdSpend:             adSpend,
		BreakevenROAS:       *roas,
		RequiredSales:       sales,
		GrossMarginDollars:  grossMargin,
		CommissionDollars:   commission,
		ProfitAfterAds:      profit,
		ProfitMarginPercent: profit / sales,
		EffectiveMarginPct:  calculator.EffectiveMargin(grossMarginPct, commissionPct),
	}
}

// AdSpendScenario recomputes a campaign with its ad spend scaled by
// changePercent (e.g. -20 cuts spend by a fifth). All other inputs are held
// fixed, attributed sales included, so the scenario shows the direct spend
// effect rather than a demand model.
func AdSpendScenario(inputs calculator.Inputs, changePercent float64) Scenario {
	scenario := inputs.Clone()
	if scenario.AdSpend != nil {
		scenario.AdSpend = formulas.Ptr(*scenario.AdSpend * (1 + changePercent/100))
	}

	return Scenario{
		ChangePercent: changePercent,
		AdSpend:       scenario.AdSpend,
		Metrics:       calculator.Compute(scenario),
	}
}

// AdSpendScenarios runs AdSpendScenario over a ladder of changes.
func AdSpendScenarios(inputs calculator.Inputs, changePercents []float64) []Scenario {
	scenarios := make([]Scenario, len(changePercents))
	for i, change := range changePercents {
		scenarios[i] = AdSpendScenario(inputs, change)
	}
	return scenarios
}

// RequiredROASForMargin derives the ROAS needed for a target profit margin
// from already-computed campaign metrics. Nil when the target meets or
// exceeds the campaign's effective margin.
func RequiredROASForMargin(metrics calculator.Metrics, targetProfitMarginPct *float64) *float64 {
	target := formulas.NormalizePercent(targetProfitMarginPct)
	if metrics.EffectiveMarginPct == nil || target == nil {
		return nil
	}

	headroom := *metrics.EffectiveMarginPct - *target
	if headroom <= 0 {
		return nil
	}
	return formulas.Ptr(1 / headroom)
}
