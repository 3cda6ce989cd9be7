package calculator

import (
	"math"

	"adcalc/pkg/formulas"
)

// EffectiveMargin calculates the margin left after other operating costs.
// Effective Margin = Gross Margin % - Other Costs %, clamped to [0, 1].
// Both inputs are accepted in ambiguous percentage format.
func EffectiveMargin(grossMarginPct, otherCostsPct *float64) *float64 {
	grossMargin := formulas.NormalizePercent(grossMarginPct)
	otherCosts := formulas.NormalizePercent(otherCostsPct)

	if grossMargin == nil {
		return nil
	}

	effective := *grossMargin - formulas.OrZero(otherCosts)
	return formulas.Ptr(math.Max(0, math.Min(1, effective)))
}

// ROAS calculates Return on Ad Spend.
// ROAS = Attributed Sales / Ad Spend
func ROAS(attributedSales, adSpend *float64) *float64 {
	if attributedSales == nil || adSpend == nil || *adSpend == 0 {
		return nil
	}
	return formulas.Ptr(*attributedSales / *adSpend)
}

// InvestmentRate calculates ad spend as a share of sales.
// Investment Rate = Ad Spend / Attributed Sales
func InvestmentRate(adSpend, attributedSales *float64) *float64 {
	if adSpend == nil || attributedSales == nil || *attributedSales == 0 {
		return nil
	}
	return formulas.Ptr(*adSpend / *attributedSales)
}

// GrossMarginDollars calculates margin in dollars.
// Gross Margin $ = Attributed Sales x Effective Margin %
func GrossMarginDollars(attributedSales, effectiveMarginPct *float64) *float64 {
	if attributedSales == nil || effectiveMarginPct == nil {
		return nil
	}
	return formulas.Ptr(*attributedSales * *effectiveMarginPct)
}

// ProfitAfterAds calculates profit after ad and promo spend.
// Profit = Gross Margin $ - Ad Spend - Promo Costs (promo defaults to 0)
func ProfitAfterAds(grossMarginDollars, adSpend, promoCosts *float64) *float64 {
	if grossMarginDollars == nil || adSpend == nil {
		return nil
	}
	return formulas.Ptr(*grossMarginDollars - *adSpend - formulas.OrZero(promoCosts))
}

// MarginAfterAds calculates profit after ads as a share of sales.
func MarginAfterAds(profitAfterAds, attributedSales *float64) *float64 {
	if profitAfterAds == nil || attributedSales == nil || *attributedSales == 0 {
		return nil
	}
	return formulas.Ptr(*profitAfterAds / *attributedSales)
}

// BreakevenROAS calculates the ROAS at which ad spend exactly consumes margin.
// Breakeven ROAS = 1 / Effective Margin %
func BreakevenROAS(effectiveMarginPct *float64) *float64 {
	if effectiveMarginPct == nil || *effectiveMarginPct == 0 {
		return nil
	}
	return formulas.Ptr(1 / *effectiveMarginPct)
}

// MarginPerDollarSpend calculates margin dollars generated per ad dollar.
func MarginPerDollarSpend(grossMarginDollars, adSpend *float64) *float64 {
	if grossMarginDollars == nil || adSpend == nil || *adSpend == 0 {
		return nil
	}
	return formulas.Ptr(*grossMarginDollars / *adSpend)
}

// perUnit divides a total by units sold, nil when units are missing or zero.
func perUnit(total, unitsSold *float64) *float64 {
	if total == nil || unitsSold == nil || *unitsSold == 0 {
		return nil
	}
	return formulas.Ptr(*total / *unitsSold)
}

// CostPerUnit calculates ad spend per unit sold.
func CostPerUnit(adSpend, unitsSold *float64) *float64 {
	return perUnit(adSpend, unitsSold)
}

// RevenuePerUnit calculates attributed sales per unit sold.
func RevenuePerUnit(attributedSales, unitsSold *float64) *float64 {
	return perUnit(attributedSales, unitsSold)
}

// ProfitPerUnitAfterAds calculates profit after ads per unit sold.
func ProfitPerUnitAfterAds(profitAfterAds, unitsSold *float64) *float64 {
	return perUnit(profitAfterAds, unitsSold)
}

// MarginPerUnit calculates gross margin dollars per unit sold.
func MarginPerUnit(grossMarginDollars, unitsSold *float64) *float64 {
	return perUnit(grossMarginDollars, unitsSold)
}

// TotalCosts calculates all costs attributable to the campaign.
// Total Costs = Ad Spend + Commission $ + Promo Costs + Other Costs $
// where Other Costs $ = Attributed Sales x Other Costs %.
func TotalCosts(adSpend, commissionDollars, promoCosts, attributedSales, otherCostsPct *float64) *float64 {
	if adSpend == nil {
		return nil
	}

	otherCostsDollars := 0.0
	if attributedSales != nil && otherCostsPct != nil {
		if normalized := formulas.NormalizePercent(otherCostsPct); normalized != nil {
			otherCostsDollars = *attributedSales * *normalized
		}
	}

	return formulas.Ptr(*adSpend + formulas.OrZero(commissionDollars) + formulas.OrZero(promoCosts) + otherCostsDollars)
}

// NetProfit calculates profit after every cost line.
// Net Profit = Gross Margin $ - Ad Spend - Commission $ - Promo Costs
func NetProfit(grossMarginDollars, adSpend, commissionDollars, promoCosts *float64) *float64 {
	if grossMarginDollars == nil || adSpend == nil {
		return nil
	}
	return formulas.Ptr(*grossMarginDollars - *adSpend - formulas.OrZero(commissionDollars) - formulas.OrZero(promoCosts))
}

// ROASVsTarget calculates the gap between actual and target ROAS.
func ROASVsTarget(actualROAS, targetROAS *float64) *float64 {
	if actualROAS == nil || targetROAS == nil {
		return nil
	}
	return formulas.Ptr(*actualROAS - *targetROAS)
}

// roasTargetTolerance is the band around the target counted as on-target.
const roasTargetTolerance = 0.1

// PerformanceFor classifies actual ROAS against the target.
func PerformanceFor(actualROAS, targetROAS *float64) PerformanceIndicator {
	if targetROAS == nil || actualROAS == nil {
		return PerformanceNoTarget
	}

	difference := *actualROAS - *targetROAS
	if math.Abs(difference) <= roasTargetTolerance {
		return PerformanceOnTarget
	}
	if difference > 0 {
		return PerformanceAbove
	}
	return PerformanceBelow
}

// CTR calculates Click-Through Rate as a decimal.
// CTR = Clicks / Impressions
func CTR(clicks, impressions *float64) *float64 {
	if clicks == nil || impressions == nil || *impressions == 0 {
		return nil
	}
	return formulas.Ptr(*clicks / *impressions)
}

// CPC calculates Cost Per Click.
func CPC(adSpend, clicks *float64) *float64 {
	if adSpend == nil || clicks == nil || *clicks == 0 {
		return nil
	}
	return formulas.Ptr(*adSpend / *clicks)
}

// CPM calculates Cost Per Thousand Impressions.
// CPM = (Ad Spend / Impressions) x 1000
func CPM(adSpend, impressions *float64) *float64 {
	if adSpend == nil || impressions == nil || *impressions == 0 {
		return nil
	}
	return formulas.Ptr(*adSpend / *impressions * 1000)
}

// ConversionRate calculates the click-to-order rate as a decimal.
func ConversionRate(orders, clicks *float64) *float64 {
	if orders == nil || clicks == nil || *clicks == 0 {
		return nil
	}
	return formulas.Ptr(*orders / *clicks)
}

// CPO calculates Cost Per Order.
func CPO(adSpend, orders *float64) *float64 {
	if adSpend == nil || orders == nil || *orders == 0 {
		return nil
	}
	return formulas.Ptr(*adSpend / *orders)
}

// AOV calculates Average Order Value.
func AOV(attributedSales, orders *float64) *float64 {
	if attributedSales == nil || orders == nil || *orders == 0 {
		return nil
	}
	return formulas.Ptr(*attributedSales / *orders)
}

// UnitsPerOrder calculates average units per order.
func UnitsPerOrder(unitsSold, orders *float64) *float64 {
	if unitsSold == nil || orders == nil || *orders == 0 {
		return nil
	}
	return formulas.Ptr(*unitsSold / *orders)
}

// NTBSales calculates the sales dollars attributed to new-to-brand customers.
// NTB Sales = Attributed Sales x NTB %
func NTBSales(attributedSales, ntbPct *float64) *float64 {
	if attributedSales == nil || ntbPct == nil {
		return nil
	}
	normalized := formulas.NormalizePercent(ntbPct)
	if normalized == nil {
		return nil
	}
	return formulas.Ptr(*attributedSales * *normalized)
}

// RepeatSales calculates sales from returning customers.
// Repeat Sales = Attributed Sales - NTB Sales
func RepeatSales(attributedSales, ntbSales *float64) *float64 {
	if attributedSales == nil || ntbSales == nil {
		return nil
	}
	return formulas.Ptr(*attributedSales - *ntbSales)
}

// CAC calculates the share of ad spend that acquired new customers.
// CAC = Ad Spend x NTB %
func CAC(adSpend, ntbPct *float64) *float64 {
	if adSpend == nil || ntbPct == nil {
		return nil
	}
	normalized := formulas.NormalizePercent(ntbPct)
	if normalized == nil {
		return nil
	}
	return formulas.Ptr(*adSpend * *normalized)
}

// CACPerCustomer calculates acquisition spend per new customer.
func CACPerCustomer(adSpend, ntbPct, newCustomers *float64) *float64 {
	cac := CAC(adSpend, ntbPct)
	if cac == nil || newCustomers == nil || *newCustomers == 0 {
		return nil
	}
	return formulas.Ptr(*cac / *newCustomers)
}

// RepeatCustomerPercent calculates the returning-customer share.
// Repeat % = 1 - NTB %
func RepeatCustomerPercent(ntbPct *float64) *float64 {
	normalized := formulas.NormalizePercent(ntbPct)
	if normalized == nil {
		return nil
	}
	return formulas.Ptr(1 - *normalized)
}

// Compute derives the full metrics record from one input set. Pure and
// deterministic: the same inputs always produce a deep-equal record, and
// every edge case resolves to nil rather than an error.
func Compute(inputs Inputs) Metrics {
	effectiveMargin := EffectiveMargin(inputs.GrossMarginPercent, inputs.OtherCostsPercent)
	grossMarginDollars := GrossMarginDollars(inputs.AttributedSales, effectiveMargin)

	// Instacart charges no commission at the campaign level. This is a
	// business rule, not missing data: the field stays nil and the cost
	// formulas treat it as zero.
	var commissionDollars *float64

	profitAfterAds := ProfitAfterAds(grossMarginDollars, inputs.AdSpend, inputs.PromoCosts)
	actualROAS := ROAS(inputs.AttributedSales, inputs.AdSpend)
	ntbSales := NTBSales(inputs.AttributedSales, inputs.NTBPercent)

	return Metrics{
		ROAS:                 actualROAS,
		InvestmentRate:       InvestmentRate(inputs.AdSpend, inputs.AttributedSales),
		EffectiveMarginPct:   effectiveMargin,
		GrossMarginDollars:   grossMarginDollars,
		ProfitAfterAds:       profitAfterAds,
		MarginAfterAdsPct:    MarginAfterAds(profitAfterAds, inputs.AttributedSales),
		BreakevenROAS:        BreakevenROAS(effectiveMargin),
		MarginPerDollarSpend: MarginPerDollarSpend(grossMarginDollars, inputs.AdSpend),

		CostPerUnit:           CostPerUnit(inputs.AdSpend, inputs.UnitsSold),
		RevenuePerUnit:        RevenuePerUnit(inputs.AttributedSales, inputs.UnitsSold),
		ProfitPerUnitAfterAds: ProfitPerUnitAfterAds(profitAfterAds, inputs.UnitsSold),
		MarginPerUnit:         MarginPerUnit(grossMarginDollars, inputs.UnitsSold),

		InstacartCommissionDollars: commissionDollars,
		TotalCosts:                 TotalCosts(inputs.AdSpend, commissionDollars, inputs.PromoCosts, inputs.AttributedSales, inputs.OtherCostsPercent),
		NetProfit:                  NetProfit(grossMarginDollars, inputs.AdSpend, commissionDollars, inputs.PromoCosts),

		ROASVsTarget: ROASVsTarget(actualROAS, inputs.TargetROAS),
		Performance:  PerformanceFor(actualROAS, inputs.TargetROAS),

		CTR:            CTR(inputs.Clicks, inputs.Impressions),
		CPC:            CPC(inputs.AdSpend, inputs.Clicks),
		CPM:            CPM(inputs.AdSpend, inputs.Impressions),
		ConversionRate: ConversionRate(inputs.Orders, inputs.Clicks),
		CPO:            CPO(inputs.AdSpend, inputs.Orders),
		AOV:            AOV(inputs.AttributedSales, inputs.Orders),
		UnitsPerOrder:  UnitsPerOrder(inputs.UnitsSold, inputs.Orders),

		NTBSales:          ntbSales,
		RepeatSales:       RepeatSales(inputs.AttributedSales, ntbSales),
		CAC:               CAC(inputs.AdSpend, inputs.NTBPercent),
		RepeatCustomerPct: RepeatCustomerPercent(inputs.NTBPercent),
	}
}

// StatusFor buckets margin-after-ads into a profitability status for display.
func StatusFor(marginAfterAdsPct *float64) ProfitabilityStatus {
	if marginAfterAdsPct == nil {
		return StatusWaiting
	}
	if *marginAfterAdsPct < 0 {
		return StatusUnprofitable
	}
	if *marginAfterAdsPct <= 0.1 {
		return StatusNearBreakeven
	}
	return StatusProfitable
}
