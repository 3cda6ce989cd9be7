package upc

import (
	"sort"

	"adcalc/pkg/formulas"
)

// ComputeMetrics derives the metric record for a single SKU.
//
// This engine is total-oriented: absent numeric inputs become 0 so the
// resulting rows sum cleanly, in contrast to the campaign engine which
// preserves "unknown" as nil. Ratios still go nil on zero divisors.
func ComputeMetrics(data Data) Metrics {
	unitsSold := formulas.OrZero(data.UnitsSold)
	adSpend := formulas.OrZero(data.AdSpend)
	attributedSales := formulas.OrZero(data.AttributedSales)

	marginPct := formulas.OrZero(formulas.NormalizePercent(data.GrossMarginPercent))
	commissionPct := formulas.OrZero(formulas.NormalizePercent(data.InstacartCommissionPercent))

	var roas *float64
	if adSpend > 0 {
		roas = formulas.Ptr(attributedSales / adSpend)
	}

	grossMarginDollars := attributedSales * marginPct
	commissionDollars := attributedSales * commissionPct
	profitAfterAds := grossMarginDollars - commissionDollars - adSpend

	var marginPercent *float64
	if attributedSales > 0 {
		marginPercent = formulas.Ptr(profitAfterAds / attributedSales)
	}

	var revenuePerUnit, costPerUnit, profitPerUnit *float64
	if unitsSold > 0 {
		revenuePerUnit = formulas.Ptr(attributedSales / unitsSold)
		costPerUnit = formulas.Ptr(adSpend / unitsSold)
		profitPerUnit = formulas.Ptr(profitAfterAds / unitsSold)
	}

	return Metrics{
		ID:                         data.ID,
		UPCCode:                    data.UPCCode,
		ProductName:                data.ProductName,
		UnitsSold:                  unitsSold,
		AdSpend:                    adSpend,
		AttributedSales:            attributedSales,
		GrossMarginPercent:         marginPct,
		ROAS:                       roas,
		GrossMarginDollars:         grossMarginDollars,
		InstacartCommissionDollars: commissionDollars,
		ProfitAfterAds:             profitAfterAds,
		MarginPercent:              marginPercent,
		RevenuePerUnit:             revenuePerUnit,
		CostPerUnit:                costPerUnit,
		ProfitPerUnit:              profitPerUnit,
	}
}

// ComputeAllMetrics derives metrics for every SKU in order.
func ComputeAllMetrics(upcs []Data) []Metrics {
	metrics := make([]Metrics, len(upcs))
	for i, u := range upcs {
		metrics[i] = ComputeMetrics(u)
	}
	return metrics
}

// Aggregate sums SKU metrics into campaign-level totals in a single pass.
func Aggregate(metrics []Metrics) Totals {
	var totals Totals
	for _, m := range metrics {
		totals.TotalAdSpend += m.AdSpend
		totals.TotalAttributedSales += m.AttributedSales
		totals.TotalUnits += m.UnitsSold
		totals.TotalGrossMargin += m.GrossMarginDollars
		totals.TotalCommission += m.InstacartCommissionDollars
		totals.TotalProfit += m.ProfitAfterAds
	}
	return totals
}

// WeightedMargin calculates the sales-weighted average margin across SKUs.
// Nil when there are no sales to weight by.
func WeightedMargin(metrics []Metrics) *float64 {
	totalSales := 0.0
	for _, m := range metrics {
		totalSales += m.AttributedSales
	}
	if totalSales == 0 {
		return nil
	}

	weighted := 0.0
	for _, m := range metrics {
		weight := m.AttributedSales / totalSales
		weighted += formulas.OrZero(m.MarginPercent) * weight
	}
	return formulas.Ptr(weighted)
}

// SortMetrics returns a new slice ordered by the given key. Missing values
// compare as 0; the input slice is never mutated.
func SortMetrics(metrics []Metrics, key SortKey, descending bool) []Metrics {
	sorted := make([]Metrics, len(metrics))
	copy(sorted, metrics)

	value := func(m Metrics) float64 {
		switch key {
		case SortByROAS:
			return formulas.OrZero(m.ROAS)
		case SortByProfit:
			return m.ProfitAfterAds
		case SortBySales:
			return m.AttributedSales
		case SortByUnits:
			return m.UnitsSold
		case SortByMargin:
			return formulas.OrZero(m.MarginPercent)
		}
		return 0
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return value(sorted[i]) > value(sorted[j])
		}
		return value(sorted[i]) < value(sorted[j])
	})

	return sorted
}

// TopPerformers returns the n most profitable SKUs.
func TopPerformers(metrics []Metrics, n int) []Metrics {
	sorted := SortMetrics(metrics, SortByProfit, true)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Underperforming returns SKUs losing money after ads.
func Underperforming(metrics []Metrics) []Metrics {
	var losing []Metrics
	for _, m := range metrics {
		if m.ProfitAfterAds < 0 {
			losing = append(losing, m)
		}
	}
	return losing
}
