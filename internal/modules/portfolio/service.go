package portfolio

import (
	"sort"

	"adcalc/pkg/formulas"
)

// Aggregate rolls a product collection up into portfolio metrics. Totals
// come from raw inputs, profit and NTB sales from the precomputed product
// metrics; nothing is recomputed here. An empty collection yields zero
// totals, nil ratios and a product count of 0.
func Aggregate(products []Product) Metrics {
	if len(products) == 0 {
		return Metrics{}
	}

	var totalAdSpend, totalSales, totalUnits, totalOrders, totalProfit float64
	var totalClicks, totalNTBSales float64

	for _, p := range products {
		totalAdSpend += formulas.OrZero(p.Inputs.AdSpend)
		totalSales += formulas.OrZero(p.Inputs.AttributedSales)
		totalUnits += formulas.OrZero(p.Inputs.UnitsSold)
		totalOrders += formulas.OrZero(p.Inputs.Orders)
		totalProfit += formulas.OrZero(p.Metrics.ProfitAfterAds)
		totalClicks += formulas.OrZero(p.Inputs.Clicks)
		totalNTBSales += formulas.OrZero(p.Metrics.NTBSales)
	}

	m := Metrics{
		TotalAdSpend:         totalAdSpend,
		TotalAttributedSales: totalSales,
		TotalUnits:           totalUnits,
		TotalOrders:          totalOrders,
		TotalProfit:          totalProfit,
		ProductCount:         len(products),
	}

	if totalAdSpend > 0 {
		m.PortfolioROAS = formulas.Ptr(totalSales / totalAdSpend)
	}
	if totalSales > 0 {
		m.PortfolioMarginPct = formulas.Ptr(totalProfit / totalSales)
		m.WeightedNTBPct = formulas.Ptr(totalNTBSales / totalSales)
	}
	if totalClicks > 0 {
		m.AverageCPC = formulas.Ptr(totalAdSpend / totalClicks)
	}
	if totalOrders > 0 {
		m.AverageAOV = formulas.Ptr(totalSales / totalOrders)
	}

	return m
}

// SortProducts returns a new slice ordered by the given key. Missing metric
// values compare as 0; the underlying products are never mutated.
func SortProducts(products []Product, key SortKey, descending bool) []Product {
	sorted := make([]Product, len(products))
	copy(sorted, products)

	value := func(p Product) float64 {
		switch key {
		case SortByROAS:
			return formulas.OrZero(p.Metrics.ROAS)
		case SortByProfit:
			return formulas.OrZero(p.Metrics.ProfitAfterAds)
		case SortBySales:
			return formulas.OrZero(p.Inputs.AttributedSales)
		case SortBySpend:
			return formulas.OrZero(p.Inputs.AdSpend)
		case SortByNTB:
			return formulas.OrZero(p.Metrics.NTBSales)
		case SortByUnits:
			return formulas.OrZero(p.Inputs.UnitsSold)
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

// TopPerformers returns the n best products by the given key.
func TopPerformers(products []Product, key SortKey, n int) []Product {
	sorted := SortProducts(products, key, true)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// BottomPerformers returns the n worst products by the given key.
func BottomPerformers(products []Product, key SortKey, n int) []Product {
	sorted := SortProducts(products, key, false)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// FilterProducts returns products matching every bound in the filter.
func FilterProducts(products []Product, filter Filter) []Product {
	var matched []Product
	for _, p := range products {
		roas := formulas.OrZero(p.Metrics.ROAS)
		profit := formulas.OrZero(p.Metrics.ProfitAfterAds)

		if filter.MinROAS != nil && roas < *filter.MinROAS {
			continue
		}
		if filter.MaxROAS != nil && roas > *filter.MaxROAS {
			continue
		}
		if filter.MinProfit != nil && profit < *filter.MinProfit {
			continue
		}
		if filter.MaxProfit != nil && profit > *filter.MaxProfit {
			continue
		}
		if filter.Profitable != nil && *filter.Profitable != (profit > 0) {
			continue
		}

		matched = append(matched, p)
	}
	return matched
}
