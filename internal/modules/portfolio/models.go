package portfolio

import (
	"adcalc/internal/modules/calculator"
)

// Product is a named campaign with one input snapshot and its derived
// metrics. Metrics are recomputed whenever inputs change; the engine never
// refreshes them behind the caller's back.
type Product struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Inputs  calculator.Inputs  `json:"inputs"`
	Metrics calculator.Metrics `json:"metrics"`
}

// Metrics is the portfolio-level aggregate over a set of products.
// Totals are plain sums; ratios are nil when their divisor is zero.
type Metrics struct {
	TotalAdSpend         float64  `json:"total_ad_spend"`
	TotalAttributedSales float64  `json:"total_attributed_sales"`
	TotalUnits           float64  `json:"total_units"`
	TotalOrders          float64  `json:"total_orders"`
	TotalProfit          float64  `json:"total_profit"`
	PortfolioROAS        *float64 `json:"portfolio_roas"`
	PortfolioMarginPct   *float64 `json:"portfolio_margin_percent"`
	AverageCPC           *float64 `json:"average_cpc"`
	AverageAOV           *float64 `json:"average_aov"`
	WeightedNTBPct       *float64 `json:"weighted_ntb_percent"`
	ProductCount         int      `json:"product_count"`
}

// SortKey names a sortable product metric.
type SortKey string

const (
	SortByROAS   SortKey = "roas"
	SortByProfit SortKey = "profit"
	SortBySales  SortKey = "sales"
	SortBySpend  SortKey = "spend"
	SortByNTB    SortKey = "ntb"
	SortByUnits  SortKey = "units"
)

// Filter describes inclusive bounds for product filtering. Nil bounds are
// ignored. Profitable filters on profit strictly greater than zero.
type Filter struct {
	MinROAS    *float64 `json:"min_roas"`
	MaxROAS    *float64 `json:"max_roas"`
	MinProfit  *float64 `json:"min_profit"`
	MaxProfit  *float64 `json:"max_profit"`
	Profitable *bool    `json:"profitable"`
}
