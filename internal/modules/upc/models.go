package upc

// Data holds raw per-SKU figures, typically imported from an Ads Manager
// CSV export. Numeric fields are optional at the boundary; unlike the
// campaign engine, this engine zero-fills absent values so rows stay
// summable.
type Data struct {
	ID                         string   `json:"id"`
	UPCCode                    string   `json:"upc_code"`
	ProductName                string   `json:"product_name"`
	UnitsSold                  *float64 `json:"units_sold"`
	AdSpend                    *float64 `json:"ad_spend"`
	AttributedSales            *float64 `json:"attributed_sales"`
	GrossMarginPercent         *float64 `json:"gross_margin_percent"`
	InstacartCommissionPercent *float64 `json:"instacart_commission_percent"`
}

// Metrics is the derived record for one SKU. Input totals are zero-filled
// so they aggregate cleanly; ratio fields stay nullable for degenerate
// divisors.
type Metrics struct {
	ID          string `json:"id"`
	UPCCode     string `json:"upc_code"`
	ProductName string `json:"product_name"`

	// Zero-filled input totals. GrossMarginPercent here is already
	// normalized to decimal form, unlike the ambiguous boundary value.
	UnitsSold          float64 `json:"units_sold"`
	AdSpend            float64 `json:"ad_spend"`
	AttributedSales    float64 `json:"attributed_sales"`
	GrossMarginPercent float64 `json:"gross_margin_percent"`

	ROAS                       *float64 `json:"roas"`
	GrossMarginDollars         float64  `json:"gross_margin_dollars"`
	InstacartCommissionDollars float64  `json:"instacart_commission_dollars"`
	ProfitAfterAds             float64  `json:"profit_after_ads"`
	MarginPercent              *float64 `json:"margin_percent"`
	RevenuePerUnit             *float64 `json:"revenue_per_unit"`
	CostPerUnit                *float64 `json:"cost_per_unit"`
	ProfitPerUnit              *float64 `json:"profit_per_unit"`
}

// Totals is the single-pass aggregate over a set of SKU metrics. Portfolio
// ROAS and margin over these totals are the caller's job, guarding the
// zero divisors.
type Totals struct {
	TotalAdSpend         float64 `json:"total_ad_spend"`
	TotalAttributedSales float64 `json:"total_attributed_sales"`
	TotalUnits           float64 `json:"total_units"`
	TotalGrossMargin     float64 `json:"total_gross_margin"`
	TotalCommission      float64 `json:"total_commission"`
	TotalProfit          float64 `json:"total_profit"`
}

// SortKey names a sortable SKU metric.
type SortKey string

const (
	SortByROAS   SortKey = "roas"
	SortByProfit SortKey = "profit"
	SortBySales  SortKey = "sales"
	SortByUnits  SortKey = "units"
	SortByMargin SortKey = "margin"
)
