package calculator

// Inputs holds the raw campaign-level figures entered by the user.
// Every numeric field is three-state: a value, or nil meaning "not entered".
// Absence propagates through the derived formulas as nil, never as zero.
// Percentage fields are ambiguous-format at this boundary (40 or 0.4 both
// mean 40%) and are normalized exactly once inside the engine.
type Inputs struct {
	AdSpend                    *float64 `json:"ad_spend"`
	AttributedSales            *float64 `json:"attributed_sales"`
	GrossMarginPercent         *float64 `json:"gross_margin_percent"`
	OtherCostsPercent          *float64 `json:"other_costs_percent"`
	PromoCosts                 *float64 `json:"promo_costs"`
	UnitsSold                  *float64 `json:"units_sold"`
	InstacartCommissionPercent *float64 `json:"instacart_commission_percent"`
	TargetROAS                 *float64 `json:"target_roas"`
	Impressions                *float64 `json:"impressions"`
	Clicks                     *float64 `json:"clicks"`
	Orders                     *float64 `json:"orders"`
	NTBPercent                 *float64 `json:"ntb_percent"`
}

// PerformanceIndicator classifies actual ROAS against the target.
type PerformanceIndicator string

const (
	PerformanceAbove    PerformanceIndicator = "above"
	PerformanceBelow    PerformanceIndicator = "below"
	PerformanceOnTarget PerformanceIndicator = "on-target"
	PerformanceNoTarget PerformanceIndicator = "no-target"
)

// ProfitabilityStatus buckets the margin-after-ads percentage.
type ProfitabilityStatus string

const (
	StatusWaiting       ProfitabilityStatus = "waiting"
	StatusUnprofitable  ProfitabilityStatus = "unprofitable"
	StatusNearBreakeven ProfitabilityStatus = "near-breakeven"
	StatusProfitable    ProfitabilityStatus = "profitable"
)

// Metrics is the complete derived record for one campaign input set.
// Each field is independently nullable: nil means at least one required
// input was missing or a required divisor was zero. The engine never
// produces NaN or Inf.
type Metrics struct {
	ROAS                 *float64 `json:"roas"`
	InvestmentRate       *float64 `json:"investment_rate"`
	EffectiveMarginPct   *float64 `json:"effective_margin_percent"`
	GrossMarginDollars   *float64 `json:"gross_margin_dollars"`
	ProfitAfterAds       *float64 `json:"profit_after_ads"`
	MarginAfterAdsPct    *float64 `json:"margin_after_ads_percent"`
	BreakevenROAS        *float64 `json:"breakeven_roas"`
	MarginPerDollarSpend *float64 `json:"margin_per_dollar_spend"`

	// Unit-level metrics
	CostPerUnit           *float64 `json:"cost_per_unit"`
	RevenuePerUnit        *float64 `json:"revenue_per_unit"`
	ProfitPerUnitAfterAds *float64 `json:"profit_per_unit_after_ads"`
	MarginPerUnit         *float64 `json:"margin_per_unit"`

	// Cost breakdown
	InstacartCommissionDollars *float64 `json:"instacart_commission_dollars"`
	TotalCosts                 *float64 `json:"total_costs"`
	NetProfit                  *float64 `json:"net_profit"`

	// Target comparison
	ROASVsTarget *float64             `json:"roas_vs_target"`
	Performance  PerformanceIndicator `json:"performance_indicator"`

	// Engagement metrics
	CTR            *float64 `json:"ctr"`
	CPC            *float64 `json:"cpc"`
	CPM            *float64 `json:"cpm"`
	ConversionRate *float64 `json:"conversion_rate"`
	CPO            *float64 `json:"cpo"`
	AOV            *float64 `json:"aov"`
	UnitsPerOrder  *float64 `json:"units_per_order"`

	// Customer acquisition metrics
	NTBSales          *float64 `json:"ntb_sales"`
	RepeatSales       *float64 `json:"repeat_sales"`
	CAC               *float64 `json:"cac"`
	RepeatCustomerPct *float64 `json:"repeat_customer_percent"`
}

// Clone returns a deep copy of the inputs. Snapshots rely on this to stay
// immutable when the live record is edited afterwards.
func (in Inputs) Clone() Inputs {
	out := in
	out.AdSpend = clonePtr(in.AdSpend)
	out.AttributedSales = clonePtr(in.AttributedSales)
	out.GrossMarginPercent = clonePtr(in.GrossMarginPercent)
	out.OtherCostsPercent = clonePtr(in.OtherCostsPercent)
	out.PromoCosts = clonePtr(in.PromoCosts)
	out.UnitsSold = clonePtr(in.UnitsSold)
	out.InstacartCommissionPercent = clonePtr(in.InstacartCommissionPercent)
	out.TargetROAS = clonePtr(in.TargetROAS)
	out.Impressions = clonePtr(in.Impressions)
	out.Clicks = clonePtr(in.Clicks)
	out.Orders = clonePtr(in.Orders)
	out.NTBPercent = clonePtr(in.NTBPercent)
	return out
}

// Clone returns a deep copy of the metrics record.
func (m Metrics) Clone() Metrics {
	out := m
	out.ROAS = clonePtr(m.ROAS)
	out.InvestmentRate = clonePtr(m.InvestmentRate)
	out.EffectiveMarginPct = clonePtr(m.EffectiveMarginPct)
	out.GrossMarginDollars = clonePtr(m.GrossMarginDollars)
	out.ProfitAfterAds = clonePtr(m.ProfitAfterAds)
	out.MarginAfterAdsPct = clonePtr(m.MarginAfterAdsPct)
	out.BreakevenROAS = clonePtr(m.BreakevenROAS)
	out.MarginPerDollarSpend = clonePtr(m.MarginPerDollarSpend)
	out.CostPerUnit = clonePtr(m.CostPerUnit)
	out.RevenuePerUnit = clonePtr(m.RevenuePerUnit)
	out.ProfitPerUnitAfterAds = clonePtr(m.ProfitPerUnitAfterAds)
	out.MarginPerUnit = clonePtr(m.MarginPerUnit)
	out.InstacartCommissionDollars = clonePtr(m.InstacartCommissionDollars)
	out.TotalCosts = clonePtr(m.TotalCosts)
	out.NetProfit = clonePtr(m.NetProfit)
	out.ROASVsTarget = clonePtr(m.ROASVsTarget)
	out.CTR = clonePtr(m.CTR)
	out.CPC = clonePtr(m.CPC)
	out.CPM = clonePtr(m.CPM)
	out.ConversionRate = clonePtr(m.ConversionRate)
	out.CPO = clonePtr(m.CPO)
	out.AOV = clonePtr(m.AOV)
	out.UnitsPerOrder = clonePtr(m.UnitsPerOrder)
	out.NTBSales = clonePtr(m.NTBSales)
	out.RepeatSales = clonePtr(m.RepeatSales)
	out.CAC = clonePtr(m.CAC)
	out.RepeatCustomerPct = clonePtr(m.RepeatCustomerPct)
	return out
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
