package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"adcalc/internal/modules/calculator"
	"adcalc/internal/modules/upc"
)

// WriteCampaignSummary writes a two-column metric/value CSV of a campaign.
// Missing metrics render as empty cells rather than zeros, so a reader can
// tell "not computed" from an actual zero.
func WriteCampaignSummary(w io.Writer, inputs calculator.Inputs, metrics calculator.Metrics) error {
	cw := csv.NewWriter(w)

	rows := [][2]interface{}{
		{"Ad Spend", inputs.AdSpend},
		{"Attributed Sales", inputs.AttributedSales},
		{"Units Sold", inputs.UnitsSold},
		{"ROAS", metrics.ROAS},
		{"Breakeven ROAS", metrics.BreakevenROAS},
		{"Effective Margin %", asPercent(metrics.EffectiveMarginPct)},
		{"Gross Margin $", metrics.GrossMarginDollars},
		{"Profit After Ads", metrics.ProfitAfterAds},
		{"Margin After Ads %", asPercent(metrics.MarginAfterAdsPct)},
		{"Total Costs", metrics.TotalCosts},
		{"Net Profit", metrics.NetProfit},
		{"CTR %", asPercent(metrics.CTR)},
		{"CPC", metrics.CPC},
		{"CPM", metrics.CPM},
		{"Conversion Rate %", asPercent(metrics.ConversionRate)},
		{"AOV", metrics.AOV},
		{"CAC", metrics.CAC},
		{"NTB Sales", metrics.NTBSales},
	}

	if err := cw.Write([]string{"metric", "value"}); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row[0].(string), cell(row[1])}); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteUPCTable writes one row per SKU plus a trailing totals row.
func WriteUPCTable(w io.Writer, metrics []upc.Metrics) error {
	cw := csv.NewWriter(w)

	header := []string{
		"upc", "product", "units", "ad_spend", "sales", "roas",
		"gross_margin", "commission", "profit", "margin_percent",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write upc header: %w", err)
	}

	for _, m := range metrics {
		row := []string{
			m.UPCCode,
			m.ProductName,
			formatFloat(m.UnitsSold),
			formatFloat(m.AdSpend),
			formatFloat(m.AttributedSales),
			cell(m.ROAS),
			formatFloat(m.GrossMarginDollars),
			formatFloat(m.InstacartCommissionDollars),
			formatFloat(m.ProfitAfterAds),
			cell(asPercent(m.MarginPercent)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write upc row: %w", err)
		}
	}

	totals := upc.Aggregate(metrics)
	var totalROAS *float64
	if totals.TotalAdSpend > 0 {
		v := totals.TotalAttributedSales / totals.TotalAdSpend
		totalROAS = &v
	}
	totalsRow := []string{
		"TOTAL",
		"",
		formatFloat(totals.TotalUnits),
		formatFloat(totals.TotalAdSpend),
		formatFloat(totals.TotalAttributedSales),
		cell(totalROAS),
		formatFloat(totals.TotalGrossMargin),
		formatFloat(totals.TotalCommission),
		formatFloat(totals.TotalProfit),
		cell(asPercent(upc.WeightedMargin(metrics))),
	}
	if err := cw.Write(totalsRow); err != nil {
		return fmt.Errorf("failed to write totals row: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// asPercent scales a decimal ratio to a whole percentage for display.
func asPercent(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p * 100
	return &v
}

func cell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case *float64:
		if t == nil {
			return ""
		}
		return formatFloat(*t)
	case float64:
		return formatFloat(t)
	case string:
		return t
	}
	return fmt.Sprintf("%v", v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
