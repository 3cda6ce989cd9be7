package upc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adcalc/pkg/formulas"
)

func TestComputeMetrics(t *testing.T) {
	data := Data{
		ID:                         "u1",
		UPCCode:                    "00012345",
		ProductName:                "Sparkling Water 12pk",
		UnitsSold:                  formulas.Ptr(100),
		AdSpend:                    formulas.Ptr(500),
		AttributedSales:            formulas.Ptr(2000),
		GrossMarginPercent:         formulas.Ptr(40),
		InstacartCommissionPercent: formulas.Ptr(0),
	}

	m := ComputeMetrics(data)

	require.NotNil(t, m.ROAS)
	assert.InDelta(t, 4.0, *m.ROAS, 1e-9)
	assert.InDelta(t, 800, m.GrossMarginDollars, 1e-9)
	assert.InDelta(t, 0, m.InstacartCommissionDollars, 1e-9)
	assert.InDelta(t, 300, m.ProfitAfterAds, 1e-9)
	require.NotNil(t, m.MarginPercent)
	assert.InDelta(t, 0.15, *m.MarginPercent, 1e-9)
	require.NotNil(t, m.RevenuePerUnit)
	assert.InDelta(t, 20, *m.RevenuePerUnit, 1e-9)
	require.NotNil(t, m.CostPerUnit)
	assert.InDelta(t, 5, *m.CostPerUnit, 1e-9)
	require.NotNil(t, m.ProfitPerUnit)
	assert.InDelta(t, 3, *m.ProfitPerUnit, 1e-9)
}

func TestComputeMetricsWithCommission(t *testing.T) {
	data := Data{
		AdSpend:                    formulas.Ptr(100),
		AttributedSales:            formulas.Ptr(1000),
		GrossMarginPercent:         formulas.Ptr(0.4),
		InstacartCommissionPercent: formulas.Ptr(10),
	}

	m := ComputeMetrics(data)

	assert.InDelta(t, 400, m.GrossMarginDollars, 1e-9)
	assert.InDelta(t, 100, m.InstacartCommissionDollars, 1e-9)
	// 400 - 100 - 100
	assert.InDelta(t, 200, m.ProfitAfterAds, 1e-9)
}

func TestComputeMetricsZeroFillsMissingInputs(t *testing.T) {
	m := ComputeMetrics(Data{ID: "u2", UPCCode: "00099", ProductName: "Empty"})

	assert.Equal(t, 0.0, m.UnitsSold)
	assert.Equal(t, 0.0, m.AdSpend)
	assert.Equal(t, 0.0, m.AttributedSales)
	assert.Nil(t, m.ROAS)
	assert.Nil(t, m.MarginPercent)
	assert.Nil(t, m.CostPerUnit)
	assert.Nil(t, m.RevenuePerUnit)
	assert.Nil(t, m.ProfitPerUnit)
	assert.Equal(t, 0.0, m.ProfitAfterAds)
}

func TestComputeAllMetricsPreservesOrder(t *testing.T) {
	metrics := ComputeAllMetrics([]Data{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	})

	require.Len(t, metrics, 3)
	assert.Equal(t, "a", metrics[0].ID)
	assert.Equal(t, "c", metrics[2].ID)
}

func TestAggregate(t *testing.T) {
	metrics := ComputeAllMetrics([]Data{
		{
			AdSpend:            formulas.Ptr(500),
			AttributedSales:    formulas.Ptr(2000),
			UnitsSold:          formulas.Ptr(100),
			GrossMarginPercent: formulas.Ptr(40),
		},
		{
			AdSpend:            formulas.Ptr(250),
			AttributedSales:    formulas.Ptr(500),
			GrossMarginPercent: formulas.Ptr(20),
		},
	})

	totals := Aggregate(metrics)

	assert.InDelta(t, 750, totals.TotalAdSpend, 1e-9)
	assert.InDelta(t, 2500, totals.TotalAttributedSales, 1e-9)
	// Second SKU has no units but still contributes to the other sums
	assert.InDelta(t, 100, totals.TotalUnits, 1e-9)
	assert.InDelta(t, 900, totals.TotalGrossMargin, 1e-9)
	// (800-500) + (100-250)
	assert.InDelta(t, 150, totals.TotalProfit, 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate(nil)
	assert.Equal(t, Totals{}, totals)
}

func TestWeightedMargin(t *testing.T) {
	metrics := []Metrics{
		{AttributedSales: 3000, MarginPercent: formulas.Ptr(0.2)},
		{AttributedSales: 1000, MarginPercent: formulas.Ptr(0.4)},
	}

	got := WeightedMargin(metrics)
	require.NotNil(t, got)
	// 0.2*0.75 + 0.4*0.25
	assert.InDelta(t, 0.25, *got, 1e-9)

	assert.Nil(t, WeightedMargin(nil))
	assert.Nil(t, WeightedMargin([]Metrics{{AttributedSales: 0}}))
}

func TestSortMetrics(t *testing.T) {
	metrics := []Metrics{
		{ID: "low", ProfitAfterAds: 10},
		{ID: "high", ProfitAfterAds: 100},
		{ID: "negative", ProfitAfterAds: -5},
	}

	desc := SortMetrics(metrics, SortByProfit, true)
	assert.Equal(t, "high", desc[0].ID)
	assert.Equal(t, "negative", desc[2].ID)

	asc := SortMetrics(metrics, SortByProfit, false)
	assert.Equal(t, "negative", asc[0].ID)

	// Input untouched
	assert.Equal(t, "low", metrics[0].ID)
}

func TestSortMetricsNilROASComparesAsZero(t *testing.T) {
	metrics := []Metrics{
		{ID: "no-roas", ROAS: nil},
		{ID: "with-roas", ROAS: formulas.Ptr(2.5)},
	}

	sorted := SortMetrics(metrics, SortByROAS, true)
	assert.Equal(t, "with-roas", sorted[0].ID)
	assert.Nil(t, metrics[0].ROAS)
}

func TestTopPerformersAndUnderperforming(t *testing.T) {
	metrics := []Metrics{
		{ID: "a", ProfitAfterAds: 50},
		{ID: "b", ProfitAfterAds: -20},
		{ID: "c", ProfitAfterAds: 200},
	}

	top := TopPerformers(metrics, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "c", top[0].ID)
	assert.Equal(t, "a", top[1].ID)

	top = TopPerformers(metrics, 10)
	assert.Len(t, top, 3)

	losing := Underperforming(metrics)
	require.Len(t, losing, 1)
	assert.Equal(t, "b", losing[0].ID)
}

const sampleCSV = `Status,Product,UPC,Spend,Attributed_Sales,Attributed_Quantities,ROAS,Impressions,Clicks,CTR,Percent_NTB_Attributed_Sales
active,Sparkling Water 12pk,00012345,500,2000,100,4.0,100000,2000,2.0,30
paused,Old Flavor,00099999,100,50,5,0.5,1000,10,1.0,10
active,Energy Bar,00054321,250,500,40,2.0,50000,800,,20
active,No Activity,00011111,0,0,0,0,0,0,0,0
`

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// Paused and zero-activity rows are skipped
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "00012345", first.UPC)
	assert.Equal(t, "Sparkling Water 12pk", first.Product)
	assert.InDelta(t, 500, first.Spend, 1e-9)
	assert.InDelta(t, 2000, first.Sales, 1e-9)
	assert.InDelta(t, 100, first.Units, 1e-9)
	// CTR column value 2.0 means 2%
	assert.InDelta(t, 0.02, first.CTR, 1e-9)
	assert.InDelta(t, 0.30, first.NTBPercent, 1e-9)

	// Missing CTR cell falls back to clicks/impressions
	second := rows[1]
	assert.InDelta(t, 800.0/50000.0, second.CTR, 1e-9)
}

func TestParseCSVRequiresUPCAndProduct(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Spend,Sales\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPC and Product")
}

func TestParseCSVEmpty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestRowsToData(t *testing.T) {
	rows := []Row{{UPC: "00012345", Product: "Water", Spend: 10, Sales: 40, Units: 2}}

	data := RowsToData(rows, formulas.Ptr(40))
	require.Len(t, data, 1)

	d := data[0]
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "00012345", d.UPCCode)
	require.NotNil(t, d.GrossMarginPercent)
	assert.InDelta(t, 40, *d.GrossMarginPercent, 1e-9)
	require.NotNil(t, d.AdSpend)
	assert.InDelta(t, 10, *d.AdSpend, 1e-9)
}
