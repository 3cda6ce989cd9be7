package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adcalc/internal/modules/calculator"
	"adcalc/internal/modules/upc"
	"adcalc/pkg/formulas"
)

func TestWriteCampaignSummary(t *testing.T) {
	inputs := calculator.Inputs{
		AdSpend:            formulas.Ptr(1000),
		AttributedSales:    formulas.Ptr(5000),
		GrossMarginPercent: formulas.Ptr(40),
	}
	metrics := calculator.Compute(inputs)

	var buf bytes.Buffer
	require.NoError(t, WriteCampaignSummary(&buf, inputs, metrics))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"metric", "value"}, records[0])

	values := make(map[string]string, len(records))
	for _, rec := range records[1:] {
		values[rec[0]] = rec[1]
	}

	assert.Equal(t, "1000.00", values["Ad Spend"])
	assert.Equal(t, "5.00", values["ROAS"])
	assert.Equal(t, "40.00", values["Effective Margin %"])
	assert.Equal(t, "1000.00", values["Profit After Ads"])

	// Engagement metrics were never entered: empty cell, not zero
	assert.Equal(t, "", values["CTR %"])
	assert.Equal(t, "", values["CAC"])
}

func TestWriteUPCTable(t *testing.T) {
	metrics := upc.ComputeAllMetrics([]upc.Data{
		{
			UPCCode:            "00012345678905",
			ProductName:        "Sparkling Water 12pk",
			AdSpend:            formulas.Ptr(500),
			AttributedSales:    formulas.Ptr(2000),
			UnitsSold:          formulas.Ptr(400),
			GrossMarginPercent: formulas.Ptr(40),
		},
		{
			UPCCode:            "00087654321096",
			ProductName:        "Cereal",
			AdSpend:            formulas.Ptr(300),
			AttributedSales:    formulas.Ptr(600),
			UnitsSold:          formulas.Ptr(100),
			GrossMarginPercent: formulas.Ptr(30),
		},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteUPCTable(&buf, metrics))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4) // header + 2 SKUs + totals

	assert.Equal(t, "upc", records[0][0])
	assert.Equal(t, "00012345678905", records[1][0])
	assert.Equal(t, "4.00", records[1][5]) // roas
	assert.Equal(t, "300.00", records[1][8])

	totals := records[3]
	assert.Equal(t, "TOTAL", totals[0])
	assert.Equal(t, "800.00", totals[3])  // spend
	assert.Equal(t, "2600.00", totals[4]) // sales
	assert.Equal(t, "3.25", totals[5])    // blended roas
}

func TestWriteUPCTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUPCTable(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	totals := records[1]
	assert.Equal(t, "TOTAL", totals[0])
	assert.Equal(t, "", totals[5]) // no spend, no roas
	assert.Equal(t, "", totals[9]) // no sales, no weighted margin
}
