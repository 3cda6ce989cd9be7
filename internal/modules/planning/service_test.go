package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adcalc/internal/modules/calculator"
	"adcalc/pkg/formulas"
)

func TestBreakEvenROAS(t *testing.T) {
	// 40% gross margin, 5% commission: 1 / 0.35
	roas := BreakEvenROAS(formulas.Ptr(40), formulas.Ptr(5))
	require.NotNil(t, roas)
	assert.InDelta(t, 1/0.35, *roas, 1e-9)

	// Commission eats the whole margin
	assert.Nil(t, BreakEvenROAS(formulas.Ptr(10), formulas.Ptr(10)))
	assert.Nil(t, BreakEvenROAS(formulas.Ptr(10), formulas.Ptr(20)))
	assert.Nil(t, BreakEvenROAS(nil, formulas.Ptr(5)))
}

func TestRequiredROAS(t *testing.T) {
	// 40% margin, no commission, 15% target: 1 / 0.25
	roas := RequiredROAS(formulas.Ptr(40), nil, formulas.Ptr(15))
	require.NotNil(t, roas)
	assert.InDelta(t, 4.0, *roas, 1e-9)

	// Decimal and whole-number targets agree
	decimal := RequiredROAS(formulas.Ptr(0.4), nil, formulas.Ptr(0.15))
	require.NotNil(t, decimal)
	assert.InDelta(t, *roas, *decimal, 1e-9)

	// A target at or above the effective margin is unreachable
	assert.Nil(t, RequiredROAS(formulas.Ptr(40), nil, formulas.Ptr(40)))
	assert.Nil(t, RequiredROAS(formulas.Ptr(40), nil, formulas.Ptr(50)))
	assert.Nil(t, RequiredROAS(formulas.Ptr(40), nil, nil))
}

func TestBreakEvenAnalysis(t *testing.T) {
	result := BreakEvenAnalysis(1000, formulas.Ptr(40), formulas.Ptr(5))
	require.NotNil(t, result)

	assert.InDelta(t, 1000, result.AdSpend, 1e-9)
	assert.InDelta(t, 1/0.35, result.BreakevenROAS, 1e-9)
	assert.InDelta(t, 1000/0.35, result.RequiredSales, 1e-6)
	assert.InDelta(t, 0.4*1000/0.35, result.GrossMarginDollars, 1e-6)
	assert.InDelta(t, 0.05*1000/0.35, result.CommissionDollars, 1e-6)

	// Break-even by definition
	assert.InDelta(t, 0, result.ProfitAfterAds, 1e-6)
	assert.InDelta(t, 0, result.ProfitMarginPercent, 1e-9)
}

func TestBreakEvenAnalysisImpossible(t *testing.T) {
	assert.Nil(t, BreakEvenAnalysis(0, formulas.Ptr(40), nil))
	assert.Nil(t, BreakEvenAnalysis(1000, formulas.Ptr(5), formulas.Ptr(10)))
}

func TestAdSpendScenario(t *testing.T) {
	inputs := calculator.Inputs{
		AdSpend:            formulas.Ptr(1000),
		AttributedSales:    formulas.Ptr(5000),
		GrossMarginPercent: formulas.Ptr(40),
	}

	scenario := AdSpendScenario(inputs, -20)
	require.NotNil(t, scenario.AdSpend)
	assert.InDelta(t, 800, *scenario.AdSpend, 1e-9)
	require.NotNil(t, scenario.Metrics.ROAS)
	assert.InDelta(t, 6.25, *scenario.Metrics.ROAS, 1e-9)
	require.NotNil(t, scenario.Metrics.ProfitAfterAds)
	assert.InDelta(t, 1200, *scenario.Metrics.ProfitAfterAds, 1e-9)

	// Source inputs untouched
	assert.InDelta(t, 1000, *inputs.AdSpend, 1e-9)
}

func TestAdSpendScenarioMissingSpend(t *testing.T) {
	scenario := AdSpendScenario(calculator.Inputs{AttributedSales: formulas.Ptr(5000)}, 50)
	assert.Nil(t, scenario.AdSpend)
	assert.Nil(t, scenario.Metrics.ROAS)
}

func TestAdSpendScenarios(t *testing.T) {
	inputs := calculator.Inputs{
		AdSpend:         formulas.Ptr(1000),
		AttributedSales: formulas.Ptr(5000),
	}

	scenarios := AdSpendScenarios(inputs, []float64{-50, 0, 50})
	require.Len(t, scenarios, 3)
	assert.InDelta(t, 500, *scenarios[0].AdSpend, 1e-9)
	assert.InDelta(t, 1000, *scenarios[1].AdSpend, 1e-9)
	assert.InDelta(t, 1500, *scenarios[2].AdSpend, 1e-9)
}

func TestRequiredROASForMargin(t *testing.T) {
	metrics := calculator.Compute(calculator.Inputs{
		AdSpend:            formulas.Ptr(1000),
		AttributedSales:    formulas.Ptr(5000),
		GrossMarginPercent: formulas.Ptr(40),
	})

	roas := RequiredROASForMargin(metrics, formulas.Ptr(15))
	require.NotNil(t, roas)
	assert.InDelta(t, 4.0, *roas, 1e-9)

	assert.Nil(t, RequiredROASForMargin(metrics, formulas.Ptr(40)))
	assert.Nil(t, RequiredROASForMargin(calculator.Metrics{}, formulas.Ptr(15)))
}
