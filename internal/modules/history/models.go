package history

import (
	"time"

	"adcalc/internal/modules/calculator"
)

// Snapshot is an immutable point-in-time copy of a product's inputs and
// metrics. The product reference is weak: deleting the product later leaves
// its snapshots in place, so ProductName is denormalized at capture time.
type Snapshot struct {
	ID          string             `json:"id"`
	ProductID   string             `json:"product_id"`
	ProductName string             `json:"product_name"`
	Date        string             `json:"date"` // YYYY-MM-DD
	Timestamp   time.Time          `json:"timestamp"`
	Inputs      calculator.Inputs  `json:"inputs"`
	Metrics     calculator.Metrics `json:"metrics"`
	Notes       string             `json:"notes,omitempty"`
}

// TrendMetric names a metric that can be charted over snapshots.
type TrendMetric string

const (
	TrendROAS   TrendMetric = "roas"
	TrendProfit TrendMetric = "profit"
	TrendSales  TrendMetric = "sales"
	TrendSpend  TrendMetric = "spend"
	TrendMargin TrendMetric = "margin"
	TrendCTR    TrendMetric = "ctr"
	TrendNTB    TrendMetric = "ntb"
)

// TrendPoint is one charted value of a metric series.
type TrendPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Label string  `json:"label,omitempty"`
}

// Direction classifies the overall movement of a product's performance.
type Direction string

const (
	TrendImproving Direction = "improving"
	TrendDeclining Direction = "declining"
	TrendStable    Direction = "stable"
)

// TrendResult carries the classification plus the raw slopes behind it.
type TrendResult struct {
	Trend       Direction `json:"trend"`
	ROASTrend   float64   `json:"roas_trend"`
	ProfitTrend float64   `json:"profit_trend"`
}

// PeriodComparison is the change of one metric between two snapshot sets.
type PeriodComparison struct {
	Metric        string  `json:"metric"`
	Current       float64 `json:"current"`
	Previous      float64 `json:"previous"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Trend         string  `json:"trend"` // "up", "down" or "flat"
}
