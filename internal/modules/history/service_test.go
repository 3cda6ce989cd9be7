package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adcalc/internal/modules/calculator"
	"adcalc/internal/modules/portfolio"
	"adcalc/pkg/formulas"
)

func snapshotOn(productID, date string, roas, profit float64) Snapshot {
	day, _ := time.ParseInLocation("2006-01-02", date, time.UTC)
	return Snapshot{
		ID:        productID + "-" + date,
		ProductID: productID,
		Date:      date,
		Timestamp: day,
		Metrics: calculator.Metrics{
			ROAS:           formulas.Ptr(roas),
			ProfitAfterAds: formulas.Ptr(profit),
		},
	}
}

func TestNewSnapshotDeepCopies(t *testing.T) {
	spend := 100.0
	p := portfolio.Product{
		ID:   "prod-1",
		Name: "Sparkling Water 12pk",
		Inputs: calculator.Inputs{
			AdSpend: &spend,
		},
		Metrics: calculator.Metrics{
			ROAS: formulas.Ptr(4.0),
		},
	}

	s, err := NewSnapshot(p, "2026-03-01", "weekly check")
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "prod-1", s.ProductID)
	assert.Equal(t, "Sparkling Water 12pk", s.ProductName)
	assert.Equal(t, "2026-03-01", s.Date)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), s.Timestamp)
	assert.Equal(t, "weekly check", s.Notes)

	// Mutating the live product must not reach into the snapshot
	spend = 999
	*p.Metrics.ROAS = 1.0
	assert.InDelta(t, 100, *s.Inputs.AdSpend, 1e-9)
	assert.InDelta(t, 4.0, *s.Metrics.ROAS, 1e-9)
}

func TestNewSnapshotDefaultsToToday(t *testing.T) {
	s, err := NewSnapshot(portfolio.Product{ID: "p"}, "", "")
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), s.Date)
}

func TestNewSnapshotRejectsMalformedDate(t *testing.T) {
	_, err := NewSnapshot(portfolio.Product{ID: "p"}, "03/01/2026", "")
	assert.Error(t, err)
}

func TestProductSnapshotsSortedOldestFirst(t *testing.T) {
	snapshots := []Snapshot{
		snapshotOn("a", "2026-03-15", 3, 100),
		snapshotOn("b", "2026-03-01", 9, 900),
		snapshotOn("a", "2026-03-01", 2, 50),
	}

	got := ProductSnapshots(snapshots, "a")
	require.Len(t, got, 2)
	assert.Equal(t, "2026-03-01", got[0].Date)
	assert.Equal(t, "2026-03-15", got[1].Date)
}

func TestSnapshotsInRange(t *testing.T) {
	snapshots := []Snapshot{
		snapshotOn("a", "2026-02-28", 2, 50),
		snapshotOn("a", "2026-03-01", 3, 100),
		snapshotOn("a", "2026-03-31", 4, 150),
		snapshotOn("a", "2026-04-01", 5, 200),
	}

	got, err := SnapshotsInRange(snapshots, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2026-03-01", got[0].Date)
	assert.Equal(t, "2026-03-31", got[1].Date)

	_, err = SnapshotsInRange(snapshots, "bad", "2026-03-31")
	assert.Error(t, err)
}

func TestExtractTrendScalesDisplayPercentages(t *testing.T) {
	s := snapshotOn("a", "2026-03-01", 4, 100)
	s.Metrics.MarginAfterAdsPct = formulas.Ptr(0.15)
	s.Metrics.CTR = formulas.Ptr(0.021)
	s.ProductName = "Cereal"

	points := ExtractTrend([]Snapshot{s}, TrendMargin)
	require.Len(t, points, 1)
	assert.InDelta(t, 15, points[0].Value, 1e-9)
	assert.Equal(t, "Cereal", points[0].Label)

	points = ExtractTrend([]Snapshot{s}, TrendCTR)
	assert.InDelta(t, 2.1, points[0].Value, 1e-9)

	// A metric the snapshot never carried charts as zero
	points = ExtractTrend([]Snapshot{s}, TrendSpend)
	assert.Equal(t, 0.0, points[0].Value)
}

func TestExtractTrendNTBScaling(t *testing.T) {
	decimal := snapshotOn("a", "2026-03-01", 4, 100)
	decimal.Inputs.NTBPercent = formulas.Ptr(0.3)

	whole := snapshotOn("a", "2026-03-02", 4, 100)
	whole.Inputs.NTBPercent = formulas.Ptr(30.0)

	points := ExtractTrend([]Snapshot{decimal, whole}, TrendNTB)
	assert.InDelta(t, 30, points[0].Value, 1e-9)
	assert.InDelta(t, 30, points[1].Value, 1e-9)
}

func TestIdentifyTrendImproving(t *testing.T) {
	snapshots := []Snapshot{
		snapshotOn("a", "2026-03-01", 2.0, 100),
		snapshotOn("a", "2026-03-08", 2.5, 150),
		snapshotOn("a", "2026-03-15", 3.0, 200),
		snapshotOn("a", "2026-03-22", 3.5, 250),
	}

	result := IdentifyTrend(snapshots, "a", 4)
	assert.Equal(t, TrendImproving, result.Trend)
	assert.InDelta(t, 0.5, result.ROASTrend, 1e-9)
	assert.InDelta(t, 50, result.ProfitTrend, 1e-9)
}

func TestIdentifyTrendDeclining(t *testing.T) {
	snapshots := []Snapshot{
		snapshotOn("a", "2026-03-01", 4.0, 200),
		snapshotOn("a", "2026-03-08", 3.0, 100),
		snapshotOn("a", "2026-03-15", 2.0, 0),
	}

	result := IdentifyTrend(snapshots, "a", 0)
	assert.Equal(t, TrendDeclining, result.Trend)
}

func TestIdentifyTrendStableWithinBand(t *testing.T) {
	snapshots := []Snapshot{
		snapshotOn("a", "2026-03-01", 3.00, 100),
		snapshotOn("a", "2026-03-08", 3.02, 100),
		snapshotOn("a", "2026-03-15", 3.04, 100),
	}

	result := IdentifyTrend(snapshots, "a", 4)
	assert.Equal(t, TrendStable, result.Trend)
}

func TestIdentifyTrendTooFewSnapshots(t *testing.T) {
	result := IdentifyTrend([]Snapshot{snapshotOn("a", "2026-03-01", 4, 100)}, "a", 4)
	assert.Equal(t, TrendStable, result.Trend)
	assert.Equal(t, 0.0, result.ROASTrend)
	assert.Equal(t, 0.0, result.ProfitTrend)
}

func TestIdentifyTrendLookbackWindow(t *testing.T) {
	// A long decline followed by a short recovery; with a lookback of 3 only
	// the recovery counts.
	snapshots := []Snapshot{
		snapshotOn("a", "2026-03-01", 8.0, 800),
		snapshotOn("a", "2026-03-08", 4.0, 400),
		snapshotOn("a", "2026-03-15", 1.0, 10),
		snapshotOn("a", "2026-03-22", 2.0, 100),
		snapshotOn("a", "2026-03-29", 3.0, 200),
	}

	assert.Equal(t, TrendImproving, IdentifyTrend(snapshots, "a", 3).Trend)
	assert.Equal(t, TrendDeclining, IdentifyTrend(snapshots, "a", 0).Trend)
}

func TestComparePeriods(t *testing.T) {
	previous := []Snapshot{
		snapshotOn("a", "2026-02-01", 2.0, 100),
		snapshotOn("a", "2026-02-08", 2.0, 100),
	}
	current := []Snapshot{
		snapshotOn("a", "2026-03-01", 3.0, 101),
		snapshotOn("a", "2026-03-08", 3.0, 101),
	}

	comparisons := ComparePeriods(current, previous, []TrendMetric{TrendROAS, TrendProfit})
	require.Len(t, comparisons, 2)

	roas := comparisons[0]
	assert.Equal(t, "roas", roas.Metric)
	assert.InDelta(t, 3.0, roas.Current, 1e-9)
	assert.InDelta(t, 2.0, roas.Previous, 1e-9)
	assert.InDelta(t, 50, roas.ChangePercent, 1e-9)
	assert.Equal(t, "up", roas.Trend)

	// A 1% change sits inside the deadband
	profit := comparisons[1]
	assert.InDelta(t, 1, profit.ChangePercent, 1e-9)
	assert.Equal(t, "flat", profit.Trend)
}

func TestComparePeriodsNegativeBaseline(t *testing.T) {
	// Loss shrinking from -100 to -50 is a recovery; the percent change is
	// negative only because the baseline is.
	previous := []Snapshot{snapshotOn("a", "2026-02-01", 1.0, -100)}
	current := []Snapshot{snapshotOn("a", "2026-03-01", 1.0, -50)}

	comparisons := ComparePeriods(current, previous, []TrendMetric{TrendProfit})
	require.Len(t, comparisons, 1)

	profit := comparisons[0]
	assert.InDelta(t, 50, profit.Change, 1e-9)
	assert.InDelta(t, -50, profit.ChangePercent, 1e-9)
	assert.Equal(t, "up", profit.Trend)
}

func TestComparePeriodsEmptyPrevious(t *testing.T) {
	current := []Snapshot{snapshotOn("a", "2026-03-01", 3.0, 100)}

	comparisons := ComparePeriods(current, nil, []TrendMetric{TrendROAS})
	require.Len(t, comparisons, 1)
	assert.InDelta(t, 3.0, comparisons[0].Current, 1e-9)
	assert.Equal(t, 0.0, comparisons[0].Previous)
	assert.Equal(t, 0.0, comparisons[0].ChangePercent)
	assert.Equal(t, "flat", comparisons[0].Trend)
}

func TestLatestSnapshots(t *testing.T) {
	snapshots := []Snapshot{
		snapshotOn("a", "2026-03-01", 2, 50),
		snapshotOn("a", "2026-03-15", 3, 100),
		snapshotOn("b", "2026-03-10", 5, 300),
	}

	latest := LatestSnapshots(snapshots)
	require.Len(t, latest, 2)
	assert.Equal(t, "2026-03-15", latest[0].Date)
	assert.Equal(t, "b", latest[1].ProductID)
}

func TestGrowthRate(t *testing.T) {
	previous := snapshotOn("a", "2026-02-01", 2.0, 100)
	current := snapshotOn("a", "2026-03-01", 3.0, 100)

	assert.InDelta(t, 50, GrowthRate(current, previous, TrendROAS), 1e-9)

	zero := snapshotOn("a", "2026-01-01", 0, 0)
	zero.Metrics.ROAS = nil
	assert.Equal(t, 0.0, GrowthRate(current, zero, TrendROAS))
}

func TestGroupByWeek(t *testing.T) {
	// 2026-03-02 is a Monday, 2026-03-08 the following Sunday
	snapshots := []Snapshot{
		snapshotOn("a", "2026-03-02", 2, 50),
		snapshotOn("a", "2026-03-04", 3, 100),
		snapshotOn("a", "2026-03-08", 4, 150),
	}

	weeks := GroupByWeek(snapshots)
	require.Len(t, weeks, 2)
	assert.Len(t, weeks["2026-03-01"], 2)
	assert.Len(t, weeks["2026-03-08"], 1)
}
