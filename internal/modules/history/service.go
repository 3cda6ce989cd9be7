package history

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"adcalc/internal/modules/portfolio"
	"adcalc/pkg/formulas"
)

const dateLayout = "2006-01-02"

// trendSlopeBand is the slope magnitude below which performance counts as
// stable.
const trendSlopeBand = 0.05

// comparisonDeadband is the relative change (percent) below which a period
// comparison counts as flat.
const comparisonDeadband = 2.0

// NewSnapshot captures an immutable snapshot of a product. The date defaults
// to today and must be YYYY-MM-DD; the timestamp is the UTC midnight of that
// day so snapshot ordering is stable across timezones. Inputs and metrics
// are deep-copied, so editing the live product afterwards never changes the
// snapshot.
func NewSnapshot(product portfolio.Product, date, notes string) (Snapshot, error) {
	if date == "" {
		date = time.Now().UTC().Format(dateLayout)
	}

	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return Snapshot{}, fmt.Errorf("invalid snapshot date %q: %w", date, err)
	}

	return Snapshot{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Date:        date,
		Timestamp:   day,
		Inputs:      product.Inputs.Clone(),
		Metrics:     product.Metrics.Clone(),
		Notes:       notes,
	}, nil
}

// ProductSnapshots returns the snapshots of one product, oldest first.
func ProductSnapshots(snapshots []Snapshot, productID string) []Snapshot {
	var matched []Snapshot
	for _, s := range snapshots {
		if s.ProductID == productID {
			matched = append(matched, s)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})

	return matched
}

// SnapshotsInRange returns snapshots whose day falls inside [start, end].
func SnapshotsInRange(snapshots []Snapshot, start, end string) ([]Snapshot, error) {
	startDay, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid range start %q: %w", start, err)
	}
	endDay, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid range end %q: %w", end, err)
	}

	var matched []Snapshot
	for _, s := range snapshots {
		if !s.Timestamp.Before(startDay) && !s.Timestamp.After(endDay) {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// metricValue extracts one charted metric from a snapshot. Unknown values
// chart as 0 here: a gap in a line chart reads worse than a zero, so this
// deliberately diverges from the engines' nil propagation. Margin and CTR
// are scaled to whole percentages for display.
func metricValue(s Snapshot, metric TrendMetric) float64 {
	switch metric {
	case TrendROAS:
		return formulas.OrZero(s.Metrics.ROAS)
	case TrendProfit:
		return formulas.OrZero(s.Metrics.ProfitAfterAds)
	case TrendSales:
		return formulas.OrZero(s.Inputs.AttributedSales)
	case TrendSpend:
		return formulas.OrZero(s.Inputs.AdSpend)
	case TrendMargin:
		return formulas.OrZero(s.Metrics.MarginAfterAdsPct) * 100
	case TrendCTR:
		return formulas.OrZero(s.Metrics.CTR) * 100
	case TrendNTB:
		v := formulas.OrZero(s.Inputs.NTBPercent)
		if v > 0 && v < 1 {
			v *= 100
		}
		return v
	}
	return 0
}

// ExtractTrend maps snapshots to a chartable series for one metric.
func ExtractTrend(snapshots []Snapshot, metric TrendMetric) []TrendPoint {
	points := make([]TrendPoint, len(snapshots))
	for i, s := range snapshots {
		points[i] = TrendPoint{
			Date:  s.Date,
			Value: metricValue(s, metric),
			Label: s.ProductName,
		}
	}
	return points
}

// IdentifyTrend classifies a product's direction from its most recent
// snapshots. The ROAS and profit series are regressed independently against
// their index and the two slopes averaged; within +/-0.05 the product counts
// as stable. Fewer than two snapshots is stable with zero slopes, not an
// error.
func IdentifyTrend(snapshots []Snapshot, productID string, lookback int) TrendResult {
	productSnapshots := ProductSnapshots(snapshots, productID)
	if lookback > 0 && len(productSnapshots) > lookback {
		productSnapshots = productSnapshots[len(productSnapshots)-lookback:]
	}

	if len(productSnapshots) < 2 {
		return TrendResult{Trend: TrendStable}
	}

	roasValues := make([]float64, len(productSnapshots))
	profitValues := make([]float64, len(productSnapshots))
	for i, s := range productSnapshots {
		roasValues[i] = formulas.OrZero(s.Metrics.ROAS)
		profitValues[i] = formulas.OrZero(s.Metrics.ProfitAfterAds)
	}

	result := TrendResult{
		ROASTrend:   formulas.Slope(roasValues),
		ProfitTrend: formulas.Slope(profitValues),
	}

	average := (result.ROASTrend + result.ProfitTrend) / 2
	switch {
	case average > trendSlopeBand:
		result.Trend = TrendImproving
	case average < -trendSlopeBand:
		result.Trend = TrendDeclining
	default:
		result.Trend = TrendStable
	}

	return result
}

// ComparePeriods compares the mean of each metric between two snapshot
// sets. Changes within the 2% deadband count as flat.
func ComparePeriods(current, previous []Snapshot, metrics []TrendMetric) []PeriodComparison {
	comparisons := make([]PeriodComparison, 0, len(metrics))

	for _, metric := range metrics {
		currentAvg := meanOf(current, metric)
		previousAvg := meanOf(previous, metric)

		change := currentAvg - previousAvg
		changePercent := 0.0
		if previousAvg != 0 {
			changePercent = change / previousAvg * 100
		}

		// Direction comes from the absolute change, not the percent: a
		// negative previous mean flips the percent's sign.
		trend := "flat"
		if math.Abs(changePercent) > comparisonDeadband {
			if change > 0 {
				trend = "up"
			} else {
				trend = "down"
			}
		}

		comparisons = append(comparisons, PeriodComparison{
			Metric:        string(metric),
			Current:       currentAvg,
			Previous:      previousAvg,
			Change:        change,
			ChangePercent: changePercent,
			Trend:         trend,
		})
	}

	return comparisons
}

func meanOf(snapshots []Snapshot, metric TrendMetric) float64 {
	if len(snapshots) == 0 {
		return 0
	}
	values := make([]float64, len(snapshots))
	for i, s := range snapshots {
		values[i] = metricValue(s, metric)
	}
	return formulas.Mean(values)
}

// LatestSnapshots returns the most recent snapshot of each product.
func LatestSnapshots(snapshots []Snapshot) []Snapshot {
	latest := make(map[string]Snapshot)
	for _, s := range snapshots {
		existing, ok := latest[s.ProductID]
		if !ok || s.Timestamp.After(existing.Timestamp) {
			latest[s.ProductID] = s
		}
	}

	result := make([]Snapshot, 0, len(latest))
	for _, s := range latest {
		result = append(result, s)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ProductID < result[j].ProductID
	})
	return result
}

// GrowthRate returns the percent change of a metric between two snapshots,
// 0 when the previous value is zero.
func GrowthRate(current, previous Snapshot, metric TrendMetric) float64 {
	currentValue := metricValue(current, metric)
	previousValue := metricValue(previous, metric)

	if previousValue == 0 {
		return 0
	}
	return (currentValue - previousValue) / previousValue * 100
}

// GroupByWeek buckets snapshots by the Sunday starting their week.
func GroupByWeek(snapshots []Snapshot) map[string][]Snapshot {
	weeks := make(map[string][]Snapshot)
	for _, s := range snapshots {
		weekStart := s.Timestamp.AddDate(0, 0, -int(s.Timestamp.Weekday()))
		key := weekStart.Format(dateLayout)
		weeks[key] = append(weeks[key], s)
	}
	return weeks
}
