package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Slope calculates the least-squares slope of values regressed against their
// index (0, 1, ..., n-1). Snapshot series use the index rather than the
// actual date gaps, so two snapshots a day apart weigh the same as two a
// month apart. Returns 0 for fewer than two values.
func Slope(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	_, slope := stat.LinearRegression(xs, values, nil, false)
	return slope
}
