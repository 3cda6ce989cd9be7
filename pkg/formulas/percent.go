package formulas

import "math"

// NormalizePercent canonicalizes an ambiguous percentage input to decimal form.
// Users enter percentages either as whole numbers ("40" meaning 40%) or as
// decimals ("0.4" meaning 40%). Values greater than 1 are divided by 100,
// values in [0,1] pass through unchanged. Nil or NaN input returns nil.
//
// This is the single normalization gate: values that have passed through it
// are decimals and must never be normalized again.
func NormalizePercent(input *float64) *float64 {
	if input == nil || math.IsNaN(*input) {
		return nil
	}

	if *input > 1 {
		normalized := *input / 100
		return &normalized
	}

	v := *input
	return &v
}

// Ptr returns a pointer to v. Convenience for building nullable metric values.
func Ptr(v float64) *float64 {
	return &v
}

// OrZero returns the value pointed to by p, or 0 when p is nil.
func OrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
