package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePercent(t *testing.T) {
	tests := []struct {
		name  string
		input *float64
		want  *float64
	}{
		{
			name:  "nil input",
			input: nil,
			want:  nil,
		},
		{
			name:  "NaN input",
			input: Ptr(math.NaN()),
			want:  nil,
		},
		{
			name:  "whole percentage",
			input: Ptr(40),
			want:  Ptr(0.4),
		},
		{
			name:  "already decimal",
			input: Ptr(0.4),
			want:  Ptr(0.4),
		},
		{
			name:  "boundary value 1 passes through",
			input: Ptr(1),
			want:  Ptr(1),
		},
		{
			name:  "just above 1 is divided",
			input: Ptr(1.5),
			want:  Ptr(0.015),
		},
		{
			name:  "zero",
			input: Ptr(0),
			want:  Ptr(0),
		},
		{
			name:  "100 percent",
			input: Ptr(100),
			want:  Ptr(1),
		},
		{
			name:  "negative passes through",
			input: Ptr(-0.1),
			want:  Ptr(-0.1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePercent(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-12)
		})
	}
}

func TestNormalizePercentDoesNotAliasInput(t *testing.T) {
	in := Ptr(0.4)
	out := NormalizePercent(in)

	*out = 0.9
	assert.Equal(t, 0.4, *in)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.Equal(t, 5.0, Mean([]float64{5}))
}

func TestSlope(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{
			name:   "fewer than two points",
			values: []float64{3},
			want:   0,
		},
		{
			name:   "flat series",
			values: []float64{2, 2, 2, 2},
			want:   0,
		},
		{
			name:   "unit increase per step",
			values: []float64{1, 2, 3, 4},
			want:   1,
		},
		{
			name:   "declining series",
			values: []float64{4, 3, 2, 1},
			want:   -1,
		},
		{
			name:   "two points",
			values: []float64{1, 3},
			want:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Slope(tt.values), 1e-9)
		})
	}
}
