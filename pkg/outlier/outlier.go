// Package outlier flags anomalous values in a numeric column.
//
// Both detectors return a flag per input value, aligned by index. An empty
// input yields an empty, non-nil flag slice.
package outlier

import (
	"math"
	"slices"

	"github.com/jmylchreest/psle/pkg/stats"
)

// IQRFence is the multiple of the interquartile range placed beyond each
// quartile.
const IQRFence = 1.5

// Bounds is an inclusive acceptance range; values outside it are outliers.
type Bounds struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// SDBounds returns mean ± n population standard deviations of the non-NaN
// values.
func SDBounds(values []float64, n float64) (Bounds, bool) {
	values = dropNaN(values)
	mean, ok := stats.Mean(values)
	if !ok {
		return Bounds{}, false
	}
	sd, _ := stats.StdDev(values)
	cut := sd * n
	return Bounds{Lower: mean - cut, Upper: mean + cut}, true
}

// IQRBounds returns the Tukey fences Q1 - 1.5·IQR and Q3 + 1.5·IQR. The lower
// fence is not clamped and may be negative for count data. NaN values are
// ignored.
func IQRBounds(values []float64) (Bounds, bool) {
	values = dropNaN(values)
	q1, ok := stats.Quantile(values, 0.25)
	if !ok {
		return Bounds{}, false
	}
	q3, _ := stats.Quantile(values, 0.75)
	cut := IQRFence * (q3 - q1)
	return Bounds{Lower: q1 - cut, Upper: q3 + cut}, true
}

// SD flags values further than n standard deviations from the mean.
func SD(values []float64, n float64) []bool {
	b, ok := SDBounds(values, n)
	return flag(values, b, ok)
}

// IQR flags values outside the Tukey fences.
func IQR(values []float64) []bool {
	b, ok := IQRBounds(values)
	return flag(values, b, ok)
}

func flag(values []float64, b Bounds, ok bool) []bool {
	flags := make([]bool, len(values))
	if !ok {
		return flags
	}
	for i, v := range values {
		// NaN compares false against both bounds and is never flagged.
		flags[i] = !math.IsNaN(v) && !b.Contains(v)
	}
	return flags
}

// dropNaN returns values without NaNs, reusing values when there are none.
func dropNaN(values []float64) []float64 {
	if !slices.ContainsFunc(values, math.IsNaN) {
		return values
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Indices returns the positions of set flags.
func Indices(flags []bool) []int {
	var idx []int
	for i, f := range flags {
		if f {
			idx = append(idx, i)
		}
	}
	return idx
}
