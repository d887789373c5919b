package stats

import (
	"cmp"
	"math"
	"slices"
)

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) (float64, bool) {
	mean, ok := Mean(values)
	if !ok {
		return 0, false
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values))), true
}

// Median returns the middle value, or the mean of the two middle values for an
// even count. values is not modified.
func Median(values []float64) (float64, bool) {
	n := len(values)
	if n == 0 {
		return 0, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2], true
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, true
}

// Quantile estimates the q-th quantile (0 <= q <= 1) by linear interpolation
// between the closest ranks of the sorted values.
func Quantile(values []float64, q float64) (float64, bool) {
	n := len(values)
	if n == 0 || q < 0 || q > 1 || math.IsNaN(q) {
		return 0, false
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return quantileSorted(sorted, q), true
}

func quantileSorted(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// weighted is a value occurring weight times.
type weighted struct {
	value  float64
	weight float64
}

// weightedSummary holds the moments of a weighted multiset.
type weightedSummary struct {
	Mean   float64
	StdDev float64 // Population
	Median float64
}

// summarize computes the mean, population standard deviation and median of
// the multiset in which each value occurs weight times, without materialising
// it. Entries with a non-finite value or a weight that is not a positive
// finite number are skipped. ok is false when no weight remains.
func summarize(ws []weighted) (weightedSummary, bool) {
	kept := make([]weighted, 0, len(ws))
	var total, sum float64
	for _, w := range ws {
		if !(w.weight > 0) || math.IsInf(w.weight, 0) || math.IsNaN(w.value) || math.IsInf(w.value, 0) {
			continue
		}
		kept = append(kept, w)
		total += w.weight
		sum += w.weight * w.value
	}
	if len(kept) == 0 || math.IsInf(total, 0) {
		return weightedSummary{}, false
	}

	mean := sum / total
	var ss float64
	for _, w := range kept {
		d := w.value - mean
		ss += w.weight * d * d
	}

	slices.SortFunc(kept, func(a, b weighted) int {
		return cmp.Compare(a.value, b.value)
	})
	// 0-based positions of the middle element(s) of the expanded multiset.
	half := (total - 1) / 2
	lo := valueAt(kept, math.Floor(half))
	hi := valueAt(kept, math.Ceil(half))

	return weightedSummary{
		Mean:   mean,
		StdDev: math.Sqrt(ss / total),
		Median: (lo + hi) / 2,
	}, true
}

// valueAt returns the value at 0-based position k of the expanded multiset.
// sorted must be ordered by value and have positive weights.
func valueAt(sorted []weighted, k float64) float64 {
	var cum float64
	for _, w := range sorted {
		cum += w.weight
		if k < cum {
			return w.value
		}
	}
	return sorted[len(sorted)-1].value
}
