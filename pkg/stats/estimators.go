package stats

// gradeMidpoints are the centres of each grade's mark range, A to E.
// A and E are centred on their closed ranges [240.5,300] and [0,60.5].
var gradeMidpoints = [5]float64{270.25, 210.5, 150.5, 90.5, 30.25}

// ApproxSpreadFromGradeCounts approximates the standard deviation of a
// school's marks from the number of pupils at each grade, A to E, by placing
// every pupil at the midpoint of their grade's range. ok is false when no
// pupils are counted.
func ApproxSpreadFromGradeCounts(counts [5]int) (float64, bool) {
	ws := make([]weighted, len(counts))
	for i, n := range counts {
		ws[i] = weighted{value: gradeMidpoints[i], weight: float64(n)}
	}
	sum, ok := summarize(ws)
	if !ok {
		return 0, false
	}
	return sum.StdDev, true
}

// RatioAverage is the mean pupil-to-book ratio across every pairing of a
// grade level's pupil count with one of that level's book counts. Only
// pairings where both counts are positive contribute. ok is false when there
// are none.
func RatioAverage(row Row) (float64, bool) {
	var ratios []float64
	for _, p := range row {
		if p.Column.Metric != MetricPupils || p.Value <= 0 {
			continue
		}
		for _, b := range row {
			if b.Column.Metric != MetricBooks || b.Column.Level != p.Column.Level || b.Value <= 0 {
				continue
			}
			ratios = append(ratios, p.Value/b.Value)
		}
	}
	return Mean(ratios)
}

// AgeStats summarises a school's pupil age distribution.
type AgeStats struct {
	Spread float64 `json:"spread" yaml:"spread"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
}

// AgeDistributionStats computes the population standard deviation, mean and
// median age from per-age-bucket pupil counts. Columns that are not age
// buckets are ignored, as are counts that are not positive finite numbers.
// ok is false when no pupils are counted.
func AgeDistributionStats(row Row) (AgeStats, bool) {
	var ws []weighted
	for _, c := range row.Filter(MetricAge) {
		ws = append(ws, weighted{value: float64(c.Column.EffectiveAge()), weight: c.Value})
	}
	sum, ok := summarize(ws)
	if !ok {
		return AgeStats{}, false
	}
	return AgeStats{Spread: sum.StdDev, Mean: sum.Mean, Median: sum.Median}, true
}
