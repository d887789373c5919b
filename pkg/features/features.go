// Package features derives dataset features from parsed results records.
package features

import (
	"regexp"
	"slices"
	"strings"

	"github.com/jmylchreest/psle/pkg/report"
	"github.com/jmylchreest/psle/pkg/stats"
)

// TotalLabels are table row labels that already hold the per-grade totals.
var TotalLabels = []string{"JUMLA", "TOTAL"}

// Derived holds the features computed for one record. Nil values could not be
// computed from the record.
type Derived struct {
	ComputedGrade   *stats.Grade `json:"computed_grade" yaml:"computed_grade"`
	GradeConsistent *bool        `json:"grade_consistent" yaml:"grade_consistent"`
	GradeCounts     *[5]int      `json:"grade_counts" yaml:"grade_counts"`
	ApproxSpread    *float64     `json:"approx_spread" yaml:"approx_spread"`
}

// Derive computes the features for rec. It never modifies rec.
func Derive(rec report.Record) Derived {
	var d Derived
	if g, ok := rec.ComputedGrade(); ok {
		d.ComputedGrade = &g
	}
	if consistent, ok := rec.GradeConsistent(); ok {
		d.GradeConsistent = &consistent
	}
	if counts, ok := GradeCounts(rec); ok {
		d.GradeCounts = &counts
		if spread, ok := stats.ApproxSpreadFromGradeCounts(counts); ok {
			d.ApproxSpread = &spread
		}
	}
	return d
}

// GradeCounts returns the number of pupils at each grade, A to E. A row
// labelled with one of TotalLabels is used as is; otherwise the rows are
// summed. Rows with other than five counts are skipped. ok is false when no
// usable row exists.
func GradeCounts(rec report.Record) ([5]int, bool) {
	var counts [5]int
	for _, row := range rec.GradeDistribution {
		if len(row.Counts) == len(counts) && slices.Contains(TotalLabels, row.Label) {
			copy(counts[:], row.Counts)
			return counts, true
		}
	}

	found := false
	for _, row := range rec.GradeDistribution {
		if len(row.Counts) != len(counts) {
			continue
		}
		for i, n := range row.Counts {
			counts[i] += n
		}
		found = true
	}
	return counts, found
}

// Council types.
const (
	Urban = "urban"
	Rural = "rural"
)

// DefaultUrbanAcronyms are council name suffixes of urban councils: city,
// municipal and town councils.
var DefaultUrbanAcronyms = []string{"CC", "MC", "TC"}

var councilSuffixRe = regexp.MustCompile(`.*\s+([A-Za-z]+)$`)

// CouncilType classifies a council as urban or rural from the acronym that
// ends its name, e.g. "ILALA MC" is urban and "BAGAMOYO DC" rural.
// Surrounding whitespace is ignored.
func CouncilType(council string, urbanAcronyms []string) string {
	m := councilSuffixRe.FindStringSubmatch(strings.TrimSpace(council))
	if m != nil && slices.Contains(urbanAcronyms, m[1]) {
		return Urban
	}
	return Rural
}
