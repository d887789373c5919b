package features

import (
	"testing"

	"github.com/jmylchreest/psle/pkg/report"
	"github.com/jmylchreest/psle/pkg/stats"
)

func TestGradeCounts_PrefersTotalRow(t *testing.T) {
	rec := report.Record{GradeDistribution: []report.TableRow{
		{Label: "WASICHANA", Counts: []int{1, 1, 1, 1, 1}},
		{Label: "JUMLA", Counts: []int{9, 9, 9, 9, 9}},
	}}
	counts, ok := GradeCounts(rec)
	if !ok || counts != [5]int{9, 9, 9, 9, 9} {
		t.Errorf("GradeCounts = %v (ok=%v), want the JUMLA row", counts, ok)
	}
}

func TestGradeCounts_SumsRowsWithoutTotal(t *testing.T) {
	rec := report.Record{GradeDistribution: []report.TableRow{
		{Label: "WASICHANA", Counts: []int{1, 2, 3, 4, 5}},
		{Label: "WAVULANA", Counts: []int{5, 4, 3, 2, 1}},
		{Label: "NOTE", Counts: []int{7}},
	}}
	counts, ok := GradeCounts(rec)
	if !ok || counts != [5]int{6, 6, 6, 6, 6} {
		t.Errorf("GradeCounts = %v (ok=%v), want all sixes", counts, ok)
	}
}

func TestGradeCounts_NoRows(t *testing.T) {
	if _, ok := GradeCounts(report.Record{}); ok {
		t.Error("expected no counts for an empty table")
	}
}

func TestDerive_FullRecord(t *testing.T) {
	score := 250.0
	grade := stats.GradeA
	rec := report.Record{
		AverageScore: &score,
		Grade:        &grade,
		GradeDistribution: []report.TableRow{
			{Label: "JUMLA", Counts: []int{12, 0, 0, 0, 0}},
		},
	}

	d := Derive(rec)
	if d.ComputedGrade == nil || *d.ComputedGrade != stats.GradeA {
		t.Errorf("computed grade = %v, want A", d.ComputedGrade)
	}
	if d.GradeConsistent == nil || !*d.GradeConsistent {
		t.Errorf("grade consistent = %v, want true", d.GradeConsistent)
	}
	if d.ApproxSpread == nil || *d.ApproxSpread != 0 {
		t.Errorf("approx spread = %v, want 0", d.ApproxSpread)
	}
}

func TestDerive_ZeroPupilsLeavesSpreadUndefined(t *testing.T) {
	rec := report.Record{GradeDistribution: []report.TableRow{
		{Label: "JUMLA", Counts: []int{0, 0, 0, 0, 0}},
	}}

	d := Derive(rec)
	if d.GradeCounts == nil {
		t.Error("expected grade counts to be set")
	}
	if d.ApproxSpread != nil {
		t.Errorf("expected undefined spread, got %v", *d.ApproxSpread)
	}
	if d.ComputedGrade != nil || d.GradeConsistent != nil {
		t.Error("expected grade features to be undefined without a summary")
	}
}

func TestCouncilType(t *testing.T) {
	tests := []struct {
		council string
		want    string
	}{
		{"ILALA MC", Urban},
		{"DAR ES SALAAM CC", Urban},
		{"BAGAMOYO DC", Rural},
		{"KIBAHA TC", Urban},
		{"ILALA MC ", Urban},
		{"  TEMEKE MC\n", Urban},
		{"UNKNOWN", Rural},
		{"", Rural},
	}

	for _, tt := range tests {
		if got := CouncilType(tt.council, DefaultUrbanAcronyms); got != tt.want {
			t.Errorf("CouncilType(%q) = %s, want %s", tt.council, got, tt.want)
		}
	}
}
