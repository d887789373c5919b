// Package report parses a PSLE school results page into a Record.
//
// A results page has three sections: an identity heading, a summary line and
// a gender by grade table. Each is extracted independently; a section that
// does not match leaves its fields nil and emits a Diagnostic, but never stops
// the other sections.
package report

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/psle/pkg/stats"
)

// Document is one fetched results page.
type Document struct {
	// ID identifies the document in diagnostics, e.g. "shl_ps1104063.htm".
	ID   string
	HTML string
}

// Record is the structured content of one results page. Nil fields were not
// found in the document; they are never defaulted to zero.
type Record struct {
	SchoolName   *string      `json:"school_name" yaml:"school_name"`
	SchoolID     *string      `json:"school_id" yaml:"school_id"`
	NumStudents  *int         `json:"num_students" yaml:"num_students" validate:"omitempty,gte=0"`
	AverageScore *float64     `json:"average_score" yaml:"average_score" validate:"omitempty,gte=0,lte=300"`
	Grade        *stats.Grade `json:"grade" yaml:"grade" validate:"omitempty,oneof=A B C D E"`

	// GradeDistribution holds the table rows in document order.
	GradeDistribution []TableRow `json:"grade_distribution" yaml:"grade_distribution" validate:"dive"`
}

// TableRow is one row of the results table: a category label (e.g. a gender)
// and its per-grade counts, A to E.
type TableRow struct {
	Label  string `json:"label" yaml:"label"`
	Counts []int  `json:"counts" yaml:"counts" validate:"dive,gte=0"`
}

var validate = validator.New()

// Validate checks the record invariants: non-negative counts, an average
// score within [0,300] and a grade in A to E.
func (r Record) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	return nil
}

// Empty reports whether no section was extracted.
func (r Record) Empty() bool {
	return r.SchoolName == nil && r.SchoolID == nil &&
		r.NumStudents == nil && r.AverageScore == nil && r.Grade == nil &&
		len(r.GradeDistribution) == 0
}

// ComputedGrade classifies the average score. ok is false when the summary
// was not extracted.
func (r Record) ComputedGrade() (stats.Grade, bool) {
	if r.AverageScore == nil {
		return "", false
	}
	return stats.AssignGrade(*r.AverageScore), true
}

// GradeConsistent compares the published grade with the grade computed from
// the average score. ok is false when either is missing.
func (r Record) GradeConsistent() (consistent, ok bool) {
	computed, ok := r.ComputedGrade()
	if !ok || r.Grade == nil {
		return false, false
	}
	return computed == *r.Grade, true
}

// Row returns the first table row whose label equals label.
func (r Record) Row(label string) (TableRow, bool) {
	for _, row := range r.GradeDistribution {
		if row.Label == label {
			return row, true
		}
	}
	return TableRow{}, false
}
