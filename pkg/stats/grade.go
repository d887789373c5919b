// Package stats provides grade classification and the numeric estimators used
// to derive features from parsed exam results.
//
// Estimators never fail on degenerate input. When a statistic cannot be
// computed (no values, zero weight, zero denominator) they return ok == false.
package stats

// Grade is a PSLE letter grade, A (best) to E.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeE Grade = "E"
)

// Grades lists every grade in table order, best first.
var Grades = [5]Grade{GradeA, GradeB, GradeC, GradeD, GradeE}

// Grade boundaries sit halfway between integer marks, so no whole-mark score
// lands on one.
const (
	boundaryD = 60.5
	boundaryC = 120.5
	boundaryB = 180.5
	boundaryA = 240.5
)

// AssignGrade maps a score out of 300 to its letter grade.
// Scores outside [0,300] are classified by the same thresholds.
func AssignGrade(score float64) Grade {
	switch {
	case score < boundaryD:
		return GradeE
	case score < boundaryC:
		return GradeD
	case score < boundaryB:
		return GradeC
	case score < boundaryA:
		return GradeB
	default:
		return GradeA
	}
}

// Valid reports whether g is one of A to E.
func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeE:
		return true
	}
	return false
}

// Index returns the grade's position in Grades, or -1.
func (g Grade) Index() int {
	for i, v := range Grades {
		if v == g {
			return i
		}
	}
	return -1
}
