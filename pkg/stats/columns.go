package stats

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Metric is what a dataset column measures.
type Metric int

const (
	MetricOther Metric = iota
	// MetricPupils is a pupil count for one grade level, e.g. "Std 1-Pupils".
	MetricPupils
	// MetricBooks is a book count for one grade level and subject,
	// e.g. "Std 1-English".
	MetricBooks
	// MetricPBR is a precomputed pupil-to-book ratio column, e.g. "Std 1-PBR".
	MetricPBR
	// MetricAge is a pupil count for one age bucket, e.g. "Below 6", "12".
	MetricAge
)

func (m Metric) String() string {
	switch m {
	case MetricPupils:
		return "pupils"
	case MetricBooks:
		return "books"
	case MetricPBR:
		return "pbr"
	case MetricAge:
		return "age"
	default:
		return "other"
	}
}

// Bound marks how an age column relates to its number.
type Bound int

const (
	BoundExact Bound = iota
	BoundBelow
	BoundAbove
)

// Column is a dataset column name parsed into its structured key.
type Column struct {
	Name   string
	Metric Metric

	// Level is the grade level for pupil, book and PBR columns ("Std 1").
	Level string
	// Subject is the book subject for MetricBooks columns.
	Subject string

	// Age and Bound describe MetricAge columns.
	Age   int
	Bound Bound
}

var (
	belowRe   = regexp.MustCompile(`^Below\s+(\d+)`)
	aboveRe   = regexp.MustCompile(`^Above\s+(\d+)`)
	leadingRe = regexp.MustCompile(`^(\d+)`)
)

// ParseColumn derives the structured key for a column name.
//
//	"Std 1-Pupils"  -> pupils, level "Std 1"
//	"Std 1-PBR"     -> pbr, level "Std 1"
//	"Std 1-English" -> books, level "Std 1", subject "English"
//	"Below 6"       -> age 6, below
//	"Above 13"      -> age 13, above
//	"12 Boys"       -> age 12, exact
func ParseColumn(name string) Column {
	c := Column{Name: name}
	trimmed := strings.TrimSpace(name)

	if m := belowRe.FindStringSubmatch(trimmed); m != nil {
		c.Metric, c.Bound = MetricAge, BoundBelow
		c.Age, _ = strconv.Atoi(m[1])
		return c
	}
	if m := aboveRe.FindStringSubmatch(trimmed); m != nil {
		c.Metric, c.Bound = MetricAge, BoundAbove
		c.Age, _ = strconv.Atoi(m[1])
		return c
	}
	if m := leadingRe.FindStringSubmatch(trimmed); m != nil {
		age, err := strconv.Atoi(m[1])
		if err == nil {
			c.Metric, c.Bound, c.Age = MetricAge, BoundExact, age
			return c
		}
	}

	level, rest, ok := strings.Cut(trimmed, "-")
	level, rest = strings.TrimSpace(level), strings.TrimSpace(rest)
	if !ok || level == "" || rest == "" {
		return c
	}
	c.Level = level
	switch {
	case strings.Contains(rest, "Pupils"):
		c.Metric = MetricPupils
	case strings.Contains(rest, "PBR"):
		c.Metric = MetricPBR
	default:
		c.Metric = MetricBooks
		c.Subject = rest
	}
	return c
}

// EffectiveAge is the single age an age column stands for: one below a
// "Below N" bound, one above an "Above N" bound.
func (c Column) EffectiveAge() int {
	switch c.Bound {
	case BoundBelow:
		return c.Age - 1
	case BoundAbove:
		return c.Age + 1
	default:
		return c.Age
	}
}

// Cell is one parsed column with its value.
type Cell struct {
	Column Column
	Value  float64
}

// Row is one dataset row with its column names already parsed, ordered by
// column name so estimators are deterministic.
type Row []Cell

// NewRow parses every column name of a name -> value mapping.
func NewRow(values map[string]float64) Row {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	row := make(Row, 0, len(names))
	for _, name := range names {
		row = append(row, Cell{Column: ParseColumn(name), Value: values[name]})
	}
	return row
}

// Filter returns the cells measuring metric m.
func (r Row) Filter(m Metric) Row {
	var out Row
	for _, c := range r {
		if c.Column.Metric == m {
			out = append(out, c)
		}
	}
	return out
}
