package report

import (
	"github.com/jmylchreest/psle/internal/logger"
)

// Section names a part of a results page.
type Section string

const (
	SectionIdentity Section = "identity"
	SectionSummary  Section = "summary"
	SectionTable    Section = "table"
)

// Diagnostic describes a section of a document that could not be extracted.
type Diagnostic struct {
	DocumentID string  `json:"document_id" yaml:"document_id"`
	Section    Section `json:"section" yaml:"section"`
	Reason     string  `json:"reason" yaml:"reason"`
}

// Reporter receives diagnostics from the parser.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// LogReporter writes diagnostics to the process logger at warn level.
type LogReporter struct{}

// Report logs d.
func (LogReporter) Report(d Diagnostic) {
	logger.Warn("section mismatch",
		"document", d.DocumentID,
		"section", string(d.Section),
		"reason", d.Reason)
}

// Collector keeps every diagnostic it receives. It is not safe for concurrent
// use; give each parse its own Collector.
type Collector struct {
	Diagnostics []Diagnostic
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Tee forwards every diagnostic to each reporter in order.
func Tee(reporters ...Reporter) Reporter {
	return ReporterFunc(func(d Diagnostic) {
		for _, r := range reporters {
			if r != nil {
				r.Report(d)
			}
		}
	})
}
