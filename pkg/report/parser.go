package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/psle/pkg/stats"
)

// Parser extracts Records from results pages. A Parser holds no per-document
// state and is safe for concurrent use if its Reporter is.
type Parser struct {
	config   Config
	identity *regexp.Regexp
	summary  *regexp.Regexp
	reporter Reporter
}

// NewParser creates a parser. A nil reporter logs diagnostics through the
// process logger.
func NewParser(cfg Config, reporter Reporter) (*Parser, error) {
	identity, summary, err := cfg.compile()
	if err != nil {
		return nil, err
	}
	if reporter == nil {
		reporter = LogReporter{}
	}
	return &Parser{
		config:   cfg,
		identity: identity,
		summary:  summary,
		reporter: reporter,
	}, nil
}

// Parse extracts a Record from doc. It never fails: sections that do not
// match are left nil and reported.
func (p *Parser) Parse(doc Document) Record {
	rec, _ := p.ParseReport(doc)
	return rec
}

// ParseReport is Parse that also returns the diagnostics raised for doc.
// Diagnostics still go to the parser's reporter.
func (p *Parser) ParseReport(doc Document) (Record, []Diagnostic) {
	c := &Collector{}
	r := Tee(p.reporter, c)
	report := func(section Section, format string, args ...any) {
		r.Report(Diagnostic{
			DocumentID: doc.ID,
			Section:    section,
			Reason:     fmt.Sprintf(format, args...),
		})
	}

	var rec Record
	page, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		for _, s := range []Section{SectionIdentity, SectionSummary, SectionTable} {
			report(s, "unparseable document: %v", err)
		}
		return rec, c.Diagnostics
	}

	if reason := p.extractIdentity(page, &rec); reason != "" {
		report(SectionIdentity, "%s", reason)
	}
	if reason := p.extractSummary(page, &rec); reason != "" {
		report(SectionSummary, "%s", reason)
	}
	p.extractTable(page, &rec, func(format string, args ...any) {
		report(SectionTable, format, args...)
	})

	return rec, c.Diagnostics
}

// extractIdentity fills the school name and id. It returns the mismatch
// reason, or "" on success.
func (p *Parser) extractIdentity(page *goquery.Document, rec *Record) string {
	sel := page.Find(p.config.HeadingSelector).First()
	if sel.Length() == 0 {
		return fmt.Sprintf("no %q element", p.config.HeadingSelector)
	}

	text := cleanText(sel.Text())
	m := p.identity.FindStringSubmatch(text)
	if m == nil {
		return fmt.Sprintf("no identity match in %q", text)
	}

	name := strings.ToUpper(strings.TrimSpace(m[p.identity.SubexpIndex("name")]))
	id := m[p.identity.SubexpIndex("id")]
	if name == "" || id == "" {
		return fmt.Sprintf("empty identity in %q", text)
	}
	rec.SchoolName = &name
	rec.SchoolID = &id
	return ""
}

// extractSummary fills the examinee count, average score and published
// grade together; either all three are set or none are.
func (p *Parser) extractSummary(page *goquery.Document, rec *Record) string {
	sel := page.Find(p.config.SummarySelector).First()
	if sel.Length() == 0 {
		return fmt.Sprintf("no %q element", p.config.SummarySelector)
	}

	text := cleanText(sel.Text())
	m := p.summary.FindStringSubmatch(text)
	if m == nil {
		return fmt.Sprintf("no summary match in %q", text)
	}

	students, err := strconv.Atoi(m[p.summary.SubexpIndex("students")])
	if err != nil {
		return fmt.Sprintf("bad examinee count: %v", err)
	}
	average, err := strconv.ParseFloat(m[p.summary.SubexpIndex("average")], 64)
	if err != nil {
		return fmt.Sprintf("bad average score: %v", err)
	}
	if average < 0 || average > 300 {
		return fmt.Sprintf("average score %v outside [0,300]", average)
	}
	grade := stats.Grade(strings.ToUpper(m[p.summary.SubexpIndex("grade")]))
	if !grade.Valid() {
		return fmt.Sprintf("unknown grade %q", grade)
	}

	rec.NumStudents = &students
	rec.AverageScore = &average
	rec.Grade = &grade
	return ""
}

// extractTable reads the grade table rows. Each bad row is reported and
// dropped on its own.
func (p *Parser) extractTable(page *goquery.Document, rec *Record, report func(format string, args ...any)) {
	rows := page.Find(p.config.RowSelector)
	if limit := p.config.RowLimit; limit > 0 && rows.Length() > limit {
		rows = rows.Slice(0, limit)
	}
	if rows.Length() <= p.config.RowOffset {
		report("found %d rows, need more than %d", rows.Length(), p.config.RowOffset)
		return
	}

	rows.Each(func(i int, tr *goquery.Selection) {
		if i < p.config.RowOffset {
			return
		}
		cells := tr.Find(p.config.CellSelector)
		if cells.Length() == 0 {
			return
		}

		row := TableRow{Label: cleanText(cells.First().Text())}
		var fault string
		cells.Slice(1, cells.Length()).EachWithBreak(func(j int, td *goquery.Selection) bool {
			raw := cleanText(td.Text())
			n, err := strconv.Atoi(raw)
			switch {
			case err != nil:
				fault = fmt.Sprintf("row %d (%q) cell %d: %q is not an integer", i, row.Label, j+1, raw)
			case n < 0:
				fault = fmt.Sprintf("row %d (%q) cell %d: negative count %d", i, row.Label, j+1, n)
			default:
				row.Counts = append(row.Counts, n)
				return true
			}
			return false
		})
		if fault != "" {
			report("%s", fault)
			return
		}
		rec.GradeDistribution = append(rec.GradeDistribution, row)
	})
}

// cleanText collapses runs of whitespace to a single space.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
