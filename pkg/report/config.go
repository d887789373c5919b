package report

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Config describes where each section lives on a results page and how it is
// matched. The defaults fit the NECTA PSLE 2022 results pages.
type Config struct {
	// HeadingSelector selects the element holding the school identity.
	HeadingSelector string `mapstructure:"heading_selector" yaml:"heading_selector" validate:"required"`
	// IdentityPattern must define the named groups "name" and "id".
	IdentityPattern string `mapstructure:"identity_pattern" yaml:"identity_pattern" validate:"required"`

	// SummarySelector selects the element holding the summary line.
	SummarySelector string `mapstructure:"summary_selector" yaml:"summary_selector" validate:"required"`
	// SummaryPattern must define the named groups "students", "average" and
	// "grade".
	SummaryPattern string `mapstructure:"summary_pattern" yaml:"summary_pattern" validate:"required"`

	RowSelector  string `mapstructure:"row_selector" yaml:"row_selector" validate:"required"`
	CellSelector string `mapstructure:"cell_selector" yaml:"cell_selector" validate:"required"`
	// RowLimit caps how many rows are read from the top of the document,
	// counting the skipped ones. 0 reads every row.
	RowLimit int `mapstructure:"row_limit" yaml:"row_limit" validate:"gte=0"`
	// RowOffset is the number of leading rows to skip. The first table on a
	// results page opens with a malformed header row.
	RowOffset int `mapstructure:"row_offset" yaml:"row_offset" validate:"gte=0"`
}

// DefaultConfig returns the NECTA PSLE page layout.
func DefaultConfig() Config {
	return Config{
		HeadingSelector: "h3",
		IdentityPattern: `(?P<name>.*\S)\s*(?:PRIMARY SCHOOL|SEMINARY)\W+(?P<id>\w+)`,
		SummarySelector: "font",
		SummaryPattern:  `WALIOFANYA MTIHANI\D*(?P<students>\d+)\s*WASTANI WA SHULE\D*(?P<average>[\d.]+)\s*DARAJA\W+(?P<grade>\w)`,
		RowSelector:     "tr",
		CellSelector:    "td",
		RowLimit:        4,
		RowOffset:       1,
	}
}

var configValidate = validator.New()

// compile validates cfg and compiles its patterns, checking that each
// defines the groups the parser reads.
func (cfg Config) compile() (identity, summary *regexp.Regexp, err error) {
	if err := configValidate.Struct(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid parser config: %w", err)
	}
	identity, err = compileWithGroups(cfg.IdentityPattern, "name", "id")
	if err != nil {
		return nil, nil, fmt.Errorf("identity pattern: %w", err)
	}
	summary, err = compileWithGroups(cfg.SummaryPattern, "students", "average", "grade")
	if err != nil {
		return nil, nil, fmt.Errorf("summary pattern: %w", err)
	}
	return identity, summary, nil
}

func compileWithGroups(pattern string, groups ...string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		if re.SubexpIndex(g) < 0 {
			return nil, fmt.Errorf("missing named group %q", g)
		}
	}
	return re, nil
}
