package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/psle/internal/logger"
	"github.com/jmylchreest/psle/pkg/outlier"
	"github.com/jmylchreest/psle/pkg/psle"
)

var outliersCmd = &cobra.Command{
	Use:   "outliers <results-file>",
	Short: "Flag schools with unusual values",
	Long: `Flag schools whose value for a numeric field is anomalous within a
harvested dataset.

The input is the output of scrape or parse in json or jsonl format. Schools
missing the field are left out of the calculation.

Methods:
  sd   further than --n population standard deviations from the mean
  iqr  outside the Tukey fences Q1 - 1.5·IQR and Q3 + 1.5·IQR

Examples:
  psle outliers --field average_score schools.jsonl
  psle outliers --field num_students --method sd --n 2 schools.json`,
	Args: cobra.ExactArgs(1),
	RunE: runOutliers,
}

func init() {
	rootCmd.AddCommand(outliersCmd)

	outliersCmd.Flags().String("field", "average_score", "field to examine: average_score, num_students, approx_spread")
	outliersCmd.Flags().String("method", "iqr", "detection method: sd, iqr")
	outliersCmd.Flags().Float64("n", 3, "standard deviations for the sd method")
}

// flagged is one outlying school.
type flagged struct {
	DocumentID string  `json:"document_id" yaml:"document_id"`
	SchoolID   *string `json:"school_id" yaml:"school_id"`
	SchoolName *string `json:"school_name" yaml:"school_name"`
	Field      string  `json:"field" yaml:"field"`
	Value      float64 `json:"value" yaml:"value"`
}

// fieldValue extracts a numeric field from a result.
type fieldValue func(*psle.Result) (float64, bool)

var outlierFields = map[string]fieldValue{
	"average_score": func(r *psle.Result) (float64, bool) {
		if r.Record.AverageScore == nil {
			return 0, false
		}
		return *r.Record.AverageScore, true
	},
	"num_students": func(r *psle.Result) (float64, bool) {
		if r.Record.NumStudents == nil {
			return 0, false
		}
		return float64(*r.Record.NumStudents), true
	},
	"approx_spread": func(r *psle.Result) (float64, bool) {
		if r.Derived.ApproxSpread == nil {
			return 0, false
		}
		return *r.Derived.ApproxSpread, true
	},
}

func runOutliers(cmd *cobra.Command, args []string) error {
	field, _ := cmd.Flags().GetString("field")
	method, _ := cmd.Flags().GetString("method")
	n, _ := cmd.Flags().GetFloat64("n")

	get, ok := outlierFields[field]
	if !ok {
		return fmt.Errorf("unsupported field: %s", field)
	}

	results, err := readResults(args[0])
	if err != nil {
		return err
	}

	var (
		values []float64
		owners []*psle.Result
	)
	for _, r := range results {
		if v, ok := get(r); ok {
			values = append(values, v)
			owners = append(owners, r)
		}
	}

	var (
		flags  []bool
		bounds outlier.Bounds
	)
	switch method {
	case "sd":
		flags = outlier.SD(values, n)
		bounds, ok = outlier.SDBounds(values, n)
	case "iqr":
		flags = outlier.IQR(values)
		bounds, ok = outlier.IQRBounds(values)
	default:
		return fmt.Errorf("unsupported method: %s", method)
	}

	if ok {
		logger.Info("outlier bounds",
			"field", field,
			"method", method,
			"values", len(values),
			"skipped", len(results)-len(values),
			"lower", bounds.Lower,
			"upper", bounds.Upper)
	} else {
		logger.Warn("no values to examine", "field", field, "records", len(results))
	}

	w, closeOutput, err := openWriter(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = closeOutput() }()

	for _, i := range outlier.Indices(flags) {
		r := owners[i]
		if err := w.Write(flagged{
			DocumentID: r.DocumentID,
			SchoolID:   r.Record.SchoolID,
			SchoolName: r.Record.SchoolName,
			Field:      field,
			Value:      values[i],
		}); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	return closeOutput()
}

// readResults loads harvested results from a JSON array or a JSONL stream.
func readResults(path string) ([]*psle.Result, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads user-specified input file
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeResults(data)
}

func decodeResults(data []byte) ([]*psle.Result, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var results []*psle.Result
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
		return results, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var r psle.Result
		err := dec.Decode(&r)
		if errors.Is(err, io.EOF) {
			return results, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode result %d: %w", len(results)+1, err)
		}
		results = append(results, &r)
	}
}
