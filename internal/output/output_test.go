package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type testItem struct {
	Name  string   `json:"name" yaml:"name"`
	Score *float64 `json:"score" yaml:"score"`
}

func score(v float64) *float64 { return &v }

// --- ParseFormat Tests ---

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"json", "JSONL", " yaml "} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q) error = %v", in, err)
		}
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Error("expected error for csv")
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("unsupported"))
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

// --- JSON Tests ---

func TestJSON_WritesArrayOnClose(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON)

	_ = w.Write(testItem{Name: "first", Score: score(150.5)})
	_ = w.Write(testItem{Name: "second"})
	if buf.Len() != 0 {
		t.Error("JSON output should be buffered until Close")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var got []testItem
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(got) != 2 || got[0].Name != "first" || *got[0].Score != 150.5 {
		t.Errorf("unexpected result: %+v", got)
	}
	// Missing values are written as null, not zero.
	if !strings.Contains(buf.String(), `"score": null`) {
		t.Errorf("expected null score, got %s", buf.String())
	}
}

func TestJSON_EmptyIsEmptyArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSON)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected [], got %q", buf.String())
	}
}

// --- JSONL Tests ---

func TestJSONL_StreamsLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSONL)

	_ = w.Write(testItem{Name: "first"})
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Error("expected each JSONL item to be flushed with a newline")
	}
	_ = w.Write(testItem{Name: "second"})
	_ = w.Close()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for i, line := range lines {
		var item testItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestJSONL_EmptyWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatJSONL)
	_ = w.Close()
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

// --- YAML Tests ---

func TestYAML_WritesListOnClose(t *testing.T) {
	buf := &bytes.Buffer{}
	w, _ := NewWriter(buf, FormatYAML)

	_ = w.Write(testItem{Name: "first", Score: score(1)})
	_ = w.Write(testItem{Name: "second"})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var got []testItem
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(got) != 2 || got[1].Score != nil {
		t.Errorf("unexpected result: %+v", got)
	}
}
