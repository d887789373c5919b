// Package output serialises harvested records.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatJSONL, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single item.
	Write(v any) error

	// Close writes anything buffered.
	Close() error
}

// NewWriter creates a writer for the specified format. JSONL streams each item
// as it is written; JSON and YAML buffer items and emit a single list on Close.
func NewWriter(w io.Writer, format Format) (Writer, error) {
	bw := bufio.NewWriter(w)
	switch format {
	case FormatJSON:
		return &listWriter{w: bw, encode: encodeJSON}, nil
	case FormatYAML:
		return &listWriter{w: bw, encode: encodeYAML}, nil
	case FormatJSONL:
		return &jsonlWriter{w: bw, enc: json.NewEncoder(bw)}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

type jsonlWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

func (j *jsonlWriter) Write(v any) error {
	if err := j.enc.Encode(v); err != nil {
		return err
	}
	return j.w.Flush()
}

func (j *jsonlWriter) Close() error {
	return j.w.Flush()
}

type listWriter struct {
	w      *bufio.Writer
	items  []any
	encode func(io.Writer, []any) error
}

func (l *listWriter) Write(v any) error {
	l.items = append(l.items, v)
	return nil
}

func (l *listWriter) Close() error {
	items := l.items
	if items == nil {
		items = []any{}
	}
	if err := l.encode(l.w, items); err != nil {
		return err
	}
	l.items = nil
	return l.w.Flush()
}

func encodeJSON(w io.Writer, items []any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func encodeYAML(w io.Writer, items []any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return err
	}
	return enc.Close()
}
