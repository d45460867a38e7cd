// Package export renders a validated question set into the tabular import
// formats consumed by the downstream bulk-import tool.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/examtools/examconv/internal/normalize"
	"github.com/examtools/examconv/internal/question"
)

// DefaultHeaders is the fixed header set used when no example template file
// is supplied. Header naming and order are an external contract.
var DefaultHeaders = []string{
	"ID",
	"Title",
	"Category",
	"Type",
	"Post Content",
	"Status",
	"Menu Order",
	"Options",
	"Answer",
}

// HeadersFromExample reads field names from the first row of an example
// output file. Only the header row matters; any data rows are ignored.
// A missing or unreadable file falls back to DefaultHeaders.
func HeadersFromExample(path string) []string {
	if path == "" {
		return DefaultHeaders
	}
	f, err := os.Open(path)
	if err != nil {
		return DefaultHeaders
	}
	defer f.Close()

	row, err := csv.NewReader(f).Read()
	if err != nil || len(row) == 0 {
		return DefaultHeaders
	}
	return row
}

// BuildCSV renders the question set as UTF-8 CSV bytes: header row first,
// one row per question, ascending by question number with menu order
// recomputed as the 1-based rank.
func BuildCSV(set *question.Set, category string, headers []string) ([]byte, error) {
	if len(headers) == 0 {
		headers = DefaultHeaders
	}
	questions := question.RecomputeMenuOrder(set.Questions)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, q := range questions {
		record := make([]string, len(headers))
		fields := rowFields(q, category)
		for i, h := range headers {
			record[i] = fields[h] // headers without a mapped field stay blank
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rowFields maps header names to the rendered values for one question.
func rowFields(q question.Question, category string) map[string]string {
	options := make([]string, 0, 4)
	for _, opt := range q.Options {
		options = append(options, normalize.Normalize(opt, nil))
	}
	for len(options) < 4 {
		options = append(options, "")
	}

	answer := ""
	if q.CorrectIndex >= 0 && q.CorrectIndex < len(options) {
		answer = options[q.CorrectIndex]
	}

	title := normalize.Normalize(q.Title, nil)
	return map[string]string{
		"ID":           "",
		"Title":        title,
		"Category":     normalize.Normalize(category, nil),
		"Type":         "single-choice",
		"Post Content": title,
		"Status":       "publish",
		"Menu Order":   fmt.Sprintf("%d", q.MenuOrder),
		"Options":      joinOptions(options),
		"Answer":       answer,
	}
}

func joinOptions(options []string) string {
	out := ""
	for i, opt := range options {
		if i > 0 {
			out += "|"
		}
		out += opt
	}
	return out
}
