// Package output formats CLI messages and retrieval results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Aman-CERP/goldenretriever/pkg/searcher"
)

// Format selects how results are printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use: text, json)", s)
	}
}

// Writer provides formatted output for CLI.
type Writer struct {
	out io.Writer
}

// New creates a new output Writer.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Status prints a status message with an icon.
// Write errors are ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "   %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with checkmark.
func (w *Writer) Success(msg string) {
	w.Status("✅", msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status("⚠️ ", msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status("❌", msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Code prints an indented block surrounded by blank lines.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}

// QueryResults pairs a query with its ranked results.
type QueryResults struct {
	Query   string            `json:"query"`
	Results []searcher.Result `json:"results"`
}

// Pair zips queries with per-query results. Both slices must have the
// same length.
func Pair(queries []string, results [][]searcher.Result) []QueryResults {
	out := make([]QueryResults, len(queries))
	for i, q := range queries {
		out[i] = QueryResults{Query: q, Results: results[i]}
	}
	return out
}

// Results prints ranked results in the given format.
func (w *Writer) Results(format Format, batch []QueryResults) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batch); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	for i, qr := range batch {
		if i > 0 {
			_, _ = fmt.Fprintln(tw)
		}
		_, _ = fmt.Fprintf(tw, "query: %s\n", qr.Query)
		if len(qr.Results) == 0 {
			_, _ = fmt.Fprintln(tw, "  (no results)")
			continue
		}
		_, _ = fmt.Fprintln(tw, "  RANK\tDOCUMENT\tSCORE")
		for rank, r := range qr.Results {
			_, _ = fmt.Fprintf(tw, "  %d\t%s\t%s\n", rank+1, r.DocumentID, FormatScore(r.Score))
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// FormatScore prints a score with at most four decimals and no trailing zeros.
func FormatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
