package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/goldenretriever/pkg/searcher"
)

func TestWriter_StatusHelpers(t *testing.T) {
	tests := []struct {
		name  string
		write func(w *Writer)
		want  string
	}{
		{"status with icon", func(w *Writer) { w.Status("🔍", "Loading corpus...") }, "🔍 Loading corpus...\n"},
		{"status without icon", func(w *Writer) { w.Status("", "detail") }, "   detail\n"},
		{"statusf", func(w *Writer) { w.Statusf("•", "%d documents", 3) }, "• 3 documents\n"},
		{"success", func(w *Writer) { w.Successf("wrote %s", "cfg") }, "✅ wrote cfg\n"},
		{"warning", func(w *Writer) { w.Warning("careful") }, "⚠️  careful\n"},
		{"error", func(w *Writer) { w.Errorf("failed: %v", "x") }, "❌ failed: x\n"},
		{"newline", func(w *Writer) { w.Newline() }, "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.write(New(buf))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriter_Code_IndentsLines(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Code("retrieval:\n  strategy: fuzzy")

	assert.Equal(t, "\n  retrieval:\n    strategy: fuzzy\n\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestWriter_Results_Text(t *testing.T) {
	// Given: results for two queries, one empty
	batch := Pair([]string{"paris", "xyzzy"}, [][]searcher.Result{
		{{DocumentID: "0", Score: 0.5}, {DocumentID: "12", Score: 0.25}},
		{},
	})

	// When: printing as text
	buf := &bytes.Buffer{}
	require.NoError(t, New(buf).Results(FormatText, batch))

	// Then: a ranked table per query
	want := "query: paris\n" +
		"  RANK  DOCUMENT  SCORE\n" +
		"  1     0         0.5\n" +
		"  2     12        0.25\n" +
		"\n" +
		"query: xyzzy\n" +
		"  (no results)\n"
	assert.Equal(t, want, buf.String())
}

func TestWriter_Results_JSON(t *testing.T) {
	// Given: one query with one result
	batch := Pair([]string{"paris"}, [][]searcher.Result{{{DocumentID: "2", Score: 87}}})

	// When: printing as JSON
	buf := &bytes.Buffer{}
	require.NoError(t, New(buf).Results(FormatJSON, batch))

	// Then: it decodes back to the same shape
	var decoded []QueryResults
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, batch, decoded)
	assert.Contains(t, buf.String(), `"document_id": "2"`)
}

func TestFormatScore(t *testing.T) {
	tests := map[float64]string{
		0:          "0",
		87:         "87",
		0.5:        "0.5",
		1.23456789: "1.2346",
		-0.1:       "-0.1",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatScore(in))
	}
}
