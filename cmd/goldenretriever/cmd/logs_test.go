package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLog = `{"time":"2026-01-02T10:00:00.000Z","level":"INFO","msg":"retriever_built","strategy":"lexical"}
{"time":"2026-01-02T10:00:01.000Z","level":"ERROR","msg":"retrieve_failed","strategy":"fuzzy"}
{"time":"2026-01-02T10:00:02.000Z","level":"DEBUG","msg":"encode_batch","size":64}
`

func TestLogsCmd_TailWithFilters(t *testing.T) {
	// Given: a log file with three entries
	dir := workspace(t)
	path := writeFile(t, filepath.Join(dir, "app.log"), sampleLog)

	// When: tailing errors only
	stdout, stderr, err := execute(t, "logs", "--file", path, "--level", "error", "--no-color")

	// Then: only the error entry is printed
	require.NoError(t, err)
	assert.Contains(t, stderr, "Log file: "+path)
	assert.Contains(t, stdout, "retrieve_failed")
	assert.NotContains(t, stdout, "retriever_built")
	assert.NotContains(t, stdout, "encode_batch")
}

func TestLogsCmd_LineLimitAndPattern(t *testing.T) {
	dir := workspace(t)
	path := writeFile(t, filepath.Join(dir, "app.log"), sampleLog)

	stdout, _, err := execute(t, "logs", "--file", path, "-n", "2", "--filter", "encode", "--no-color")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "encode_batch size=64")
}

func TestLogsCmd_Errors(t *testing.T) {
	dir := workspace(t)
	path := writeFile(t, filepath.Join(dir, "app.log"), sampleLog)

	_, _, err := execute(t, "logs", "--file", filepath.Join(dir, "missing.log"))
	assert.ErrorContains(t, err, "log file not found")

	_, _, err = execute(t, "logs", "--file", path, "--filter", "(")
	assert.ErrorContains(t, err, "invalid filter pattern")

	_, _, err = execute(t, "logs")
	assert.ErrorContains(t, err, "no log file found")
}
