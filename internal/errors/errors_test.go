package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrievalError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("connection refused")

	// When: wrapping with RetrievalError
	re := New(ErrCodeModelLoadFailed, "ollama unreachable", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, re)
	assert.Equal(t, originalErr, errors.Unwrap(re))
	assert.True(t, errors.Is(re, originalErr))
}

func TestRetrievalError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "unknown strategy",
			code:     ErrCodeUnknownStrategy,
			message:  "unknown strategy: tfidf",
			expected: "[ERR_103_UNKNOWN_STRATEGY] unknown strategy: tfidf",
		},
		{
			name:     "invalid k",
			code:     ErrCodeInvalidK,
			message:  "k must be positive",
			expected: "[ERR_402_INVALID_K] k must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestRetrievalError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with same code
	err1 := New(ErrCodeDuplicateID, "duplicate id 1", nil)
	err2 := New(ErrCodeDuplicateID, "duplicate id 7", nil)

	// Then: they match by code, different codes don't
	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, New(ErrCodeMissingKey, "missing", nil)))
}

func TestRetrievalError_CategoryAndSeverityFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
		wantSeverity Severity
	}{
		{ErrCodeUnknownStrategy, CategoryConfig, SeverityFatal},
		{ErrCodeModelRequired, CategoryConfig, SeverityFatal},
		{ErrCodeDimensionMismatch, CategoryConfig, SeverityFatal},
		{ErrCodeModelLoadFailed, CategoryResource, SeverityFatal},
		{ErrCodeDeviceUnavailable, CategoryResource, SeverityFatal},
		{ErrCodeInvalidK, CategoryInput, SeverityError},
		{ErrCodeDuplicateID, CategoryInput, SeverityError},
		{ErrCodeMissingField, CategoryInput, SeverityError},
		{ErrCodeEncodingFailed, CategoryInternal, SeverityError},
		{"BOGUS", CategoryInternal, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
			assert.Equal(t, tt.wantSeverity, err.Severity)
		})
	}
}

func TestRetrievalError_WithDetailAndSuggestion(t *testing.T) {
	// Given: a base error
	err := New(ErrCodeDimensionMismatch, "dimension mismatch", nil)

	// When: adding details and a suggestion
	err = err.WithDetail("document_dims", "256").
		WithDetail("query_dims", "768").
		WithSuggestion("Use models with the same embedding size")

	// Then: both are available
	assert.Equal(t, "256", err.Details["document_dims"])
	assert.Equal(t, "768", err.Details["query_dims"])
	assert.Equal(t, "Use models with the same embedding size", err.Suggestion)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestHelpers_FindCodeThroughWrapping(t *testing.T) {
	// Given: a RetrievalError wrapped by fmt.Errorf
	base := New(ErrCodeDimensionMismatch, "vector has 3 dims, index has 4", nil)
	wrapped := fmt.Errorf("build index: %w", base)

	// Then: code, category and fatality are still visible
	assert.Equal(t, ErrCodeDimensionMismatch, GetCode(wrapped))
	assert.Equal(t, CategoryConfig, GetCategory(wrapped))
	assert.True(t, IsFatal(wrapped))
	assert.True(t, HasCode(wrapped, ErrCodeDimensionMismatch))
	assert.False(t, HasCode(wrapped, ErrCodeInvalidK))
}

func TestHelpers_PlainError(t *testing.T) {
	plain := errors.New("boom")

	assert.Empty(t, GetCode(plain))
	assert.Empty(t, GetCategory(plain))
	assert.False(t, IsFatal(plain))
	assert.False(t, IsFatal(nil))
}

func TestConstructorHelpers(t *testing.T) {
	assert.Equal(t, CategoryConfig, ConfigError("bad", nil).Category)
	assert.Equal(t, CategoryResource, ResourceError("gone", nil).Category)
	assert.Equal(t, CategoryInput, InputError("nope", nil).Category)
	assert.Equal(t, CategoryInternal, InternalError("oops", nil).Category)
	assert.Equal(t, "k=0 is invalid", Newf(ErrCodeInvalidK, "k=%d is invalid", 0).Message)
}

// =============================================================================
// Formatting
// =============================================================================

func TestFormatForCLI_IncludesHintAndCode(t *testing.T) {
	err := New(ErrCodeUnknownStrategy, "unknown strategy: tfidf", nil).
		WithSuggestion("Run 'goldenretriever strategies' to list strategies")

	out := FormatForCLI(err)

	assert.Contains(t, out, "Error: unknown strategy: tfidf")
	assert.Contains(t, out, "Hint: Run 'goldenretriever strategies'")
	assert.Contains(t, out, "Code: ERR_103_UNKNOWN_STRATEGY")
	assert.Empty(t, FormatForCLI(nil))
}

func TestFormatForCLI_WrapsPlainErrors(t *testing.T) {
	out := FormatForCLI(errors.New("disk on fire"))

	assert.Contains(t, out, "Error: disk on fire")
	assert.Contains(t, out, ErrCodeInternal)
}

func TestFormatJSON_RoundTripsFields(t *testing.T) {
	err := New(ErrCodeModelLoadFailed, "model not found", errors.New("404")).
		WithDetail("model", "nomic-embed-text")

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, ErrCodeModelLoadFailed, got["code"])
	assert.Equal(t, "RESOURCE", got["category"])
	assert.Equal(t, "FATAL", got["severity"])
	assert.Equal(t, "404", got["cause"])
}

func TestFormatForLog(t *testing.T) {
	assert.Nil(t, FormatForLog(nil))
	assert.Equal(t, map[string]any{"error": "x"}, FormatForLog(errors.New("x")))

	fields := FormatForLog(New(ErrCodeDuplicateID, "duplicate", nil).WithDetail("id", "3"))
	assert.Equal(t, ErrCodeDuplicateID, fields["error_code"])
	assert.Equal(t, "3", fields["detail_id"])
}
