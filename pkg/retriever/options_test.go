package retriever

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/goldenretriever/internal/embed"
	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
)

func TestParseStrategy(t *testing.T) {
	for _, s := range Strategies {
		got, err := ParseStrategy(" " + string(s) + " ")
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, bad := range []string{"", "bm25", "Lexical", "vector"} {
		_, err := ParseStrategy(bad)
		assert.Equal(t, rerrors.ErrCodeUnknownStrategy, rerrors.GetCode(err), bad)
	}
}

func TestStrategy_IsVector(t *testing.T) {
	assert.False(t, Lexical.IsVector())
	assert.False(t, Fuzzy.IsVector())
	assert.True(t, VectorSymmetric.IsVector())
	assert.True(t, VectorDual.IsVector())
}

func TestFilterOptions(t *testing.T) {
	opts := Options{
		"on":                   []string{"content"},
		"saturation_parameter": 1.2,
		"model_name":           "static",
		"fuzzer":               "ratio",
		"unknown":              true,
	}

	tests := []struct {
		strategy Strategy
		kept     []string
		dropped  []string
	}{
		{Lexical, []string{"on", "saturation_parameter"}, []string{"fuzzer", "model_name", "unknown"}},
		{Fuzzy, []string{"fuzzy_scoring_function", "on"}, []string{"model_name", "saturation_parameter", "unknown"}},
		{VectorSymmetric, []string{"model_name", "on"}, []string{"fuzzer", "saturation_parameter", "unknown"}},
		{VectorDual, []string{"on"}, []string{"fuzzer", "model_name", "saturation_parameter", "unknown"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			kept, dropped := FilterOptions(tt.strategy, opts)

			keys := make([]string, 0, len(kept))
			for k := range kept {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.kept, keys)
			assert.Equal(t, tt.dropped, dropped)
		})
	}
}

func TestFilterOptions_CanonicalKeyWinsOverAlias(t *testing.T) {
	kept, _ := FilterOptions(Fuzzy, Options{"fuzzer": "ratio", "fuzzy_scoring_function": "WRatio"})

	assert.Equal(t, "WRatio", kept["fuzzy_scoring_function"])
	assert.NotContains(t, kept, "fuzzer")
}

func TestRecognizedOptions_IncludeCommonKeys(t *testing.T) {
	for _, s := range Strategies {
		keys := RecognizedOptions(s)
		assert.Subset(t, keys, []string{"key", "on", "use_accelerated_device", "workers"})
		assert.IsNonDecreasing(t, keys)
	}
}

func TestResolveSettings_ConvertsStrings(t *testing.T) {
	// Given: every value as a command-line string
	opts := Options{
		"on":                     "title, content",
		"use_accelerated_device": "true",
		"workers":                "3",
		"document_model":         "static-64",
		"query_model":            "static-64",
		"provider":               "static",
		"normalize":              "1",
		"batch_size":             "16",
		"query_cache_size":       float64(100),
	}

	// When: resolving for vector-dual
	cfg, err := resolveSettings(VectorDual, opts)
	require.NoError(t, err)

	// Then: values are typed
	assert.Equal(t, []string{"title", "content"}, cfg.on)
	assert.True(t, cfg.accelerated)
	assert.Equal(t, 3, cfg.workers)
	assert.Equal(t, embed.ProviderStatic, cfg.provider)
	assert.True(t, cfg.normalize)
	assert.Equal(t, 16, cfg.batchSize)
	assert.Equal(t, 100, cfg.cacheSize)
}

func TestResolveSettings_Defaults(t *testing.T) {
	cfg, err := resolveSettings(Lexical, nil)
	require.NoError(t, err)

	assert.Equal(t, "id", cfg.key)
	assert.Equal(t, []string{"text"}, cfg.on)
	assert.InDelta(t, 1.5, cfg.saturation, 1e-9)
	assert.InDelta(t, 0.75, cfg.lengthNorm, 1e-9)
	assert.False(t, cfg.saturationSet)
}

func TestResolveSettings_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		opts     Options
	}{
		{"empty on", Lexical, Options{"on": []string{}}},
		{"negative workers", Fuzzy, Options{"workers": -1}},
		{"fractional workers", Fuzzy, Options{"workers": 1.5}},
		{"negative saturation", Lexical, Options{"saturation_parameter": -0.1}},
		{"length normalization above one", Lexical, Options{"length_normalization": 2}},
		{"NaN saturation", Lexical, Options{"saturation_parameter": "NaN"}},
		{"infinite saturation", Lexical, Options{"saturation_parameter": "-Inf"}},
		{"zero batch size", VectorSymmetric, Options{"batch_size": 0}},
		{"on of wrong type", Fuzzy, Options{"on": 42}},
		{"bool of wrong type", Fuzzy, Options{"use_accelerated_device": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveSettings(tt.strategy, tt.opts)
			assert.Equal(t, rerrors.ErrCodeConfigInvalid, rerrors.GetCode(err))
		})
	}
}
