package retriever

import (
	"context"
	"errors"
	"math"
	"runtime"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/goldenretriever/internal/embed"
	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/pkg/document"
	"github.com/Aman-CERP/goldenretriever/pkg/searcher"
)

func parisDocs() document.Collection {
	return document.Collection{
		document.New("0", map[string]string{"content": "Paris is the capital and most populous city of France"}),
		document.New("1", map[string]string{"content": "Paris has been one of Europe major centres of finance, diplomacy , commerce , fashion , gastronomy , science , and arts."}),
		document.New("2", map[string]string{"content": "The City of Paris is the centre and seat of government of the region and province of Île-de-France ."}),
	}
}

// optionsFor returns working options for every strategy over parisDocs.
func optionsFor(s Strategy) Options {
	opts := Options{"on": []string{"content"}}
	switch s {
	case VectorSymmetric:
		opts["model_name"] = "static-256"
	case VectorDual:
		opts["document_model"] = "static-256"
		opts["query_model"] = "static-256"
	}
	return opts
}

func newParis(t *testing.T, s Strategy, extra Options) *Retriever {
	t.Helper()
	opts := optionsFor(s)
	for k, v := range extra {
		opts[k] = v
	}
	r, err := New(context.Background(), parisDocs(), string(s), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func resultIDs(results []searcher.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.DocumentID
	}
	return out
}

// =============================================================================
// Scenarios
// =============================================================================

func TestLexical_ExactTermsFindDocument(t *testing.T) {
	for _, backend := range []string{"memory", "bleve", "sqlite", "tfidf"} {
		t.Run(backend, func(t *testing.T) {
			// Given: the Paris corpus indexed lexically
			r := newParis(t, Lexical, Options{"lexical_backend": backend})

			// When: querying for terms only document 1 contains
			results, err := r.RetrieveOne(context.Background(), "finance diplomacy commerce", 1)
			require.NoError(t, err)

			// Then: document 1 is the top result
			require.Len(t, results, 1)
			assert.Equal(t, "1", results[0].DocumentID)
		})
	}
}

func TestLexical_SaturationParameterIsHonoured(t *testing.T) {
	docs := document.Collection{
		document.New("a", map[string]string{"content": "wine wine wine wine cheese"}),
		document.New("b", map[string]string{"content": "wine bread"}),
	}
	scores := func(k1 any) []searcher.Result {
		r, err := New(context.Background(), docs, "lexical", Options{"on": "content", "saturation_parameter": k1})
		require.NoError(t, err)
		defer func() { _ = r.Close() }()
		results, err := r.RetrieveOne(context.Background(), "wine", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		return results
	}

	// Given: k1 = 0 and the default k1 = 1.5
	presence := scores("0")
	standard := scores(1.5)

	// Then: k1 = 0 ignores repetition, so both documents tie
	assert.Equal(t, []string{"a", "b"}, resultIDs(presence))
	assert.InDelta(t, presence[0].Score, presence[1].Score, 1e-12)

	// And: k1 = 1.5 rewards the repeated term
	assert.Equal(t, "a", standard[0].DocumentID)
	assert.Greater(t, standard[0].Score, standard[1].Score)
	assert.NotEqual(t, presence[0].Score, standard[0].Score)
}

func TestFuzzy_TypoReturnsAllDocuments(t *testing.T) {
	// Given: the Paris corpus with the default fuzzy scorer
	r := newParis(t, Fuzzy, nil)

	// When: querying with a typo
	results, err := r.RetrieveOne(context.Background(), "pariss", 3)
	require.NoError(t, err)

	// Then: every document comes back with a score in [0, 100]
	require.Len(t, results, 3)
	assert.ElementsMatch(t, []string{"0", "1", "2"}, resultIDs(results))
	for _, res := range results {
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 100.0)
	}
}

func TestVectorSymmetric_ExactTextRoundTrip(t *testing.T) {
	for _, backend := range []string{"flat", "hnsw"} {
		t.Run(backend, func(t *testing.T) {
			// Given: the Paris corpus encoded with one shared encoder
			r := newParis(t, VectorSymmetric, Options{"vector_backend": backend})
			text := parisDocs()[2].Fields["content"]

			// When: querying with document 2's exact text
			results, err := r.RetrieveOne(context.Background(), text, 1)
			require.NoError(t, err)

			// Then: document 2 is nearest, at distance zero
			require.Len(t, results, 1)
			assert.Equal(t, "2", results[0].DocumentID)
			assert.InDelta(t, 0, results[0].Score, 1e-6)
		})
	}
}

func TestVectorDual_DimensionMismatchIsConfigError(t *testing.T) {
	// Given: document and query encoders with different output lengths
	opts := Options{
		"on":             []string{"content"},
		"document_model": "static-128",
		"query_model":    "static-256",
	}

	// When: constructing the retriever
	r, err := New(context.Background(), parisDocs(), "vector-dual", opts)

	// Then: construction fails with a fatal configuration error
	assert.Nil(t, r)
	require.Error(t, err)
	assert.Equal(t, rerrors.ErrCodeDimensionMismatch, rerrors.GetCode(err))
	assert.Equal(t, rerrors.CategoryConfig, rerrors.GetCategory(err))
	assert.True(t, rerrors.IsFatal(err))
}

func TestVectorDual_MismatchDetectedBeforeIndexing(t *testing.T) {
	// Given: a loader that records document encoding calls
	var mu sync.Mutex
	encoded := 0
	loader := func(ctx context.Context, spec embed.Spec) (embed.Embedder, error) {
		dims, err := embed.ParseStaticModel(spec.Model)
		if err != nil {
			return nil, err
		}
		return &recordingEmbedder{StaticEmbedder: embed.NewStaticEmbedder(dims), onBatch: func(n int) {
			mu.Lock()
			encoded += n
			mu.Unlock()
		}}, nil
	}
	opts := Options{"on": "content", "document_model": "static-64", "query_model": "static-32"}

	// When: constructing
	_, err := New(context.Background(), parisDocs(), "vector-dual", opts, WithEncoderLoader(loader))

	// Then: no document was encoded
	assert.Equal(t, rerrors.ErrCodeDimensionMismatch, rerrors.GetCode(err))
	assert.Zero(t, encoded)
}

// =============================================================================
// Properties
// =============================================================================

func TestRetrieve_Properties(t *testing.T) {
	queries := []string{"paris", "finance diplomacy commerce", "government of the region", "zzz"}
	known := parisDocs().IDs()

	for _, s := range Strategies {
		t.Run(string(s), func(t *testing.T) {
			r := newParis(t, s, nil)
			ctx := context.Background()

			for _, q := range queries {
				var prev []searcher.Result
				for k := 1; k <= 4; k++ {
					results, err := r.RetrieveOne(ctx, q, k)
					require.NoError(t, err)

					// At most k results, every id from the collection.
					assert.LessOrEqual(t, len(results), k)
					for _, res := range results {
						assert.Contains(t, known, res.DocumentID)
					}

					// Deterministic.
					again, err := r.RetrieveOne(ctx, q, k)
					require.NoError(t, err)
					assert.Equal(t, results, again)

					// Top-(k-1) is a prefix of top-k.
					if prev != nil {
						require.GreaterOrEqual(t, len(results), len(prev))
						assert.Equal(t, prev, results[:len(prev)], "query %q k=%d", q, k)
					}
					prev = results
				}
			}
		})
	}
}

func TestLexical_AbsentDocumentsNeverReturned(t *testing.T) {
	r := newParis(t, Lexical, nil)

	results, err := r.RetrieveOne(context.Background(), "fashion", 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, resultIDs(results))
}

func TestFuzzy_AlwaysReturnsMinKCorpus(t *testing.T) {
	r := newParis(t, Fuzzy, Options{"fuzzy_scoring_function": "ratio"})

	for k := 1; k <= 5; k++ {
		results, err := r.RetrieveOne(context.Background(), "qqqq", k)
		require.NoError(t, err)
		assert.Len(t, results, min(k, 3))
	}
}

func TestRetrieve_BatchMatchesSingleQueries(t *testing.T) {
	for _, s := range Strategies {
		t.Run(string(s), func(t *testing.T) {
			// Given: a batch of queries larger than the encode batch size
			r := newParis(t, s, Options{"workers": 2})
			ctx := context.Background()
			queries := []string{"paris", "france", "fashion", "capital city", "seat of government"}

			// When: retrieving as a batch
			batch, err := r.Retrieve(ctx, queries, 2, WithBatchSize(2))
			require.NoError(t, err)

			// Then: each slot equals the single-query answer, in input order
			require.Len(t, batch, len(queries))
			for i, q := range queries {
				single, err := r.RetrieveOne(ctx, q, 2)
				require.NoError(t, err)
				assert.Equal(t, single, batch[i], "query %q", q)
			}
		})
	}
}

func TestVector_ResultsAreDistancesAscending(t *testing.T) {
	r := newParis(t, VectorSymmetric, Options{"normalize": true})

	results, err := r.RetrieveOne(context.Background(), "capital of France", 3)
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.True(t, slices.IsSortedFunc(results, func(a, b searcher.Result) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return 0
	}))
	assert.Equal(t, searcher.LowerIsBetter, r.Direction())
}

// =============================================================================
// Errors
// =============================================================================

func TestNew_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		opts     Options
		code     string
	}{
		{name: "unknown strategy", strategy: "bm25", opts: Options{}, code: rerrors.ErrCodeUnknownStrategy},
		{name: "symmetric without model", strategy: "vector-symmetric", opts: Options{"on": "content"}, code: rerrors.ErrCodeModelRequired},
		{name: "dual without query model", strategy: "vector-dual", opts: Options{"on": "content", "document_model": "static"}, code: rerrors.ErrCodeModelRequired},
		{name: "unknown scorer", strategy: "fuzzy", opts: Options{"fuzzy_scoring_function": "soundex"}, code: rerrors.ErrCodeConfigInvalid},
		{name: "unknown lexical backend", strategy: "lexical", opts: Options{"lexical_backend": "lucene"}, code: rerrors.ErrCodeConfigInvalid},
		{name: "unknown vector backend", strategy: "vector-symmetric", opts: Options{"model_name": "static", "vector_backend": "faiss"}, code: rerrors.ErrCodeConfigInvalid},
		{name: "bad option type", strategy: "lexical", opts: Options{"saturation_parameter": "high"}, code: rerrors.ErrCodeConfigInvalid},
		{name: "NaN saturation string", strategy: "lexical", opts: Options{"saturation_parameter": "NaN"}, code: rerrors.ErrCodeConfigInvalid},
		{name: "NaN saturation value", strategy: "lexical", opts: Options{"saturation_parameter": math.NaN()}, code: rerrors.ErrCodeConfigInvalid},
		{name: "infinite saturation", strategy: "lexical", opts: Options{"saturation_parameter": "+Inf"}, code: rerrors.ErrCodeConfigInvalid},
		{name: "NaN length normalization", strategy: "lexical", opts: Options{"length_normalization": "nan"}, code: rerrors.ErrCodeConfigInvalid},
		{name: "unknown provider", strategy: "vector-symmetric", opts: Options{"model_name": "m", "provider": "mlx"}, code: rerrors.ErrCodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), parisDocs(), tt.strategy, tt.opts)

			require.Error(t, err)
			assert.Equal(t, tt.code, rerrors.GetCode(err))
			assert.True(t, rerrors.IsFatal(err))
		})
	}
}

func TestNew_ModelLoadFailureIsResourceError(t *testing.T) {
	_, err := New(context.Background(), parisDocs(), "vector-symmetric",
		Options{"on": "content", "model_name": "all-mpnet-base-v2"})

	assert.Equal(t, rerrors.ErrCodeModelLoadFailed, rerrors.GetCode(err))
	assert.Equal(t, rerrors.CategoryResource, rerrors.GetCategory(err))
}

func TestNew_AcceleratedDeviceUnavailable(t *testing.T) {
	// Given: a process limited to one CPU
	prev := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prev)

	// When: asking for accelerated vector search
	_, err := New(context.Background(), parisDocs(), "vector-symmetric",
		Options{"on": "content", "model_name": "static", "use_accelerated_device": true})

	// Then: construction fails with a resource error
	assert.Equal(t, rerrors.ErrCodeDeviceUnavailable, rerrors.GetCode(err))
	assert.True(t, rerrors.IsFatal(err))
}

func TestNew_UnrecognizedOptionsAreIgnored(t *testing.T) {
	// Given: lexical options mixed with keys meant for other strategies
	opts := Options{
		"on":                     []string{"content"},
		"model_name":             "does-not-exist",
		"fuzzy_scoring_function": "nonsense",
		"colour":                 "blue",
	}

	// When: constructing a lexical retriever
	r, err := New(context.Background(), parisDocs(), "lexical", opts)

	// Then: the foreign keys have no effect
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.Equal(t, Lexical, r.Strategy())
}

func TestNew_InvalidCollection(t *testing.T) {
	docs := append(parisDocs(), document.New("1", map[string]string{"content": "dup"}))

	_, err := New(context.Background(), docs, "lexical", Options{"on": "content"})

	assert.Equal(t, rerrors.ErrCodeDuplicateID, rerrors.GetCode(err))
	assert.False(t, rerrors.IsFatal(err))
}

func TestNew_MissingFieldsTreatedAsEmpty(t *testing.T) {
	// Given: a document lacking one of the indexed fields
	docs := document.Collection{
		document.New("a", map[string]string{"title": "Louvre", "content": "museum"}),
		document.New("b", map[string]string{"content": "louvre pyramid"}),
	}

	for _, s := range Strategies {
		t.Run(string(s), func(t *testing.T) {
			opts := optionsFor(s)
			opts["on"] = []string{"title", "content"}

			// When: building over both fields
			r, err := New(context.Background(), docs, string(s), opts)
			require.NoError(t, err)
			defer func() { _ = r.Close() }()

			// Then: the build succeeds and the gap is counted
			assert.Equal(t, 1, r.Stats().Incomplete)
			results, err := r.RetrieveOne(context.Background(), "louvre", 2)
			require.NoError(t, err)
			assert.NotEmpty(t, results)
		})
	}
}

func TestRetrieve_InputErrors(t *testing.T) {
	r := newParis(t, Lexical, nil)
	ctx := context.Background()

	for _, k := range []int{0, -1} {
		_, err := r.RetrieveOne(ctx, "paris", k)
		assert.Equal(t, rerrors.ErrCodeInvalidK, rerrors.GetCode(err))
		assert.False(t, rerrors.IsFatal(err))
	}

	_, err := r.Retrieve(ctx, []string{"paris"}, 1, WithBatchSize(0))
	assert.Equal(t, rerrors.ErrCodeInvalidInput, rerrors.GetCode(err))

	empty, err := r.Retrieve(ctx, nil, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRetrieve_EncoderFailureIsReportedNotRetried(t *testing.T) {
	// Given: a query encoder that fails after the build
	fail := false
	calls := 0
	loader := func(ctx context.Context, spec embed.Spec) (embed.Embedder, error) {
		return &recordingEmbedder{StaticEmbedder: embed.NewStaticEmbedder(16), onBatch: func(int) {
			calls++
		}, fail: &fail}, nil
	}
	r, err := New(context.Background(), parisDocs(), "vector-symmetric",
		Options{"on": "content", "model_name": "static-16"}, WithEncoderLoader(loader))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	// When: the encoder breaks and a query is issued
	fail = true
	before := calls
	_, err = r.RetrieveOne(context.Background(), "paris", 1)

	// Then: the error surfaces after exactly one attempt
	assert.Equal(t, rerrors.ErrCodeEncodingFailed, rerrors.GetCode(err))
	assert.Equal(t, before+1, calls)
}

func TestRetriever_Close(t *testing.T) {
	r, err := New(context.Background(), parisDocs(), "fuzzy", Options{"on": "content"})
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.RetrieveOne(context.Background(), "paris", 1)
	assert.Error(t, err)
}

func TestNew_ReportsProgress(t *testing.T) {
	var stages []Stage
	var encoded [][2]int
	progress := func(stage Stage, current, total int) {
		if stage == StageEncoding {
			encoded = append(encoded, [2]int{current, total})
			return
		}
		stages = append(stages, stage)
	}

	r, err := New(context.Background(), parisDocs(), "vector-symmetric",
		Options{"on": "content", "model_name": "static", "batch_size": 2}, WithProgress(progress))
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	assert.Equal(t, []Stage{StageLoading, StageIndexing, StageComplete}, stages)
	assert.Equal(t, [][2]int{{2, 3}, {3, 3}}, encoded)
}

func TestNewFromRecords_UsesKeyOption(t *testing.T) {
	records := []map[string]any{
		{"doc_id": 10, "content": "Paris is the capital"},
		{"doc_id": 11, "content": "Lyon gastronomy"},
	}

	r, err := NewFromRecords(context.Background(), records, "lexical",
		Options{"key": "doc_id", "on": "content"})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	results, err := r.RetrieveOne(context.Background(), "gastronomy", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"11"}, resultIDs(results))
	assert.Equal(t, 2, r.Len())
}

// recordingEmbedder wraps a static embedder, reporting batch sizes and
// optionally failing.
type recordingEmbedder struct {
	*embed.StaticEmbedder
	onBatch func(n int)
	fail    *bool
}

func (e *recordingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *recordingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if e.onBatch != nil {
		e.onBatch(len(texts))
	}
	if e.fail != nil && *e.fail {
		return nil, errors.New("encoder unavailable")
	}
	return e.StaticEmbedder.EmbedBatch(ctx, texts)
}
