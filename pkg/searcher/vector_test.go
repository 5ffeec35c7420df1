package searcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/store"
)

// MockEmbedderForSearch implements embed.Embedder for testing.
type MockEmbedderForSearch struct {
	EmbedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)

	mu         sync.Mutex
	batchSizes []int
}

func (m *MockEmbedderForSearch) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *MockEmbedderForSearch) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()
	if m.EmbedBatchFn != nil {
		return m.EmbedBatchFn(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 0}
	}
	return out, nil
}

func (m *MockEmbedderForSearch) Dimensions() int                    { return 2 }
func (m *MockEmbedderForSearch) ModelName() string                  { return "mock-model" }
func (m *MockEmbedderForSearch) Available(ctx context.Context) bool { return true }
func (m *MockEmbedderForSearch) Close() error                       { return nil }

func newFlatStore(t *testing.T, ids []string, vecs [][]float32) store.VectorStore {
	t.Helper()
	vs, err := store.NewVectorStore("flat", store.DefaultVectorStoreConfig(0))
	require.NoError(t, err)
	require.NoError(t, vs.Add(context.Background(), ids, vecs))
	t.Cleanup(func() { _ = vs.Close() })
	return vs
}

func TestNewVectorSearcher_MissingDependencies(t *testing.T) {
	_, err := NewVectorSearcher(WithSearchVectorStore(newFlatStore(t, nil, nil)))
	assert.ErrorIs(t, err, ErrNilEmbedder)

	_, err = NewVectorSearcher(WithQueryEmbedder(&MockEmbedderForSearch{}))
	assert.ErrorIs(t, err, ErrNilVectorStore)
}

func TestVectorSearcher_Search(t *testing.T) {
	// Given: vectors at x=1, x=3 and x=5; the mock encodes text as [len, 0]
	vs := newFlatStore(t, []string{"a", "b", "c"}, [][]float32{{1, 0}, {3, 0}, {5, 0}})
	s, err := NewVectorSearcher(WithQueryEmbedder(&MockEmbedderForSearch{}), WithSearchVectorStore(vs))
	require.NoError(t, err)

	// When: the query encodes to [4, 0]
	results, err := s.Search(context.Background(), "abcd", 2)
	require.NoError(t, err)

	// Then: b and c are equidistant (1.0); b wins on id, squared distances kept
	assert.Equal(t, []string{"b", "c"}, ids(results))
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, LowerIsBetter, s.Direction())
}

func TestVectorSearcher_EncodeQueriesBatches(t *testing.T) {
	emb := &MockEmbedderForSearch{}
	s, err := NewVectorSearcher(WithQueryEmbedder(emb), WithSearchVectorStore(newFlatStore(t, nil, nil)))
	require.NoError(t, err)

	vecs, err := s.EncodeQueries(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"}, 2)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, emb.batchSizes)
	require.Len(t, vecs, 5)
	assert.Equal(t, float32(3), vecs[2][0])
}

func TestVectorSearcher_EncodingFailure(t *testing.T) {
	emb := &MockEmbedderForSearch{
		EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("model crashed")
		},
	}
	s, _ := NewVectorSearcher(WithQueryEmbedder(emb), WithSearchVectorStore(newFlatStore(t, nil, nil)))

	_, err := s.Search(context.Background(), "q", 1)

	assert.Equal(t, rerrors.ErrCodeEncodingFailed, rerrors.GetCode(err))
}

func TestVectorSearcher_QueryDimensionMismatch(t *testing.T) {
	// Given: a store of 3-dimensional vectors and a 2-dimensional query encoder
	vs := newFlatStore(t, []string{"a"}, [][]float32{{1, 2, 3}})
	s, _ := NewVectorSearcher(WithQueryEmbedder(&MockEmbedderForSearch{}), WithSearchVectorStore(vs))

	// When: searching
	_, err := s.Search(context.Background(), "q", 1)

	// Then: the store's dimension error comes through unchanged
	assert.Equal(t, rerrors.ErrCodeDimensionMismatch, rerrors.GetCode(err))
}
