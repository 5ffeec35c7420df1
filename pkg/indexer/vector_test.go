package indexer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/store"
	"github.com/Aman-CERP/goldenretriever/pkg/document"
)

// MockEmbedder implements embed.Embedder for testing.
type MockEmbedder struct {
	EmbedBatchFn func(ctx context.Context, texts []string) ([][]float32, error)
	Dims         int

	embedBatchCalled atomic.Int32
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.embedBatchCalled.Add(1)
	if m.EmbedBatchFn != nil {
		return m.EmbedBatchFn(ctx, texts)
	}
	result := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, m.Dimensions())
		v[0] = float32(len(t))
		result[i] = v
	}
	return result, nil
}

func (m *MockEmbedder) Dimensions() int {
	if m.Dims == 0 {
		return 4
	}
	return m.Dims
}

func (m *MockEmbedder) ModelName() string                  { return "mock-model" }
func (m *MockEmbedder) Available(ctx context.Context) bool { return true }
func (m *MockEmbedder) Close() error                       { return nil }

func testDocs(n int) document.Collection {
	docs := make(document.Collection, n)
	for i := range docs {
		docs[i] = document.New(string(rune('a'+i)), map[string]string{"text": "doc"})
	}
	return docs
}

func newFlat(t *testing.T) store.VectorStore {
	t.Helper()
	vs, err := store.NewVectorStore("flat", store.DefaultVectorStoreConfig(0))
	require.NoError(t, err)
	return vs
}

func TestNewVectorIndexer_MissingDependencies(t *testing.T) {
	_, err := NewVectorIndexer(WithVectorStore(newFlat(t)))
	assert.ErrorIs(t, err, ErrNilEmbedder)

	_, err = NewVectorIndexer(WithEmbedder(&MockEmbedder{}))
	assert.ErrorIs(t, err, ErrNilVectorStore)
}

func TestVectorIndexer_IndexesInBatches(t *testing.T) {
	// Given: five documents and a batch size of two
	emb := &MockEmbedder{}
	var progress [][2]int
	idx, err := NewVectorIndexer(
		WithEmbedder(emb),
		WithVectorStore(newFlat(t)),
		WithBatchSize(2),
		WithProgress(func(done, total int) { progress = append(progress, [2]int{done, total}) }),
	)
	require.NoError(t, err)

	// When: indexing
	require.NoError(t, idx.Index(context.Background(), testDocs(5)))

	// Then: three encoder calls, progress after each, all vectors stored
	assert.Equal(t, int32(3), emb.embedBatchCalled.Load())
	assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, progress)
	stats := idx.Stats()
	assert.Equal(t, 5, stats.DocumentCount)
	assert.Equal(t, 4, stats.Dimensions)
}

func TestVectorIndexer_EmptyCollectionIsNoop(t *testing.T) {
	emb := &MockEmbedder{}
	idx, _ := NewVectorIndexer(WithEmbedder(emb), WithVectorStore(newFlat(t)))

	require.NoError(t, idx.Index(context.Background(), nil))
	assert.Equal(t, int32(0), emb.embedBatchCalled.Load())
}

func TestVectorIndexer_EncoderFailure(t *testing.T) {
	emb := &MockEmbedder{EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("oom")
	}}
	idx, _ := NewVectorIndexer(WithEmbedder(emb), WithVectorStore(newFlat(t)))

	err := idx.Index(context.Background(), testDocs(2))

	assert.Equal(t, rerrors.ErrCodeEncodingFailed, rerrors.GetCode(err))
}

func TestVectorIndexer_InconsistentDimensionsFailBuild(t *testing.T) {
	// Given: an encoder whose second batch changes vector length
	var call atomic.Int32
	emb := &MockEmbedder{EmbedBatchFn: func(ctx context.Context, texts []string) ([][]float32, error) {
		dims := 3
		if call.Add(1) > 1 {
			dims = 5
		}
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = make([]float32, dims)
		}
		return out, nil
	}}
	idx, _ := NewVectorIndexer(WithEmbedder(emb), WithVectorStore(newFlat(t)), WithBatchSize(1))

	// When: indexing two documents
	err := idx.Index(context.Background(), testDocs(2))

	// Then: the build fails with a fatal dimension mismatch
	assert.Equal(t, rerrors.ErrCodeDimensionMismatch, rerrors.GetCode(err))
	assert.True(t, rerrors.IsFatal(err))
}

func TestVectorIndexer_MissingFieldsCountAsIncomplete(t *testing.T) {
	idx, _ := NewVectorIndexer(
		WithEmbedder(&MockEmbedder{}),
		WithVectorStore(newFlat(t)),
		WithVectorFields([]string{"title", "text"}),
	)

	docs := document.Collection{
		document.New("1", map[string]string{"title": "t", "text": "x"}),
		document.New("2", map[string]string{"text": "x"}),
	}
	require.NoError(t, idx.Index(context.Background(), docs))

	assert.Equal(t, 1, idx.Stats().Incomplete)
}

func TestVectorIndexer_CloseIsIdempotent(t *testing.T) {
	idx, _ := NewVectorIndexer(WithEmbedder(&MockEmbedder{}), WithVectorStore(newFlat(t)))

	require.NoError(t, idx.Close())
	require.NoError(t, idx.Close())
	assert.ErrorIs(t, idx.Index(context.Background(), testDocs(1)), ErrClosed)
}
