package searcher

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/goldenretriever/internal/embed"
	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/store"
)

// VectorSearcher performs nearest-neighbor search over encoded queries.
//
// The embedder is the query-side encoder; in dual-encoder mode it differs
// from the one used to build the store. Thread-safe for concurrent use.
type VectorSearcher struct {
	embedder embed.Embedder
	store    store.VectorStore
}

// VectorOption configures VectorSearcher.
type VectorOption func(*VectorSearcher)

// WithQueryEmbedder sets the encoder applied to queries.
func WithQueryEmbedder(e embed.Embedder) VectorOption {
	return func(s *VectorSearcher) {
		s.embedder = e
	}
}

// WithSearchVectorStore sets the vector store backend.
func WithSearchVectorStore(vs store.VectorStore) VectorOption {
	return func(s *VectorSearcher) {
		s.store = vs
	}
}

// NewVectorSearcher creates a new vector searcher.
//
// Requires both WithQueryEmbedder and WithSearchVectorStore options.
// Returns ErrNilEmbedder or ErrNilVectorStore if dependencies are missing.
func NewVectorSearcher(opts ...VectorOption) (*VectorSearcher, error) {
	s := &VectorSearcher{}
	for _, opt := range opts {
		opt(s)
	}
	if s.embedder == nil {
		return nil, ErrNilEmbedder
	}
	if s.store == nil {
		return nil, ErrNilVectorStore
	}
	return s, nil
}

// Search encodes query and returns the closest documents.
func (s *VectorSearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	vecs, err := s.EncodeQueries(ctx, []string{query}, 1)
	if err != nil {
		return nil, err
	}
	return s.SearchVector(ctx, vecs[0], limit)
}

// EncodeQueries encodes queries in chunks of batchSize, preserving order.
func (s *VectorSearcher) EncodeQueries(ctx context.Context, queries []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = embed.DefaultBatchSize
	}

	out := make([][]float32, 0, len(queries))
	for start := 0; start < len(queries); start += batchSize {
		end := min(start+batchSize, len(queries))
		vecs, err := s.embedder.EmbedBatch(ctx, queries[start:end])
		if err != nil {
			return nil, rerrors.New(rerrors.ErrCodeEncodingFailed, "encoding queries failed", err).
				WithDetail("model", s.embedder.ModelName())
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// SearchVector ranks stored vectors by squared distance to vec.
//
// The store is asked for every vector so that ties at the cut-off are
// resolved by Rank and top-k stays a prefix of top-(k+1).
func (s *VectorSearcher) SearchVector(ctx context.Context, vec []float32, limit int) ([]Result, error) {
	hits, err := s.store.Search(ctx, vec, s.store.Count())
	if err != nil {
		if _, ok := rerrors.As(err); ok {
			return nil, err
		}
		return nil, rerrors.New(rerrors.ErrCodeSearchFailed, fmt.Sprintf("vector search failed: %v", err), err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{DocumentID: h.ID, Score: float64(h.Distance)}
	}
	return Rank(results, limit, LowerIsBetter), nil
}

// Direction returns LowerIsBetter.
func (s *VectorSearcher) Direction() Direction {
	return LowerIsBetter
}

var _ Searcher = (*VectorSearcher)(nil)
