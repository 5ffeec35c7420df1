package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Aman-CERP/goldenretriever/internal/embed"
	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/store"
	"github.com/Aman-CERP/goldenretriever/pkg/document"
)

// ErrNilEmbedder is returned when attempting to create a VectorIndexer without an embedder.
var ErrNilEmbedder = errors.New("embedder is required")

// ErrNilVectorStore is returned when attempting to create a VectorIndexer without a vector store.
var ErrNilVectorStore = errors.New("vector store is required")

// VectorIndexer encodes documents with an [embed.Embedder] and stores the
// vectors in a [store.VectorStore].
//
// In dual-encoder mode the embedder here is the document-side encoder.
// VectorIndexer is safe for concurrent use.
type VectorIndexer struct {
	embedder   embed.Embedder
	store      store.VectorStore
	on         []string
	batchSize  int
	progress   ProgressFunc
	incomplete int

	mu     sync.RWMutex
	closed bool
}

// VectorOption configures a VectorIndexer.
type VectorOption func(*VectorIndexer)

// WithEmbedder sets the document encoder. Required.
func WithEmbedder(e embed.Embedder) VectorOption {
	return func(v *VectorIndexer) {
		v.embedder = e
	}
}

// WithVectorStore sets the vector store backend. Required.
func WithVectorStore(s store.VectorStore) VectorOption {
	return func(v *VectorIndexer) {
		v.store = s
	}
}

// WithVectorFields sets which fields are concatenated into the encoded text.
func WithVectorFields(on []string) VectorOption {
	return func(v *VectorIndexer) {
		v.on = on
	}
}

// WithBatchSize sets how many documents go into one encoder call.
// Values outside [1, embed.MaxBatchSize] are clamped.
func WithBatchSize(n int) VectorOption {
	return func(v *VectorIndexer) {
		v.batchSize = n
	}
}

// WithProgress registers a callback invoked after every encoded batch.
func WithProgress(fn ProgressFunc) VectorOption {
	return func(v *VectorIndexer) {
		v.progress = fn
	}
}

// NewVectorIndexer creates a new vector indexer with the given options.
//
//	indexer, err := NewVectorIndexer(
//	    WithEmbedder(embedder),
//	    WithVectorStore(vectorStore),
//	)
//
// Returns ErrNilEmbedder if no embedder is provided.
// Returns ErrNilVectorStore if no store is provided.
func NewVectorIndexer(opts ...VectorOption) (*VectorIndexer, error) {
	v := &VectorIndexer{
		on:        DefaultFields,
		batchSize: embed.DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.embedder == nil {
		return nil, ErrNilEmbedder
	}
	if v.store == nil {
		return nil, ErrNilVectorStore
	}
	v.batchSize = min(max(v.batchSize, 1), embed.MaxBatchSize)

	return v, nil
}

// Index encodes documents batch by batch and adds the vectors to the store.
//
// The first vector fixes the store dimension; any later vector of another
// length fails the build with ERR_105_DIMENSION_MISMATCH.
func (v *VectorIndexer) Index(ctx context.Context, docs document.Collection) error {
	if len(docs) == 0 {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrClosed
	}

	ids, texts, incomplete := collectTexts(docs, v.on)
	total := len(ids)

	for start := 0; start < total; start += v.batchSize {
		end := min(start+v.batchSize, total)

		embeddings, err := v.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return rerrors.New(rerrors.ErrCodeEncodingFailed, "encoding documents failed", err).
				WithDetail("model", v.embedder.ModelName())
		}
		if len(embeddings) != end-start {
			return rerrors.Newf(rerrors.ErrCodeEncodingFailed,
				"encoder returned %d vectors for %d documents", len(embeddings), end-start)
		}

		if err := v.store.Add(ctx, ids[start:end], embeddings); err != nil {
			if _, ok := rerrors.As(err); ok {
				return err
			}
			return rerrors.New(rerrors.ErrCodeIndexFailed, fmt.Sprintf("vector store add: %v", err), err)
		}

		if v.progress != nil {
			v.progress(end, total)
		}
	}
	v.incomplete += incomplete

	slog.Debug("vector_index_built",
		slog.Int("documents", total),
		slog.Int("dimensions", v.store.Dimensions()),
		slog.String("model", v.embedder.ModelName()),
		slog.Int("batch_size", v.batchSize))

	return nil
}

// Stats returns current index statistics.
func (v *VectorIndexer) Stats() IndexStats {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return IndexStats{
		DocumentCount: v.store.Count(),
		Incomplete:    v.incomplete,
		Dimensions:    v.store.Dimensions(),
	}
}

// Close closes the vector store. The embedder is owned by the caller.
func (v *VectorIndexer) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil
	}
	v.closed = true

	if err := v.store.Close(); err != nil {
		return fmt.Errorf("vector close: %w", err)
	}
	return nil
}

// Ensure VectorIndexer implements Indexer at compile time.
var _ Indexer = (*VectorIndexer)(nil)
