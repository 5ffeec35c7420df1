package retriever

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Aman-CERP/goldenretriever/internal/embed"
	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/metrics"
	"github.com/Aman-CERP/goldenretriever/pkg/document"
	"github.com/Aman-CERP/goldenretriever/pkg/indexer"
	"github.com/Aman-CERP/goldenretriever/pkg/searcher"
)

// Stage identifies a step of index construction for progress reporting.
type Stage string

const (
	StageLoading  Stage = "loading"
	StageEncoding Stage = "encoding"
	StageIndexing Stage = "indexing"
	StageComplete Stage = "complete"
)

// ProgressFunc receives construction progress. current and total count
// documents during StageEncoding and are zero otherwise.
type ProgressFunc func(stage Stage, current, total int)

// EncoderLoader creates an encoder from its description.
type EncoderLoader func(ctx context.Context, spec embed.Spec) (embed.Embedder, error)

// BuildOption configures construction.
type BuildOption func(*buildConfig)

type buildConfig struct {
	progress ProgressFunc
	loader   EncoderLoader
}

// WithProgress registers a construction progress callback.
func WithProgress(fn ProgressFunc) BuildOption {
	return func(c *buildConfig) {
		c.progress = fn
	}
}

// WithEncoderLoader replaces embed.NewEmbedder as the encoder factory.
func WithEncoderLoader(fn EncoderLoader) BuildOption {
	return func(c *buildConfig) {
		c.loader = fn
	}
}

// Retriever answers top-k queries over a fixed document collection with
// one strategy. It is safe for concurrent use; the index is read-only
// after New returns.
type Retriever struct {
	strategy  Strategy
	engine    engine
	batchSize int
	docCount  int

	mu     sync.RWMutex
	closed bool
}

// New validates the configuration and the collection, loads any encoders
// and builds the index. Every configuration, resource and build error is
// returned here, before any query is accepted.
//
// opts is filtered for the strategy first: unrecognized keys are ignored.
func New(ctx context.Context, docs document.Collection, strategy string, opts Options, buildOpts ...BuildOption) (*Retriever, error) {
	bc := buildConfig{loader: embed.NewEmbedder}
	for _, opt := range buildOpts {
		opt(&bc)
	}
	report := func(stage Stage, current, total int) {
		if bc.progress != nil {
			bc.progress(stage, current, total)
		}
	}

	s, err := ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	cfg, err := resolveSettings(s, opts)
	if err != nil {
		return nil, err
	}
	if err := docs.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	report(StageLoading, 0, 0)

	var eng engine
	switch s {
	case Lexical:
		eng, err = newLexicalEngine(cfg)
	case Fuzzy:
		eng, err = newFuzzyEngine(cfg)
	case VectorSymmetric, VectorDual:
		eng, err = newVectorEngine(ctx, s, cfg, bc.loader, func(done, total int) {
			report(StageEncoding, done, total)
		})
	}
	if err != nil {
		return nil, err
	}

	report(StageIndexing, 0, 0)
	if err := eng.build(ctx, docs); err != nil {
		_ = eng.close()
		return nil, err
	}
	report(StageComplete, 0, 0)

	elapsed := time.Since(start)
	metrics.BuildDuration.WithLabelValues(string(s)).Observe(elapsed.Seconds())
	metrics.DocumentsIndexed.WithLabelValues(string(s)).Add(float64(len(docs)))

	stats := eng.stats()
	slog.Info("retriever_built",
		slog.String("strategy", string(s)),
		slog.Int("documents", stats.DocumentCount),
		slog.Int("incomplete", stats.Incomplete),
		slog.Int("dimensions", stats.Dimensions),
		slog.Duration("duration", elapsed))

	return &Retriever{
		strategy:  s,
		engine:    eng,
		batchSize: cfg.batchSize,
		docCount:  len(docs),
	}, nil
}

// NewFromRecords converts records to documents using the "key" option as
// the id field (default "id") and then calls New.
func NewFromRecords(ctx context.Context, records []map[string]any, strategy string, opts Options, buildOpts ...BuildOption) (*Retriever, error) {
	s, err := ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	cfg, err := resolveSettings(s, opts)
	if err != nil {
		return nil, err
	}
	docs, err := document.FromRecords(records, cfg.key)
	if err != nil {
		return nil, err
	}
	return New(ctx, docs, strategy, opts, buildOpts...)
}

// RetrieveOption configures a single Retrieve call.
type RetrieveOption func(*retrieveConfig)

type retrieveConfig struct {
	batchSize int
}

// WithBatchSize sets how many queries are encoded per encoder call
// (vector strategies only). Defaults to the batch_size option.
func WithBatchSize(n int) RetrieveOption {
	return func(c *retrieveConfig) {
		c.batchSize = n
	}
}

// Retrieve returns, for each query in order, at most k results best first.
// Ties are broken by ascending document id. k must be positive.
func (r *Retriever) Retrieve(ctx context.Context, queries []string, k int, opts ...RetrieveOption) ([][]searcher.Result, error) {
	rc := retrieveConfig{batchSize: r.batchSize}
	for _, opt := range opts {
		opt(&rc)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, rerrors.Newf(rerrors.ErrCodeInvalidInput, "retriever is closed")
	}
	if k <= 0 {
		return nil, rerrors.Newf(rerrors.ErrCodeInvalidK, "k must be a positive integer, got %d", k).
			WithDetail("k", fmt.Sprint(k))
	}
	if rc.batchSize <= 0 {
		return nil, rerrors.Newf(rerrors.ErrCodeInvalidInput, "batch size must be positive, got %d", rc.batchSize)
	}
	if len(queries) == 0 {
		return [][]searcher.Result{}, nil
	}

	start := time.Now()
	results, err := r.engine.search(ctx, queries, k, rc.batchSize)
	elapsed := time.Since(start)
	metrics.RetrieveDuration.WithLabelValues(string(r.strategy)).Observe(elapsed.Seconds())

	if err != nil {
		metrics.QueriesTotal.WithLabelValues(string(r.strategy), "error").Add(float64(len(queries)))
		slog.Error("retrieve_failed",
			slog.String("strategy", string(r.strategy)),
			slog.Int("queries", len(queries)),
			slog.String("error", err.Error()))
		return nil, err
	}

	total := 0
	for _, res := range results {
		total += len(res)
	}
	metrics.QueriesTotal.WithLabelValues(string(r.strategy), "success").Add(float64(len(queries)))
	metrics.ResultsTotal.WithLabelValues(string(r.strategy)).Add(float64(total))

	slog.Debug("retrieve_completed",
		slog.String("strategy", string(r.strategy)),
		slog.Int("queries", len(queries)),
		slog.Int("k", k),
		slog.Int("results", total),
		slog.Duration("duration", elapsed))

	return results, nil
}

// RetrieveOne is Retrieve for a single query.
func (r *Retriever) RetrieveOne(ctx context.Context, query string, k int) ([]searcher.Result, error) {
	results, err := r.Retrieve(ctx, []string{query}, k)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// Strategy returns the strategy the retriever was built with.
func (r *Retriever) Strategy() Strategy {
	return r.strategy
}

// Len returns the number of indexed documents.
func (r *Retriever) Len() int {
	return r.docCount
}

// Stats returns index statistics.
func (r *Retriever) Stats() indexer.IndexStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.engine.stats()
}

// Direction reports how result scores order: distances for vector
// strategies, similarities otherwise.
func (r *Retriever) Direction() searcher.Direction {
	if r.strategy.IsVector() {
		return searcher.LowerIsBetter
	}
	return searcher.HigherIsBetter
}

// Close releases the index and encoders. Safe to call multiple times.
func (r *Retriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true
	return r.engine.close()
}
