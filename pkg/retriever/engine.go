package retriever

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/goldenretriever/internal/embed"
	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/fuzzy"
	"github.com/Aman-CERP/goldenretriever/internal/store"
	"github.com/Aman-CERP/goldenretriever/pkg/document"
	"github.com/Aman-CERP/goldenretriever/pkg/indexer"
	"github.com/Aman-CERP/goldenretriever/pkg/searcher"
)

// engine is the build/search capability every strategy implements.
type engine interface {
	build(ctx context.Context, docs document.Collection) error
	search(ctx context.Context, queries []string, k, batchSize int) ([][]searcher.Result, error)
	stats() indexer.IndexStats
	close() error
}

// textEngine serves strategies that query with raw text (lexical, fuzzy).
type textEngine struct {
	indexer  indexer.Indexer
	searcher searcher.Searcher
	workers  int
}

func (e *textEngine) build(ctx context.Context, docs document.Collection) error {
	return e.indexer.Index(ctx, docs)
}

func (e *textEngine) search(ctx context.Context, queries []string, k, _ int) ([][]searcher.Result, error) {
	return forEachQuery(ctx, len(queries), e.workers, func(ctx context.Context, i int) ([]searcher.Result, error) {
		return e.searcher.Search(ctx, queries[i], k)
	})
}

func (e *textEngine) stats() indexer.IndexStats { return e.indexer.Stats() }

func (e *textEngine) close() error { return e.indexer.Close() }

func newLexicalEngine(cfg settings) (engine, error) {
	lexCfg := store.DefaultLexicalConfig()
	lexCfg.K1 = cfg.saturation
	lexCfg.B = cfg.lengthNorm

	backend := store.LexicalBackend(cfg.lexicalBackend)
	if cfg.saturationSet && !backend.HonorsSaturation() {
		slog.Warn("saturation_ignored",
			slog.String("backend", cfg.lexicalBackend),
			slog.Float64("saturation_parameter", cfg.saturation))
	}

	idx, err := store.NewLexicalIndex(cfg.lexicalBackend, lexCfg)
	if err != nil {
		return nil, rerrors.New(rerrors.ErrCodeConfigInvalid, err.Error(), err).
			WithDetail("option", OptLexicalBackend)
	}

	ix, err := indexer.NewLexicalIndexer(indexer.WithLexicalIndex(idx), indexer.WithLexicalFields(cfg.on))
	if err != nil {
		_ = idx.Close()
		return nil, err
	}
	s, err := searcher.NewLexicalSearcher(searcher.WithLexicalIndex(idx))
	if err != nil {
		_ = idx.Close()
		return nil, err
	}
	return &textEngine{indexer: ix, searcher: s, workers: cfg.workers}, nil
}

func newFuzzyEngine(cfg settings) (engine, error) {
	scorer, err := fuzzy.Lookup(cfg.scorerName)
	if err != nil {
		return nil, rerrors.New(rerrors.ErrCodeConfigInvalid, err.Error(), err).
			WithDetail("option", OptFuzzyScoringFunction)
	}

	ts := store.NewTextStore()
	ix, err := indexer.NewTextIndexer(indexer.WithTextStore(ts), indexer.WithTextFields(cfg.on))
	if err != nil {
		return nil, err
	}
	s, err := searcher.NewFuzzySearcher(searcher.WithTextStore(ts), searcher.WithScorer(scorer))
	if err != nil {
		return nil, err
	}
	return &textEngine{indexer: ix, searcher: s, workers: cfg.workers}, nil
}

// vectorEngine serves both vector strategies. In symmetric mode docEnc and
// the query encoder wrap the same model.
type vectorEngine struct {
	docEnc   embed.Embedder
	queryEnc embed.Embedder
	indexer  *indexer.VectorIndexer
	searcher *searcher.VectorSearcher
	workers  int
	shared   bool
}

func (e *vectorEngine) build(ctx context.Context, docs document.Collection) error {
	return e.indexer.Index(ctx, docs)
}

func (e *vectorEngine) search(ctx context.Context, queries []string, k, batchSize int) ([][]searcher.Result, error) {
	vecs, err := e.searcher.EncodeQueries(ctx, queries, batchSize)
	if err != nil {
		return nil, err
	}
	return forEachQuery(ctx, len(queries), e.workers, func(ctx context.Context, i int) ([]searcher.Result, error) {
		return e.searcher.SearchVector(ctx, vecs[i], k)
	})
}

func (e *vectorEngine) stats() indexer.IndexStats { return e.indexer.Stats() }

func (e *vectorEngine) close() error {
	errs := []error{e.indexer.Close(), e.queryEnc.Close()}
	if !e.shared {
		errs = append(errs, e.docEnc.Close())
	}
	return errors.Join(errs...)
}

// loadEncoders returns the document and query encoders for a vector
// strategy. The encoders' dimensions are compared here, before any
// document is indexed.
func loadEncoders(ctx context.Context, s Strategy, cfg settings, load EncoderLoader) (docEnc, queryEnc embed.Embedder, shared bool, err error) {
	device := embed.DeviceCPU
	if cfg.accelerated {
		device = embed.DeviceAccelerated
	}
	spec := func(model string) embed.Spec {
		return embed.Spec{
			Provider: cfg.provider,
			Model:    model,
			Device:   device,
			Host:     cfg.host,
			BaseURL:  cfg.baseURL,
		}
	}

	switch s {
	case VectorSymmetric:
		if cfg.model == "" {
			return nil, nil, false, modelRequired(OptModelName)
		}
		docEnc, err = load(ctx, spec(cfg.model))
		if err != nil {
			return nil, nil, false, err
		}
		queryEnc = docEnc
		if cfg.cacheSize > 0 {
			queryEnc = embed.NewCachedEmbedder(docEnc, cfg.cacheSize)
		}
		return docEnc, queryEnc, true, nil

	case VectorDual:
		if cfg.documentModel == "" {
			return nil, nil, false, modelRequired(OptDocumentModel)
		}
		if cfg.queryModel == "" {
			return nil, nil, false, modelRequired(OptQueryModel)
		}
		docEnc, err = load(ctx, spec(cfg.documentModel))
		if err != nil {
			return nil, nil, false, err
		}
		querySpec := spec(cfg.queryModel)
		querySpec.CacheSize = cfg.cacheSize
		queryEnc, err = load(ctx, querySpec)
		if err != nil {
			_ = docEnc.Close()
			return nil, nil, false, err
		}
		if docEnc.Dimensions() != queryEnc.Dimensions() {
			_ = docEnc.Close()
			_ = queryEnc.Close()
			return nil, nil, false, rerrors.Newf(rerrors.ErrCodeDimensionMismatch,
				"document encoder %s produces %d dimensions but query encoder %s produces %d",
				docEnc.ModelName(), docEnc.Dimensions(), queryEnc.ModelName(), queryEnc.Dimensions()).
				WithDetail("document_model", cfg.documentModel).
				WithDetail("query_model", cfg.queryModel).
				WithSuggestion("Pick a query model with the same output dimension as the document model")
		}
		return docEnc, queryEnc, false, nil
	}

	return nil, nil, false, rerrors.Newf(rerrors.ErrCodeInternal, "strategy %s has no encoders", s)
}

func modelRequired(option string) error {
	return rerrors.Newf(rerrors.ErrCodeModelRequired, "option %s is required for vector strategies", option).
		WithDetail("option", option)
}

func newVectorEngine(ctx context.Context, s Strategy, cfg settings, load EncoderLoader, progress indexer.ProgressFunc) (engine, error) {
	docEnc, queryEnc, shared, err := loadEncoders(ctx, s, cfg, load)
	if err != nil {
		return nil, err
	}
	closeEncoders := func() {
		_ = queryEnc.Close()
		if !shared {
			_ = docEnc.Close()
		}
	}

	storeCfg := store.DefaultVectorStoreConfig(docEnc.Dimensions())
	storeCfg.Normalize = cfg.normalize
	storeCfg.Accelerated = cfg.accelerated
	storeCfg.Workers = cfg.workers

	vs, err := store.NewVectorStore(cfg.vectorBackend, storeCfg)
	if err != nil {
		closeEncoders()
		return nil, err
	}

	ix, err := indexer.NewVectorIndexer(
		indexer.WithEmbedder(docEnc),
		indexer.WithVectorStore(vs),
		indexer.WithVectorFields(cfg.on),
		indexer.WithBatchSize(cfg.batchSize),
		indexer.WithProgress(progress),
	)
	if err != nil {
		_ = vs.Close()
		closeEncoders()
		return nil, err
	}

	vsearch, err := searcher.NewVectorSearcher(
		searcher.WithQueryEmbedder(queryEnc),
		searcher.WithSearchVectorStore(vs),
	)
	if err != nil {
		_ = vs.Close()
		closeEncoders()
		return nil, err
	}

	return &vectorEngine{
		docEnc:   docEnc,
		queryEnc: queryEnc,
		indexer:  ix,
		searcher: vsearch,
		workers:  cfg.workers,
		shared:   shared,
	}, nil
}

// forEachQuery runs fn for every query index in parallel, bounded by
// workers (0 = unbounded), and collects results in input order.
func forEachQuery(ctx context.Context, n, workers int, fn func(ctx context.Context, i int) ([]searcher.Result, error)) ([][]searcher.Result, error) {
	out := make([][]searcher.Result, n)
	if n == 1 {
		r, err := fn(ctx, 0)
		if err != nil {
			return nil, err
		}
		out[0] = r
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		g.Go(func() error {
			r, err := fn(gctx, i)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
