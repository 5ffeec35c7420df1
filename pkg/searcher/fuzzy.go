package searcher

import (
	"context"

	"github.com/Aman-CERP/goldenretriever/internal/fuzzy"
	"github.com/Aman-CERP/goldenretriever/internal/store"
)

// FuzzySearcher scores the query against every stored document with a
// string-similarity scorer. Every document gets a score in [0, 100].
type FuzzySearcher struct {
	texts  *store.TextStore
	scorer fuzzy.Scorer
}

// FuzzyOption configures FuzzySearcher.
type FuzzyOption func(*FuzzySearcher)

// WithTextStore sets the documents to score.
func WithTextStore(ts *store.TextStore) FuzzyOption {
	return func(s *FuzzySearcher) {
		s.texts = ts
	}
}

// WithScorer sets the similarity function (default: fuzzy.PartialRatio).
func WithScorer(fn fuzzy.Scorer) FuzzyOption {
	return func(s *FuzzySearcher) {
		s.scorer = fn
	}
}

// NewFuzzySearcher creates a fuzzy searcher.
func NewFuzzySearcher(opts ...FuzzyOption) (*FuzzySearcher, error) {
	s := &FuzzySearcher{scorer: fuzzy.PartialRatio}
	for _, opt := range opts {
		opt(s)
	}
	if s.texts == nil {
		return nil, ErrNilTextStore
	}
	return s, nil
}

// Search scores all documents and keeps the best limit.
func (s *FuzzySearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]Result, 0, s.texts.Count())
	s.texts.Each(func(id, text string) {
		results = append(results, Result{DocumentID: id, Score: s.scorer(query, text)})
	})
	return Rank(results, limit, HigherIsBetter), nil
}

// Direction returns HigherIsBetter.
func (s *FuzzySearcher) Direction() Direction {
	return HigherIsBetter
}

var _ Searcher = (*FuzzySearcher)(nil)
