package searcher

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/goldenretriever/internal/store"
)

// LexicalSearcher performs keyword search over a store.LexicalIndex.
// Documents sharing no term with the query are absent from the results.
type LexicalSearcher struct {
	index store.LexicalIndex
}

// LexicalOption configures LexicalSearcher.
type LexicalOption func(*LexicalSearcher)

// WithLexicalIndex sets the lexical index backend.
func WithLexicalIndex(idx store.LexicalIndex) LexicalOption {
	return func(s *LexicalSearcher) {
		s.index = idx
	}
}

// NewLexicalSearcher creates a new lexical searcher.
//
// Requires WithLexicalIndex. Returns ErrNilLexicalIndex if it is missing.
func NewLexicalSearcher(opts ...LexicalOption) (*LexicalSearcher, error) {
	s := &LexicalSearcher{}
	for _, opt := range opts {
		opt(s)
	}
	if s.index == nil {
		return nil, ErrNilLexicalIndex
	}
	return s, nil
}

// Search scores every matching document and ranks them.
//
// The index is asked for all matches rather than limit so that ties at the
// cut-off are resolved by Rank, not by the backend.
func (s *LexicalSearcher) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	hits, err := s.index.Search(ctx, query, s.index.Count())
	if err != nil {
		return nil, fmt.Errorf("lexical search failed: %w", err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{DocumentID: h.DocID, Score: h.Score}
	}
	return Rank(results, limit, HigherIsBetter), nil
}

// Direction returns HigherIsBetter.
func (s *LexicalSearcher) Direction() Direction {
	return HigherIsBetter
}

var _ Searcher = (*LexicalSearcher)(nil)
