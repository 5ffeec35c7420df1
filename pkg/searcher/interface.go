package searcher

import (
	"context"
	"errors"
)

// ErrNilLexicalIndex is returned when attempting to create a LexicalSearcher without an index.
var ErrNilLexicalIndex = errors.New("lexical index is required")

// ErrNilTextStore is returned when attempting to create a FuzzySearcher without a text store.
var ErrNilTextStore = errors.New("text store is required")

// ErrNilEmbedder is returned when attempting to create a VectorSearcher without an embedder.
var ErrNilEmbedder = errors.New("embedder is required")

// ErrNilVectorStore is returned when attempting to create a VectorSearcher without a store.
var ErrNilVectorStore = errors.New("vector store is required")

// Searcher answers one query against a built index.
//
// Implementations must be thread-safe for concurrent use.
type Searcher interface {
	// Search executes a query and returns at most limit results, best first.
	//
	// Returns an empty slice (not nil) if nothing matches.
	Search(ctx context.Context, query string, limit int) ([]Result, error)

	// Direction reports how Score orders results.
	Direction() Direction
}

// Result is one ranked document.
type Result struct {
	// DocumentID identifies a document of the indexed collection.
	DocumentID string `json:"document_id"`

	// Score is the raw strategy value: a similarity for lexical and fuzzy
	// search, a squared distance for vector search.
	Score float64 `json:"score"`
}

// Direction says whether larger or smaller scores rank first.
type Direction int

const (
	// HigherIsBetter orders similarities.
	HigherIsBetter Direction = iota

	// LowerIsBetter orders distances.
	LowerIsBetter
)

// String returns a short label for logs.
func (d Direction) String() string {
	if d == LowerIsBetter {
		return "lower_is_better"
	}
	return "higher_is_better"
}
