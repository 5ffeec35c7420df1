// Package store provides the in-memory index structures behind each retrieval
// strategy: lexical (BM25) indexes and vector nearest-neighbor stores.
// Stores are populated once and then only read.
package store

import (
	"context"
)

// LexicalDocument is a document to be indexed by a lexical backend.
type LexicalDocument struct {
	ID      string // Document ID
	Content string // Concatenated field text
}

// LexicalResult represents a single lexical search hit.
type LexicalResult struct {
	DocID        string
	Score        float64
	MatchedTerms []string
}

// LexicalIndex provides keyword search over tokenized text.
// Documents that share no term with the query are never returned.
type LexicalIndex interface {
	// Index adds documents to the index.
	Index(ctx context.Context, docs []*LexicalDocument) error

	// Search returns up to limit documents matching query, best first.
	Search(ctx context.Context, query string, limit int) ([]*LexicalResult, error)

	// Count returns the number of indexed documents.
	Count() int

	Close() error
}

// LexicalConfig configures a lexical index.
type LexicalConfig struct {
	// K1 is the term frequency saturation parameter (default: 1.5)
	K1 float64

	// B is the length normalization parameter (default: 0.75)
	B float64

	// StopWords is a list of words to filter out during tokenization
	StopWords []string

	// MinTokenLength is minimum token length to index (default: 2)
	MinTokenLength int
}

// DefaultLexicalConfig returns default lexical configuration.
func DefaultLexicalConfig() LexicalConfig {
	return LexicalConfig{
		K1:             1.5,
		B:              0.75,
		StopWords:      DefaultStopWords,
		MinTokenLength: 2,
	}
}

// DefaultStopWords contains common English function words.
var DefaultStopWords = []string{
	"an", "and", "are", "as", "at", "be", "by", "for", "from", "has", "he",
	"in", "is", "it", "its", "of", "on", "or", "that", "the", "to", "was",
	"were", "will", "with",
}

// VectorResult represents a single vector search result.
type VectorResult struct {
	ID       string  // Document ID
	Distance float32 // Squared Euclidean distance, lower is closer
}

// VectorStoreConfig configures a vector store.
type VectorStoreConfig struct {
	// Dimensions is the expected vector length. Zero adopts the first vector added.
	Dimensions int

	// Normalize scales every stored and query vector to unit length.
	Normalize bool

	// Accelerated spreads exact scans over Workers goroutines.
	Accelerated bool

	// Workers bounds the accelerated scan (default: GOMAXPROCS).
	Workers int

	// M is HNSW max connections per layer (default: 16)
	M int

	// EfSearch is HNSW query-time search width (default: 20)
	EfSearch int

	// Seed makes HNSW level generation reproducible.
	Seed int64
}

// DefaultVectorStoreConfig returns sensible defaults for a vector store.
func DefaultVectorStoreConfig(dimensions int) VectorStoreConfig {
	return VectorStoreConfig{
		Dimensions: dimensions,
		M:          16,
		EfSearch:   20,
		Seed:       1,
	}
}

// VectorStore answers nearest-neighbor queries by squared Euclidean distance.
type VectorStore interface {
	// Add inserts vectors with their IDs.
	Add(ctx context.Context, ids []string, vectors [][]float32) error

	// Search finds up to k nearest neighbors, closest first.
	// k larger than Count is clamped.
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)

	// Count returns number of vectors.
	Count() int

	// Dimensions returns the vector length, or 0 before the first Add.
	Dimensions() int

	Close() error
}
