package retriever

import (
	"strings"

	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
)

// Strategy names one retrieval algorithm.
type Strategy string

const (
	// Lexical ranks documents by BM25 or TF-IDF term weighting. Non-matching documents are absent.
	Lexical Strategy = "lexical"

	// Fuzzy ranks every document by approximate string similarity in [0, 100].
	Fuzzy Strategy = "fuzzy"

	// VectorSymmetric encodes documents and queries with one shared encoder.
	VectorSymmetric Strategy = "vector-symmetric"

	// VectorDual encodes documents and queries with separate encoders.
	VectorDual Strategy = "vector-dual"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{Lexical, Fuzzy, VectorSymmetric, VectorDual}

// ParseStrategy validates a strategy identifier. Matching is exact apart
// from surrounding whitespace; there is no fallback strategy.
func ParseStrategy(s string) (Strategy, error) {
	name := Strategy(strings.TrimSpace(s))
	for _, known := range Strategies {
		if name == known {
			return known, nil
		}
	}
	return "", rerrors.Newf(rerrors.ErrCodeUnknownStrategy, "unknown strategy %q", s).
		WithDetail("strategy", s).
		WithSuggestion("Use one of: lexical, fuzzy, vector-symmetric, vector-dual")
}

// IsVector reports whether the strategy needs text encoders.
func (s Strategy) IsVector() bool {
	return s == VectorSymmetric || s == VectorDual
}

// String returns the identifier.
func (s Strategy) String() string {
	return string(s)
}
