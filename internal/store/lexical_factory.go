package store

import (
	"fmt"
)

// LexicalBackend names a lexical index implementation.
type LexicalBackend string

const (
	// LexicalBackendMemory is the in-process BM25 index (default).
	LexicalBackendMemory LexicalBackend = "memory"

	// LexicalBackendBleve uses a memory-only Bleve v2 index.
	LexicalBackendBleve LexicalBackend = "bleve"

	// LexicalBackendSQLite uses SQLite FTS5 over ":memory:".
	LexicalBackendSQLite LexicalBackend = "sqlite"

	// LexicalBackendTFIDF ranks by TF-IDF cosine similarity.
	LexicalBackendTFIDF LexicalBackend = "tfidf"
)

// LexicalBackends lists the accepted backend names.
var LexicalBackends = []LexicalBackend{LexicalBackendMemory, LexicalBackendBleve, LexicalBackendSQLite, LexicalBackendTFIDF}

// HonorsSaturation reports whether the backend applies LexicalConfig.K1 and B.
func (b LexicalBackend) HonorsSaturation() bool {
	return b == LexicalBackendMemory || b == ""
}

// NewLexicalIndex creates a LexicalIndex using the specified backend.
// An empty backend selects memory.
func NewLexicalIndex(backend string, config LexicalConfig) (LexicalIndex, error) {
	switch LexicalBackend(backend) {
	case LexicalBackendMemory, "":
		return NewMemoryBM25Index(config), nil
	case LexicalBackendBleve:
		return NewBleveLexicalIndex(config)
	case LexicalBackendSQLite:
		return NewSQLiteLexicalIndex(config)
	case LexicalBackendTFIDF:
		return NewTFIDFIndex(config), nil
	default:
		return nil, fmt.Errorf("unknown lexical backend: %s (valid options: memory, bleve, sqlite, tfidf)", backend)
	}
}
