package indexer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Aman-CERP/goldenretriever/pkg/document"
)

// ErrClosed is returned by Index after Close.
var ErrClosed = errors.New("indexer is closed")

// Indexer builds one index from a document collection.
//
// Index is called once per retriever; the populated store is then only read.
// Implementations must be thread-safe for concurrent use.
type Indexer interface {
	// Index adds every document of docs to the index, using the text of the
	// configured fields.
	//
	// An empty collection is a no-op (returns nil).
	Index(ctx context.Context, docs document.Collection) error

	// Stats returns current index statistics.
	Stats() IndexStats

	// Close releases all resources held by the indexer.
	//
	// Safe to call multiple times.
	Close() error
}

// IndexStats holds statistics about an index.
type IndexStats struct {
	// DocumentCount is the number of indexed documents.
	DocumentCount int

	// Incomplete counts documents that lacked at least one indexed field.
	Incomplete int

	// Dimensions is the vector length (vector indexes only).
	Dimensions int
}

// ProgressFunc is called after each encoded batch with the number of
// documents done so far and the total.
type ProgressFunc func(done, total int)

// DefaultFields is the field list used when none is configured.
var DefaultFields = []string{"text"}

// collectTexts returns ids and texts, warning once about missing fields.
func collectTexts(docs document.Collection, on []string) (ids, texts []string, incomplete int) {
	texts, incomplete = docs.Texts(on)
	if incomplete > 0 {
		logMissingFields(incomplete, len(docs), on)
	}
	return docs.IDs(), texts, incomplete
}

func logMissingFields(incomplete, total int, on []string) {
	slog.Warn("documents_missing_fields",
		slog.Int("incomplete", incomplete),
		slog.Int("total", total),
		slog.Any("fields", on))
}
