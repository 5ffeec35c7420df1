package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/store"
	"github.com/Aman-CERP/goldenretriever/pkg/document"
)

// ErrNilLexicalIndex is returned when attempting to create a LexicalIndexer without an index.
var ErrNilLexicalIndex = errors.New("lexical index is required")

// LexicalIndexer feeds document text into a [store.LexicalIndex].
type LexicalIndexer struct {
	index      store.LexicalIndex
	on         []string
	incomplete int

	mu     sync.RWMutex
	closed bool
}

// LexicalOption configures a LexicalIndexer.
type LexicalOption func(*LexicalIndexer)

// WithLexicalIndex sets the lexical backend. Required.
func WithLexicalIndex(idx store.LexicalIndex) LexicalOption {
	return func(l *LexicalIndexer) {
		l.index = idx
	}
}

// WithLexicalFields sets which fields are concatenated into the indexed text.
func WithLexicalFields(on []string) LexicalOption {
	return func(l *LexicalIndexer) {
		l.on = on
	}
}

// NewLexicalIndexer creates a lexical indexer.
//
// Returns ErrNilLexicalIndex if no index is provided.
func NewLexicalIndexer(opts ...LexicalOption) (*LexicalIndexer, error) {
	l := &LexicalIndexer{on: DefaultFields}
	for _, opt := range opts {
		opt(l)
	}
	if l.index == nil {
		return nil, ErrNilLexicalIndex
	}
	return l, nil
}

// Index tokenizes and indexes every document.
func (l *LexicalIndexer) Index(ctx context.Context, docs document.Collection) error {
	if len(docs) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}

	ids, texts, incomplete := collectTexts(docs, l.on)
	lexDocs := make([]*store.LexicalDocument, len(ids))
	for i := range ids {
		lexDocs[i] = &store.LexicalDocument{ID: ids[i], Content: texts[i]}
	}

	if err := l.index.Index(ctx, lexDocs); err != nil {
		return rerrors.New(rerrors.ErrCodeIndexFailed, fmt.Sprintf("lexical index: %v", err), err)
	}
	l.incomplete += incomplete

	slog.Debug("lexical_index_built",
		slog.Int("documents", len(lexDocs)),
		slog.Any("fields", l.on))
	return nil
}

// Stats returns current index statistics.
func (l *LexicalIndexer) Stats() IndexStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return IndexStats{
		DocumentCount: l.index.Count(),
		Incomplete:    l.incomplete,
	}
}

// Close closes the underlying index.
func (l *LexicalIndexer) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	if err := l.index.Close(); err != nil {
		return fmt.Errorf("lexical close: %w", err)
	}
	return nil
}

var _ Indexer = (*LexicalIndexer)(nil)
