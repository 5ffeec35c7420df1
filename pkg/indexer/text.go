package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/store"
	"github.com/Aman-CERP/goldenretriever/pkg/document"
)

// ErrNilTextStore is returned when attempting to create a TextIndexer without a store.
var ErrNilTextStore = errors.New("text store is required")

// TextIndexer stores the raw field text of each document for fuzzy scoring.
type TextIndexer struct {
	store      *store.TextStore
	on         []string
	incomplete int

	mu     sync.RWMutex
	closed bool
}

// TextOption configures a TextIndexer.
type TextOption func(*TextIndexer)

// WithTextStore sets the destination store. Required.
func WithTextStore(ts *store.TextStore) TextOption {
	return func(t *TextIndexer) {
		t.store = ts
	}
}

// WithTextFields sets which fields are concatenated into the stored text.
func WithTextFields(on []string) TextOption {
	return func(t *TextIndexer) {
		t.on = on
	}
}

// NewTextIndexer creates a text indexer.
func NewTextIndexer(opts ...TextOption) (*TextIndexer, error) {
	t := &TextIndexer{on: DefaultFields}
	for _, opt := range opts {
		opt(t)
	}
	if t.store == nil {
		return nil, ErrNilTextStore
	}
	return t, nil
}

// Index stores every document's text in collection order.
func (t *TextIndexer) Index(ctx context.Context, docs document.Collection) error {
	if len(docs) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	ids, texts, incomplete := collectTexts(docs, t.on)
	if err := t.store.Add(ctx, ids, texts); err != nil {
		return rerrors.New(rerrors.ErrCodeIndexFailed, fmt.Sprintf("text index: %v", err), err)
	}
	t.incomplete += incomplete
	return nil
}

// Stats returns current index statistics.
func (t *TextIndexer) Stats() IndexStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return IndexStats{
		DocumentCount: t.store.Count(),
		Incomplete:    t.incomplete,
	}
}

// Close closes the underlying store.
func (t *TextIndexer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true
	return t.store.Close()
}

var _ Indexer = (*TextIndexer)(nil)
