package store

import (
	"context"
	"fmt"
	"sync"
)

// TextStore keeps raw document text in insertion order for scorers that
// compare the query against every document, such as fuzzy matching.
type TextStore struct {
	mu     sync.RWMutex
	ids    []string
	texts  []string
	closed bool
}

// NewTextStore creates an empty text store.
func NewTextStore() *TextStore {
	return &TextStore{}
}

// Add appends documents.
func (s *TextStore) Add(_ context.Context, ids, texts []string) error {
	if len(ids) != len(texts) {
		return fmt.Errorf("ids and texts length mismatch: %d vs %d", len(ids), len(texts))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}
	s.ids = append(s.ids, ids...)
	s.texts = append(s.texts, texts...)
	return nil
}

// Each calls fn for every document in insertion order. fn must not call Add.
func (s *TextStore) Each(fn func(id, text string)) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, id := range s.ids {
		fn(id, s.texts[i])
	}
}

// Count returns the number of documents.
func (s *TextStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Close drops the stored text.
func (s *TextStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.ids = nil
	s.texts = nil
	return nil
}
