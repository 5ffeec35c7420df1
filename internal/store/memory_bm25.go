package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Aman-CERP/goldenretriever/pkg/document"
)

// MemoryBM25Index is an Okapi BM25 index held in plain maps.
// Unlike the bleve and sqlite backends it honours K1 and B from LexicalConfig.
type MemoryBM25Index struct {
	mu        sync.RWMutex
	config    LexicalConfig
	stopWords map[string]struct{}
	closed    bool

	ids      []string
	lengths  []int
	postings map[string]map[int]int // term -> doc ordinal -> term frequency
	totalLen int
}

// NewMemoryBM25Index creates an empty in-memory BM25 index.
// K1 of zero is honoured and reduces term frequency to presence.
// Negative or non-finite parameters fall back to the defaults.
func NewMemoryBM25Index(config LexicalConfig) *MemoryBM25Index {
	if config.K1 < 0 || math.IsNaN(config.K1) || math.IsInf(config.K1, 0) {
		config.K1 = DefaultLexicalConfig().K1
	}
	if !(config.B >= 0 && config.B <= 1) {
		config.B = DefaultLexicalConfig().B
	}
	return &MemoryBM25Index{
		config:    config,
		stopWords: BuildStopWordMap(config.StopWords),
		postings:  make(map[string]map[int]int),
	}
}

// Index adds documents to the index.
func (m *MemoryBM25Index) Index(ctx context.Context, docs []*LexicalDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("index is closed")
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		ord := len(m.ids)
		terms := analyze(doc.Content, m.config, m.stopWords)
		m.ids = append(m.ids, doc.ID)
		m.lengths = append(m.lengths, len(terms))
		m.totalLen += len(terms)

		for _, term := range terms {
			p, ok := m.postings[term]
			if !ok {
				p = make(map[int]int)
				m.postings[term] = p
			}
			p[ord]++
		}
	}

	return nil
}

// Search scores every document sharing at least one term with query.
func (m *MemoryBM25Index) Search(ctx context.Context, query string, limit int) ([]*LexicalResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("index is closed")
	}

	terms := uniqueTerms(analyze(query, m.config, m.stopWords))
	if len(terms) == 0 || len(m.ids) == 0 || limit <= 0 {
		return []*LexicalResult{}, nil
	}

	n := float64(len(m.ids))
	avgLen := float64(m.totalLen) / n
	if avgLen == 0 {
		avgLen = 1
	}
	k1, b := m.config.K1, m.config.B

	scores := make(map[int]float64)
	matched := make(map[int][]string)
	for _, term := range terms {
		p := m.postings[term]
		if len(p) == 0 {
			continue
		}
		df := float64(len(p))
		idf := math.Log((n-df+0.5)/(df+0.5) + 1)
		for ord, tf := range p {
			freq := float64(tf)
			norm := k1 * (1 - b + b*float64(m.lengths[ord])/avgLen)
			scores[ord] += idf * freq * (k1 + 1) / (freq + norm)
			matched[ord] = append(matched[ord], term)
		}
	}

	results := make([]*LexicalResult, 0, len(scores))
	for ord, score := range scores {
		results = append(results, &LexicalResult{
			DocID:        m.ids[ord],
			Score:        score,
			MatchedTerms: matched[ord],
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return document.CompareIDs(results[i].DocID, results[j].DocID) < 0
	})
	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the number of indexed documents.
func (m *MemoryBM25Index) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Close releases the postings.
func (m *MemoryBM25Index) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.postings = nil
	return nil
}

var _ LexicalIndex = (*MemoryBM25Index)(nil)
