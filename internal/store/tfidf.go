package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/Aman-CERP/goldenretriever/pkg/document"
)

// TFIDFIndex ranks documents by the cosine of their TF-IDF vectors with the
// query vector. Term weights are raw counts times the smoothed idf
// ln((1+n)/(1+df)) + 1, and both sides are L2 normalized.
type TFIDFIndex struct {
	mu        sync.RWMutex
	config    LexicalConfig
	stopWords map[string]struct{}
	closed    bool

	ids      []string
	postings map[string]map[int]int // term -> doc ordinal -> term frequency
	norms    []float64              // L2 norm of each document vector
}

// NewTFIDFIndex creates an empty TF-IDF index.
func NewTFIDFIndex(config LexicalConfig) *TFIDFIndex {
	return &TFIDFIndex{
		config:    config,
		stopWords: BuildStopWordMap(config.StopWords),
		postings:  make(map[string]map[int]int),
	}
}

// Index adds documents and refreshes every document norm, since idf depends
// on the size of the whole collection.
func (t *TFIDFIndex) Index(ctx context.Context, docs []*LexicalDocument) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("index is closed")
	}

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		ord := len(t.ids)
		t.ids = append(t.ids, doc.ID)
		for _, term := range analyze(doc.Content, t.config, t.stopWords) {
			p, ok := t.postings[term]
			if !ok {
				p = make(map[int]int)
				t.postings[term] = p
			}
			p[ord]++
		}
	}

	t.norms = make([]float64, len(t.ids))
	for _, p := range t.postings {
		idf := t.idf(len(p))
		for ord, tf := range p {
			w := float64(tf) * idf
			t.norms[ord] += w * w
		}
	}
	for i, sq := range t.norms {
		t.norms[i] = math.Sqrt(sq)
	}

	return nil
}

func (t *TFIDFIndex) idf(df int) float64 {
	n := float64(len(t.ids))
	return math.Log((1+n)/(1+float64(df))) + 1
}

// Search returns documents sharing at least one term with query, by descending cosine.
func (t *TFIDFIndex) Search(ctx context.Context, query string, limit int) ([]*LexicalResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return nil, fmt.Errorf("index is closed")
	}
	if len(t.ids) == 0 || limit <= 0 {
		return []*LexicalResult{}, nil
	}

	terms := analyze(query, t.config, t.stopWords)
	counts := make(map[string]int)
	for _, term := range terms {
		if _, ok := t.postings[term]; ok {
			counts[term]++
		}
	}
	if len(counts) == 0 {
		return []*LexicalResult{}, nil
	}

	var queryNorm float64
	dots := make(map[int]float64)
	matched := make(map[int][]string)
	for _, term := range uniqueTerms(terms) {
		qtf, ok := counts[term]
		if !ok {
			continue
		}
		p := t.postings[term]
		idf := t.idf(len(p))
		qw := float64(qtf) * idf
		queryNorm += qw * qw
		for ord, tf := range p {
			dots[ord] += qw * float64(tf) * idf
			matched[ord] = append(matched[ord], term)
		}
	}
	queryNorm = math.Sqrt(queryNorm)

	results := make([]*LexicalResult, 0, len(dots))
	for ord, dot := range dots {
		results = append(results, &LexicalResult{
			DocID:        t.ids[ord],
			Score:        dot / (queryNorm * t.norms[ord]),
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
func (t *TFIDFIndex) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ids)
}

// Close releases the postings.
func (t *TFIDFIndex) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	t.postings = nil
	return nil
}

var _ LexicalIndex = (*TFIDFIndex)(nil)
