package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/goldenretriever/pkg/document"
)

// FlatStore is an exact nearest-neighbor store that scans every vector.
// With Accelerated set, the scan is split into shards searched concurrently.
type FlatStore struct {
	mu      sync.RWMutex
	config  VectorStoreConfig
	workers int

	ids     []string
	vectors [][]float32

	closed bool
}

// NewFlatStore creates an empty flat store.
func NewFlatStore(cfg VectorStoreConfig) (*FlatStore, error) {
	s := &FlatStore{config: cfg, workers: 1}
	if cfg.Accelerated {
		w, err := acceleratedWorkers(cfg)
		if err != nil {
			return nil, err
		}
		s.workers = w
	}
	return s, nil
}

// Add appends vectors. The first vector fixes the dimension when none was configured.
func (s *FlatStore) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	for _, v := range vectors {
		if s.config.Dimensions == 0 {
			s.config.Dimensions = len(v)
		}
		if len(v) != s.config.Dimensions {
			return dimensionMismatch(s.config.Dimensions, len(v))
		}
	}

	for i, id := range ids {
		s.ids = append(s.ids, id)
		s.vectors = append(s.vectors, prepareVector(vectors[i], s.config.Normalize))
	}

	return nil
}

// Search returns the k closest vectors by squared Euclidean distance.
func (s *FlatStore) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}
	if len(s.ids) == 0 || k <= 0 {
		return []*VectorResult{}, nil
	}
	if len(query) != s.config.Dimensions {
		return nil, dimensionMismatch(s.config.Dimensions, len(query))
	}

	q := prepareVector(query, s.config.Normalize)
	k = min(k, len(s.ids))

	var candidates []*VectorResult
	if s.workers > 1 {
		var err error
		candidates, err = s.scanSharded(ctx, q, k)
		if err != nil {
			return nil, err
		}
	} else {
		candidates = s.scan(q, 0, len(s.ids))
	}

	sortByDistance(candidates)
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates, nil
}

// scan computes distances for vectors[lo:hi].
func (s *FlatStore) scan(q []float32, lo, hi int) []*VectorResult {
	out := make([]*VectorResult, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, &VectorResult{
			ID:       s.ids[i],
			Distance: squaredL2(q, s.vectors[i]),
		})
	}
	return out
}

// scanSharded scans shards concurrently and keeps each shard's top k.
func (s *FlatStore) scanSharded(ctx context.Context, q []float32, k int) ([]*VectorResult, error) {
	n := len(s.ids)
	shards := min(s.workers, n)
	size := (n + shards - 1) / shards
	partial := make([][]*VectorResult, shards)

	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo, hi := i*size, min((i+1)*size, n)
		g.Go(func() error {
			res := s.scan(q, lo, hi)
			sortByDistance(res)
			if len(res) > k {
				res = res[:k]
			}
			partial[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make([]*VectorResult, 0, shards*k)
	for _, p := range partial {
		merged = append(merged, p...)
	}
	return merged, nil
}

// Count returns number of vectors.
func (s *FlatStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Dimensions returns the vector length.
func (s *FlatStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Dimensions
}

// Close drops the stored vectors.
func (s *FlatStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.ids = nil
	s.vectors = nil
	return nil
}

// sortByDistance orders results closest first, ties by ascending id.
func sortByDistance(results []*VectorResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return document.CompareIDs(results[i].ID, results[j].ID) < 0
	})
}

var _ VectorStore = (*FlatStore)(nil)
