package store

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/coder/hnsw"
)

// HNSWStore implements VectorStore using the coder/hnsw pure Go graph.
// Results are approximate; distances are reported squared to match FlatStore.
type HNSWStore struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	config VectorStoreConfig

	// ID mapping (internal key -> document ID)
	keyMap  map[uint64]string
	nextKey uint64

	closed bool
}

// NewHNSWStore creates a new HNSW-based vector store.
func NewHNSWStore(cfg VectorStoreConfig) (*HNSWStore, error) {
	if cfg.M == 0 {
		cfg.M = 16 // coder/hnsw default recommendation
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 20 // coder/hnsw default
	}
	if cfg.Accelerated {
		// The graph walk is single-threaded; only validate that the device exists.
		if _, err := acceleratedWorkers(cfg); err != nil {
			return nil, err
		}
	}

	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.EuclideanDistance
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25
	graph.Rng = rand.New(rand.NewSource(cfg.Seed))

	return &HNSWStore{
		graph:  graph,
		config: cfg,
		keyMap: make(map[uint64]string),
	}, nil
}

// Add inserts vectors with their IDs.
func (s *HNSWStore) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) == 0 {
		return nil
	}

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

	nodes := make([]hnsw.Node[uint64], 0, len(ids))
	for i, id := range ids {
		key := s.nextKey
		s.nextKey++
		nodes = append(nodes, hnsw.MakeNode(key, prepareVector(vectors[i], s.config.Normalize)))
		s.keyMap[key] = id
	}
	s.graph.Add(nodes...)

	return nil
}

// Search finds up to k approximate nearest neighbors.
func (s *HNSWStore) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	if s.graph.Len() == 0 || k <= 0 {
		return []*VectorResult{}, nil
	}

	if len(query) != s.config.Dimensions {
		return nil, dimensionMismatch(s.config.Dimensions, len(query))
	}

	q := prepareVector(query, s.config.Normalize)
	want := min(k, len(s.keyMap))
	nodes := s.graph.Search(q, want)

	results := make([]*VectorResult, 0, want)
	seen := make(map[uint64]struct{}, len(nodes))
	for _, node := range nodes {
		id, exists := s.keyMap[node.Key]
		if !exists {
			continue
		}
		seen[node.Key] = struct{}{}
		d := s.graph.Distance(q, node.Value)
		results = append(results, &VectorResult{
			ID:       id,
			Distance: d * d,
		})
	}

	// The graph walk can miss nodes when k is close to Count; fill the
	// remainder with an exact scan so callers still get min(k, Count) results.
	if len(results) < want {
		var err error
		if results, err = s.topUp(ctx, q, results, seen); err != nil {
			return nil, err
		}
	}
	sortByDistance(results)
	if len(results) > want {
		results = results[:want]
	}

	return results, nil
}

func (s *HNSWStore) topUp(ctx context.Context, q []float32, results []*VectorResult, seen map[uint64]struct{}) ([]*VectorResult, error) {
	for key, id := range s.keyMap {
		if _, ok := seen[key]; ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, ok := s.graph.Lookup(key)
		if !ok {
			continue
		}
		d := s.graph.Distance(q, vec)
		results = append(results, &VectorResult{ID: id, Distance: d * d})
	}
	return results, nil
}

// Count returns number of vectors.
func (s *HNSWStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0
	}
	return len(s.keyMap)
}

// Dimensions returns the vector length.
func (s *HNSWStore) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.Dimensions
}

// Close releases the graph.
func (s *HNSWStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	// coder/hnsw Graph doesn't need explicit cleanup
	s.graph = nil

	return nil
}

var _ VectorStore = (*HNSWStore)(nil)
