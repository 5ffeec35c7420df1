package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/Aman-CERP/goldenretriever/internal/store"
)

// StaticModelPrefix names the hash-based models: "static" or "static-<dims>".
const StaticModelPrefix = "static"

// StaticDimensions is the dimension of the bare "static" model.
const StaticDimensions = 256

// Weights for vector generation
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// StaticEmbedder generates embeddings by hashing words and character trigrams.
// It needs no network or model files and is fully deterministic.
type StaticEmbedder struct {
	dims      int
	stopWords map[string]struct{}

	mu     sync.RWMutex
	closed bool
}

// ParseStaticModel returns the dimension encoded in a static model name.
func ParseStaticModel(name string) (int, error) {
	if name == StaticModelPrefix {
		return StaticDimensions, nil
	}
	suffix, ok := strings.CutPrefix(name, StaticModelPrefix+"-")
	if !ok {
		return 0, fmt.Errorf("unknown static model %q (expected static or static-<dims>)", name)
	}
	dims, err := strconv.Atoi(suffix)
	if err != nil || dims < 8 || dims > 8192 {
		return 0, fmt.Errorf("invalid static model %q: dimension must be an integer in [8, 8192]", name)
	}
	return dims, nil
}

// NewStaticEmbedder creates a static embedder of the given dimension.
func NewStaticEmbedder(dims int) *StaticEmbedder {
	if dims <= 0 {
		dims = StaticDimensions
	}
	return &StaticEmbedder{
		dims:      dims,
		stopWords: store.BuildStopWordMap(store.DefaultStopWords),
	}
}

// Embed generates embedding for a single text.
func (e *StaticEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, e, text)
}

// EmbedBatch generates embeddings for multiple texts.
func (e *StaticEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, fmt.Errorf("embedder is closed")
	}

	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = e.generateVector(strings.TrimSpace(text))
	}
	return results, nil
}

// generateVector creates a hash-based vector from text.
// Whitespace-only text yields the zero vector.
func (e *StaticEmbedder) generateVector(text string) []float32 {
	vector := make([]float32, e.dims)
	if text == "" {
		return vector
	}

	tokens := store.FilterStopWords(store.Tokenize(text, 1), e.stopWords)
	for _, token := range tokens {
		vector[hashToIndex(token, e.dims)] += tokenWeight
	}

	for _, ngram := range extractNgrams(normalizeForNgrams(text), ngramSize) {
		vector[hashToIndex(ngram, e.dims)] += ngramWeight
	}

	return vector
}

// normalizeForNgrams keeps lowercased letters and digits.
func normalizeForNgrams(text string) []rune {
	out := make([]rune, 0, len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return out
}

// extractNgrams extracts n-rune sliding windows.
func extractNgrams(text []rune, n int) []string {
	if len(text) < n {
		return []string{}
	}

	ngrams := make([]string, 0, len(text)-n+1)
	for i := 0; i <= len(text)-n; i++ {
		ngrams = append(ngrams, string(text[i:i+n]))
	}
	return ngrams
}

// hashToIndex uses FNV-64 to map a string to an index.
func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}

// Dimensions returns the embedding dimension.
func (e *StaticEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *StaticEmbedder) ModelName() string {
	if e.dims == StaticDimensions {
		return StaticModelPrefix
	}
	return fmt.Sprintf("%s-%d", StaticModelPrefix, e.dims)
}

// Available checks if the embedder is ready (always true until closed).
func (e *StaticEmbedder) Available(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close releases resources.
func (e *StaticEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

var _ Embedder = (*StaticEmbedder)(nil)
