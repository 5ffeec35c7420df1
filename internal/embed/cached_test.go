package embed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder records the texts it was asked to encode.
type countingEmbedder struct {
	mu    sync.Mutex
	calls [][]string
	fail  bool
	inner *StaticEmbedder
}

func newCountingEmbedder() *countingEmbedder {
	return &countingEmbedder{inner: NewStaticEmbedder(16)}
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, c, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	c.calls = append(c.calls, append([]string(nil), texts...))
	c.mu.Unlock()
	if c.fail {
		return nil, errors.New("encoder down")
	}
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) Dimensions() int                  { return c.inner.Dimensions() }
func (c *countingEmbedder) ModelName() string                { return "counting" }
func (c *countingEmbedder) Available(ctx context.Context) bool { return true }
func (c *countingEmbedder) Close() error                     { return nil }

func TestCachedEmbedder_HitSkipsInner(t *testing.T) {
	// Given: a cached embedder
	inner := newCountingEmbedder()
	c := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	// When: the same text is embedded twice
	first, err := c.Embed(ctx, "paris")
	require.NoError(t, err)
	second, err := c.Embed(ctx, "paris")
	require.NoError(t, err)

	// Then: the inner embedder ran once and results match
	assert.Len(t, inner.calls, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.CacheLen())
}

func TestCachedEmbedder_BatchSendsOnlyMisses(t *testing.T) {
	// Given: one text already cached
	inner := newCountingEmbedder()
	c := NewCachedEmbedder(inner, 10)
	ctx := context.Background()
	_, err := c.Embed(ctx, "b")
	require.NoError(t, err)

	// When: embedding a batch containing it
	vecs, err := c.EmbedBatch(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)

	// Then: only the misses reach the inner embedder, order is preserved
	require.Len(t, inner.calls, 2)
	assert.Equal(t, []string{"a", "c"}, inner.calls[1])
	want, _ := inner.inner.EmbedBatch(ctx, []string{"a", "b", "c"})
	assert.Equal(t, want, vecs)
}

func TestCachedEmbedder_ErrorNotCached(t *testing.T) {
	inner := newCountingEmbedder()
	inner.fail = true
	c := NewCachedEmbedder(inner, 10)

	_, err := c.Embed(context.Background(), "x")

	assert.Error(t, err)
	assert.Equal(t, 0, c.CacheLen())
}

func TestCachedEmbedder_Delegates(t *testing.T) {
	inner := newCountingEmbedder()
	c := NewCachedEmbedder(inner, 0)

	assert.Equal(t, 16, c.Dimensions())
	assert.Equal(t, "counting", c.ModelName())
	assert.True(t, c.Available(context.Background()))
	assert.Same(t, inner, c.Inner())
	assert.NoError(t, c.Close())
}
