package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Aman-CERP/goldenretriever/internal/metrics"
)

// OpenAIAPIKeyEnv is read when OpenAIConfig.APIKey is empty.
const OpenAIAPIKeyEnv = "OPENAI_API_KEY"

// OpenAIConfig configures an OpenAI-compatible embedding endpoint.
type OpenAIConfig struct {
	// APIKey authenticates requests. Falls back to $OPENAI_API_KEY.
	APIKey string

	// BaseURL overrides the API endpoint (empty = api.openai.com).
	BaseURL string

	// Model is the embedding model name. Required.
	Model string

	// Dimensions requests truncated output when the model supports it (0 = native).
	Dimensions int
}

// OpenAIEmbedder generates embeddings through the OpenAI embeddings API
// or any server that speaks it.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	reqDim int
	dims   int

	mu     sync.RWMutex
	closed bool
}

// Verify interface implementation at compile time
var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates the client and detects the output dimension.
func NewOpenAIEmbedder(ctx context.Context, cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai model name is required")
	}
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(OpenAIAPIKeyEnv)
	}

	clientCfg := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	e := &OpenAIEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		reqDim: cfg.Dimensions,
	}

	sample, err := e.request(ctx, []string{SampleText})
	if err != nil {
		return nil, fmt.Errorf("failed to detect embedding dimensions: %w", err)
	}
	e.dims = len(sample[0])

	slog.Debug("openai_embedder_ready",
		slog.String("model", e.model),
		slog.Int("dimensions", e.dims))

	return e, nil
}

// Embed generates embedding for a single text
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return embedOne(ctx, e, text)
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("embedder is closed")
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vecs, err := e.request(ctx, texts)
	if err != nil {
		metrics.EncodeRequestsTotal.WithLabelValues("openai", e.model, "error").Inc()
		return nil, err
	}
	metrics.EncodeRequestsTotal.WithLabelValues("openai", e.model, "success").Inc()
	return vecs, nil
}

func (e *OpenAIEmbedder) request(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     e.reqDim,
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	for i, v := range out {
		if len(v) == 0 {
			return nil, fmt.Errorf("empty embedding returned for input %d", i)
		}
	}
	return out, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("openai api error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("openai request failed (status %d): %w", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Errorf("openai embedding request failed: %w", err)
}

// Dimensions returns the embedding dimension
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier
func (e *OpenAIEmbedder) ModelName() string {
	return e.model
}

// Available reports whether the embedder is open.
func (e *OpenAIEmbedder) Available(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close marks the embedder closed.
func (e *OpenAIEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
