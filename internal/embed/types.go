package embed

import (
	"context"
	"time"
)

// Common embedding constants
const (
	// DefaultBatchSize is the number of texts sent per encoder request.
	DefaultBatchSize = 64

	// MaxBatchSize caps a single request (prevents memory exhaustion)
	MaxBatchSize = 1024

	// DefaultTimeout bounds one remote embedding request.
	DefaultTimeout = 120 * time.Second

	// SampleText is encoded once at construction to learn the model's dimension.
	SampleText = "Test sentence"
)

// Device is the compute-device hint passed to an encoder.
type Device string

const (
	// DeviceCPU keeps inference on the CPU.
	DeviceCPU Device = "cpu"

	// DeviceAccelerated lets the provider use a GPU when it has one.
	DeviceAccelerated Device = "accelerated"
)

// Embedder turns text into fixed-length dense vectors.
// Embed(t) must equal EmbedBatch([t])[0].
type Embedder interface {
	// Embed generates embedding for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension
	Dimensions() int

	// ModelName returns the model identifier
	ModelName() string

	// Available checks if the embedder is ready
	Available(ctx context.Context) bool

	// Close releases resources
	Close() error
}

// embedOne implements Embed on top of EmbedBatch.
func embedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// toFloat32 converts a float64 vector returned by an HTTP API.
func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
