package embed

import "time"

// Ollama API constants
const (
	// DefaultOllamaHost is the default Ollama API endpoint
	DefaultOllamaHost = "http://localhost:11434"

	// OllamaConnectTimeout bounds the model discovery request.
	OllamaConnectTimeout = 10 * time.Second

	// OllamaPoolSize for connection pool
	OllamaPoolSize = 4
)

// OllamaConfig configures the Ollama embedder
type OllamaConfig struct {
	// Host is the Ollama API endpoint (default: http://localhost:11434)
	Host string

	// Model is the embedding model to use. Required.
	Model string

	// Device selects CPU-only inference (num_gpu=0) or lets Ollama pick.
	Device Device

	// Dimensions can be set to override auto-detection (0 = auto-detect)
	Dimensions int

	// Timeout for each API request (default: 120s)
	Timeout time.Duration

	// PoolSize for HTTP connection pool (default: 4)
	PoolSize int
}

// DefaultOllamaConfig returns sensible defaults
func DefaultOllamaConfig() OllamaConfig {
	return OllamaConfig{
		Host:     DefaultOllamaHost,
		Device:   DeviceAccelerated,
		Timeout:  DefaultTimeout,
		PoolSize: OllamaPoolSize,
	}
}

// OllamaEmbedRequest is the Ollama /api/embed request
type OllamaEmbedRequest struct {
	Model   string         `json:"model"`
	Input   any            `json:"input"` // string or []string for batch
	Options map[string]any `json:"options,omitempty"`
}

// OllamaEmbedResponse is the Ollama /api/embed response
type OllamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// OllamaModelListResponse is the Ollama /api/tags response
type OllamaModelListResponse struct {
	Models []OllamaModelInfo `json:"models"`
}

// OllamaModelInfo describes an installed model
type OllamaModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}
