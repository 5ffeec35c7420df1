package embed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
)

// ProviderType represents an embedding provider
type ProviderType string

const (
	// ProviderStatic uses hash-based embeddings computed in-process.
	ProviderStatic ProviderType = "static"

	// ProviderOllama uses the Ollama HTTP API.
	ProviderOllama ProviderType = "ollama"

	// ProviderOpenAI uses the OpenAI embeddings API or a compatible server.
	ProviderOpenAI ProviderType = "openai"
)

// Providers lists the supported provider names.
var Providers = []ProviderType{ProviderStatic, ProviderOllama, ProviderOpenAI}

// ParseProvider converts a string to ProviderType.
func ParseProvider(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "static":
		return ProviderStatic, nil
	case "ollama":
		return ProviderOllama, nil
	case "openai":
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unknown embedding provider %q (supported: static, ollama, openai)", s)
	}
}

// Spec describes one encoder to load.
type Spec struct {
	Provider ProviderType
	Model    string
	Device   Device

	// Host is the Ollama endpoint.
	Host string

	// BaseURL and APIKey configure the OpenAI client.
	BaseURL string
	APIKey  string

	// Dimensions overrides auto-detection for remote providers (0 = detect).
	Dimensions int

	// CacheSize wraps the encoder in an LRU cache when > 0.
	CacheSize int
}

// NewEmbedder loads the encoder described by spec. There is no fallback:
// a model that cannot be loaded is an ERR_201 resource error.
func NewEmbedder(ctx context.Context, spec Spec) (Embedder, error) {
	if strings.TrimSpace(spec.Model) == "" {
		return nil, rerrors.New(rerrors.ErrCodeModelRequired, "a model name is required", nil).
			WithSuggestion("Set model_name (or document_model and query_model) in the options")
	}
	if spec.Device == "" {
		spec.Device = DeviceCPU
	}

	var (
		embedder Embedder
		err      error
	)

	switch spec.Provider {
	case "", ProviderStatic:
		var dims int
		dims, err = ParseStaticModel(spec.Model)
		if err == nil {
			embedder = NewStaticEmbedder(dims)
		}
	case ProviderOllama:
		cfg := DefaultOllamaConfig()
		cfg.Model = spec.Model
		cfg.Device = spec.Device
		cfg.Dimensions = spec.Dimensions
		if spec.Host != "" {
			cfg.Host = spec.Host
		}
		embedder, err = NewOllamaEmbedder(ctx, cfg)
	case ProviderOpenAI:
		embedder, err = NewOpenAIEmbedder(ctx, OpenAIConfig{
			APIKey:     spec.APIKey,
			BaseURL:    spec.BaseURL,
			Model:      spec.Model,
			Dimensions: spec.Dimensions,
		})
	default:
		return nil, rerrors.Newf(rerrors.ErrCodeConfigInvalid, "unknown embedding provider %q", spec.Provider).
			WithDetail("provider", string(spec.Provider))
	}

	if err != nil {
		return nil, rerrors.New(rerrors.ErrCodeModelLoadFailed,
			fmt.Sprintf("failed to load model %q", spec.Model), err).
			WithDetail("provider", string(spec.Provider)).
			WithDetail("model", spec.Model)
	}

	slog.Info("embedder_loaded",
		slog.String("provider", string(spec.Provider)),
		slog.String("model", embedder.ModelName()),
		slog.Int("dimensions", embedder.Dimensions()))

	if spec.CacheSize > 0 {
		return NewCachedEmbedder(embedder, spec.CacheSize), nil
	}
	return embedder, nil
}
