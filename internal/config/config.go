package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config file names.
const (
	ProjectConfigName    = ".goldenretriever.yaml"
	ProjectConfigNameAlt = ".goldenretriever.yml"
	EnvPrefix            = "GOLDENRETRIEVER_"
)

// Config represents the complete goldenretriever configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" json:"retrieval"`
	Lexical    LexicalConfig    `yaml:"lexical" json:"lexical"`
	Fuzzy      FuzzyConfig      `yaml:"fuzzy" json:"fuzzy"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// RetrievalConfig holds options shared by every strategy.
type RetrievalConfig struct {
	Strategy string   `yaml:"strategy" json:"strategy"`
	Key      string   `yaml:"key" json:"key"`
	On       []string `yaml:"on" json:"on"`
	K        int      `yaml:"k" json:"k"`

	// Workers bounds parallel queries and accelerated scans (0 = GOMAXPROCS).
	Workers int `yaml:"workers" json:"workers"`

	UseAcceleratedDevice bool `yaml:"use_accelerated_device" json:"use_accelerated_device"`
}

// LexicalConfig configures the lexical strategy.
type LexicalConfig struct {
	// Backend is "memory" (default), "bleve", "sqlite" or "tfidf".
	Backend string `yaml:"backend" json:"backend"`

	// SaturationParameter is BM25 k1. Only the memory backend honors it.
	SaturationParameter float64 `yaml:"saturation_parameter" json:"saturation_parameter"`

	// LengthNormalization is BM25 b, within [0, 1].
	LengthNormalization float64 `yaml:"length_normalization" json:"length_normalization"`
}

// FuzzyConfig configures the fuzzy strategy.
type FuzzyConfig struct {
	ScoringFunction string `yaml:"scoring_function" json:"scoring_function"`
}

// EmbeddingsConfig configures encoders for the vector strategies.
type EmbeddingsConfig struct {
	Provider string `yaml:"provider" json:"provider"`

	// Model is the shared encoder of vector-symmetric.
	Model string `yaml:"model" json:"model"`

	// DocumentModel and QueryModel are the encoders of vector-dual.
	DocumentModel string `yaml:"document_model" json:"document_model"`
	QueryModel    string `yaml:"query_model" json:"query_model"`

	BatchSize      int    `yaml:"batch_size" json:"batch_size"`
	QueryCacheSize int    `yaml:"query_cache_size" json:"query_cache_size"`
	VectorBackend  string `yaml:"vector_backend" json:"vector_backend"`
	Normalize      bool   `yaml:"normalize" json:"normalize"`

	OllamaHost    string `yaml:"ollama_host" json:"ollama_host"`       // default: http://localhost:11434
	OpenAIBaseURL string `yaml:"openai_base_url" json:"openai_base_url"` // default: api.openai.com
}

// LoggingConfig sets the stderr log level when --log-level is not given.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Retrieval: RetrievalConfig{
			Strategy: "lexical",
			Key:      "id",
			On:       []string{"text"},
			K:        5,
		},
		Lexical: LexicalConfig{
			Backend:             "memory",
			SaturationParameter: 1.5,
			LengthNormalization: 0.75,
		},
		Fuzzy: FuzzyConfig{
			ScoringFunction: "partial_ratio",
		},
		Embeddings: EmbeddingsConfig{
			Provider:       "static",
			Model:          "static-256",
			DocumentModel:  "static-256",
			QueryModel:     "static-256",
			BatchSize:      64,
			QueryCacheSize: 1000,
			VectorBackend:  "flat",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/goldenretriever/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/goldenretriever/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "goldenretriever", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "goldenretriever", "config.yaml")
	}
	return filepath.Join(home, ".config", "goldenretriever", "config.yaml")
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist.
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var parsed Config
	if err := parseYAMLFile(configPath, &parsed); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}
	return &parsed, nil
}

// Load loads configuration for the given directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/goldenretriever/config.yaml)
//  3. Project config (.goldenretriever.yaml in dir)
//  4. Environment variables (GOLDENRETRIEVER_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if path := ProjectConfigPath(dir); path != "" {
		var parsed Config
		if err := parseYAMLFile(path, &parsed); err != nil {
			return nil, err
		}
		cfg.mergeWith(&parsed)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFile overlays a single config file on the defaults, without the
// other layers.
func LoadFile(path string) (*Config, error) {
	var parsed Config
	if err := parseYAMLFile(path, &parsed); err != nil {
		return nil, err
	}
	cfg := NewConfig()
	cfg.mergeWith(&parsed)
	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
// .yaml takes precedence over .yml.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigName, ProjectConfigNameAlt} {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

func parseYAMLFile(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
// Booleans can only be switched on by a later layer.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Retrieval
	if other.Retrieval.Strategy != "" {
		c.Retrieval.Strategy = other.Retrieval.Strategy
	}
	if other.Retrieval.Key != "" {
		c.Retrieval.Key = other.Retrieval.Key
	}
	if len(other.Retrieval.On) > 0 {
		c.Retrieval.On = other.Retrieval.On
	}
	if other.Retrieval.K != 0 {
		c.Retrieval.K = other.Retrieval.K
	}
	if other.Retrieval.Workers != 0 {
		c.Retrieval.Workers = other.Retrieval.Workers
	}
	if other.Retrieval.UseAcceleratedDevice {
		c.Retrieval.UseAcceleratedDevice = true
	}

	// Lexical
	if other.Lexical.Backend != "" {
		c.Lexical.Backend = other.Lexical.Backend
	}
	if other.Lexical.SaturationParameter != 0 {
		c.Lexical.SaturationParameter = other.Lexical.SaturationParameter
	}
	if other.Lexical.LengthNormalization != 0 {
		c.Lexical.LengthNormalization = other.Lexical.LengthNormalization
	}

	// Fuzzy
	if other.Fuzzy.ScoringFunction != "" {
		c.Fuzzy.ScoringFunction = other.Fuzzy.ScoringFunction
	}

	// Embeddings
	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.DocumentModel != "" {
		c.Embeddings.DocumentModel = other.Embeddings.DocumentModel
	}
	if other.Embeddings.QueryModel != "" {
		c.Embeddings.QueryModel = other.Embeddings.QueryModel
	}
	if other.Embeddings.BatchSize != 0 {
		c.Embeddings.BatchSize = other.Embeddings.BatchSize
	}
	if other.Embeddings.QueryCacheSize != 0 {
		c.Embeddings.QueryCacheSize = other.Embeddings.QueryCacheSize
	}
	if other.Embeddings.VectorBackend != "" {
		c.Embeddings.VectorBackend = other.Embeddings.VectorBackend
	}
	if other.Embeddings.Normalize {
		c.Embeddings.Normalize = true
	}
	if other.Embeddings.OllamaHost != "" {
		c.Embeddings.OllamaHost = other.Embeddings.OllamaHost
	}
	if other.Embeddings.OpenAIBaseURL != "" {
		c.Embeddings.OpenAIBaseURL = other.Embeddings.OpenAIBaseURL
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
}

// applyEnvOverrides applies GOLDENRETRIEVER_* environment variable overrides.
// Unlike file layers, env values may switch booleans off.
func (c *Config) applyEnvOverrides() error {
	str := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	var errs []string
	num := func(name string, dst *int) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	flt := func(name string, dst *float64) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	flag := func(name string, dst *bool) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	str("STRATEGY", &c.Retrieval.Strategy)
	str("KEY", &c.Retrieval.Key)
	if v := os.Getenv(EnvPrefix + "ON"); v != "" {
		c.Retrieval.On = splitList(v)
	}
	num("K", &c.Retrieval.K)
	num("WORKERS", &c.Retrieval.Workers)
	flag("ACCELERATED", &c.Retrieval.UseAcceleratedDevice)

	str("LEXICAL_BACKEND", &c.Lexical.Backend)
	flt("SATURATION", &c.Lexical.SaturationParameter)
	flt("LENGTH_NORMALIZATION", &c.Lexical.LengthNormalization)

	str("FUZZY_SCORER", &c.Fuzzy.ScoringFunction)

	str("EMBEDDINGS_PROVIDER", &c.Embeddings.Provider)
	str("EMBEDDINGS_MODEL", &c.Embeddings.Model)
	str("DOCUMENT_MODEL", &c.Embeddings.DocumentModel)
	str("QUERY_MODEL", &c.Embeddings.QueryModel)
	num("BATCH_SIZE", &c.Embeddings.BatchSize)
	num("QUERY_CACHE_SIZE", &c.Embeddings.QueryCacheSize)
	str("VECTOR_BACKEND", &c.Embeddings.VectorBackend)
	flag("NORMALIZE", &c.Embeddings.Normalize)
	str("OLLAMA_HOST", &c.Embeddings.OllamaHost)
	str("OPENAI_BASE_URL", &c.Embeddings.OpenAIBaseURL)

	str("LOG_LEVEL", &c.Logging.Level)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment overrides: %s", strings.Join(errs, "; "))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration and returns an error if invalid.
// Strategy names, backends and scorers are checked when the retriever is built.
func (c *Config) Validate() error {
	if c.Retrieval.Key == "" {
		return fmt.Errorf("retrieval.key must not be empty")
	}
	if len(c.Retrieval.On) == 0 {
		return fmt.Errorf("retrieval.on must list at least one field")
	}
	if c.Retrieval.K <= 0 {
		return fmt.Errorf("retrieval.k must be positive, got %d", c.Retrieval.K)
	}
	if c.Retrieval.Workers < 0 {
		return fmt.Errorf("retrieval.workers must be non-negative, got %d", c.Retrieval.Workers)
	}
	if !(c.Lexical.SaturationParameter >= 0) || math.IsInf(c.Lexical.SaturationParameter, 0) {
		return fmt.Errorf("lexical.saturation_parameter must be non-negative, got %f", c.Lexical.SaturationParameter)
	}
	if !(c.Lexical.LengthNormalization >= 0 && c.Lexical.LengthNormalization <= 1) {
		return fmt.Errorf("lexical.length_normalization must be between 0 and 1, got %f", c.Lexical.LengthNormalization)
	}
	if c.Embeddings.BatchSize <= 0 {
		return fmt.Errorf("embeddings.batch_size must be positive, got %d", c.Embeddings.BatchSize)
	}
	if c.Embeddings.QueryCacheSize < 0 {
		return fmt.Errorf("embeddings.query_cache_size must be non-negative, got %d", c.Embeddings.QueryCacheSize)
	}

	validProviders := map[string]bool{"static": true, "ollama": true, "openai": true}
	if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
		return fmt.Errorf("embeddings.provider must be 'static', 'ollama' or 'openai', got %s", c.Embeddings.Provider)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}
	return nil
}

// Options flattens the configuration into retriever option keys. Keys that
// the chosen strategy does not use are dropped by the retriever.
func (c *Config) Options() map[string]any {
	opts := map[string]any{
		"key":                    c.Retrieval.Key,
		"on":                     c.Retrieval.On,
		"use_accelerated_device": c.Retrieval.UseAcceleratedDevice,
		"workers":                c.Retrieval.Workers,
		"saturation_parameter":   c.Lexical.SaturationParameter,
		"length_normalization":   c.Lexical.LengthNormalization,
		"lexical_backend":        c.Lexical.Backend,
		"fuzzy_scoring_function": c.Fuzzy.ScoringFunction,
		"provider":               c.Embeddings.Provider,
		"model_name":             c.Embeddings.Model,
		"document_model":         c.Embeddings.DocumentModel,
		"query_model":            c.Embeddings.QueryModel,
		"batch_size":             c.Embeddings.BatchSize,
		"query_cache_size":       c.Embeddings.QueryCacheSize,
		"vector_backend":         c.Embeddings.VectorBackend,
		"normalize":              c.Embeddings.Normalize,
	}

	switch strings.ToLower(c.Embeddings.Provider) {
	case "ollama":
		if c.Embeddings.OllamaHost != "" {
			opts["host"] = c.Embeddings.OllamaHost
		}
	case "openai":
		if c.Embeddings.OpenAIBaseURL != "" {
			opts["base_url"] = c.Embeddings.OpenAIBaseURL
		}
	}
	return opts
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FindProjectRoot walks up from startDir to the nearest directory holding a
// project config file or a .git directory. Falls back to startDir.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if ProjectConfigPath(currentDir) != "" || dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
