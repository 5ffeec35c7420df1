package retriever

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Aman-CERP/goldenretriever/internal/embed"
	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/fuzzy"
	"github.com/Aman-CERP/goldenretriever/internal/store"
)

// Options holds construction parameters by name. Values may be Go values or
// strings (as given on a command line); they are converted when resolved.
type Options map[string]any

// Option keys.
const (
	OptKey                  = "key"
	OptOn                   = "on"
	OptAcceleratedDevice    = "use_accelerated_device"
	OptWorkers              = "workers"
	OptSaturation           = "saturation_parameter"
	OptLengthNormalization  = "length_normalization"
	OptLexicalBackend       = "lexical_backend"
	OptFuzzyScoringFunction = "fuzzy_scoring_function"
	OptModelName            = "model_name"
	OptDocumentModel        = "document_model"
	OptQueryModel           = "query_model"
	OptProvider             = "provider"
	OptHost                 = "host"
	OptBaseURL              = "base_url"
	OptNormalize            = "normalize"
	OptVectorBackend        = "vector_backend"
	OptBatchSize            = "batch_size"
	OptQueryCacheSize       = "query_cache_size"
)

// optionAliases maps alternative spellings onto canonical keys.
var optionAliases = map[string]string{
	"fuzzer": OptFuzzyScoringFunction,
}

var commonOptions = []string{OptKey, OptOn, OptAcceleratedDevice, OptWorkers}

var vectorOptions = []string{
	OptProvider, OptHost, OptBaseURL, OptNormalize, OptVectorBackend, OptBatchSize, OptQueryCacheSize,
}

var strategyOptions = map[Strategy][]string{
	Lexical:         {OptSaturation, OptLengthNormalization, OptLexicalBackend},
	Fuzzy:           {OptFuzzyScoringFunction},
	VectorSymmetric: append([]string{OptModelName}, vectorOptions...),
	VectorDual:      append([]string{OptDocumentModel, OptQueryModel}, vectorOptions...),
}

// RecognizedOptions returns the option keys the strategy accepts, sorted.
func RecognizedOptions(s Strategy) []string {
	keys := append(slices.Clone(commonOptions), strategyOptions[s]...)
	slices.Sort(keys)
	return keys
}

// FilterOptions keeps the options the strategy recognizes and drops the
// rest without error. Aliases are rewritten to their canonical key; a
// canonical key wins over its alias. dropped is sorted.
func FilterOptions(s Strategy, opts Options) (kept Options, dropped []string) {
	recognized := make(map[string]struct{})
	for _, k := range RecognizedOptions(s) {
		recognized[k] = struct{}{}
	}

	kept = make(Options, len(opts))
	for _, k := range slices.Sorted(maps.Keys(opts)) {
		canonical := k
		if alias, ok := optionAliases[k]; ok {
			canonical = alias
		}
		if _, ok := recognized[canonical]; !ok {
			dropped = append(dropped, k)
			continue
		}
		if _, exists := kept[canonical]; exists && canonical != k {
			continue
		}
		kept[canonical] = opts[k]
	}
	return kept, dropped
}

// settings is the typed view of filtered options.
type settings struct {
	key         string
	on          []string
	accelerated bool
	workers     int

	saturation     float64
	lengthNorm     float64
	lexicalBackend string
	saturationSet  bool

	scorerName string

	model         string
	documentModel string
	queryModel    string
	provider      embed.ProviderType
	host          string
	baseURL       string
	normalize     bool
	vectorBackend string
	batchSize     int
	cacheSize     int
}

func defaultSettings() settings {
	lex := store.DefaultLexicalConfig()
	return settings{
		key:        "id",
		on:         []string{"text"},
		saturation: lex.K1,
		lengthNorm: lex.B,
		scorerName: fuzzy.DefaultScorerName,
		provider:   embed.ProviderStatic,
		batchSize:  embed.DefaultBatchSize,
	}
}

// resolveSettings filters opts for the strategy and converts the survivors.
func resolveSettings(s Strategy, opts Options) (settings, error) {
	kept, dropped := FilterOptions(s, opts)
	if len(dropped) > 0 {
		slog.Debug("options_ignored",
			slog.String("strategy", string(s)),
			slog.Any("keys", dropped))
	}

	cfg := defaultSettings()
	var err error
	for k, v := range kept {
		switch k {
		case OptKey:
			cfg.key, err = asString(v)
		case OptOn:
			cfg.on, err = asStringSlice(v)
		case OptAcceleratedDevice:
			cfg.accelerated, err = asBool(v)
		case OptWorkers:
			cfg.workers, err = asInt(v)
		case OptSaturation:
			cfg.saturation, err = asFloat(v)
			cfg.saturationSet = true
		case OptLengthNormalization:
			cfg.lengthNorm, err = asFloat(v)
			cfg.saturationSet = true
		case OptLexicalBackend:
			cfg.lexicalBackend, err = asString(v)
		case OptFuzzyScoringFunction:
			cfg.scorerName, err = asString(v)
		case OptModelName:
			cfg.model, err = asString(v)
		case OptDocumentModel:
			cfg.documentModel, err = asString(v)
		case OptQueryModel:
			cfg.queryModel, err = asString(v)
		case OptProvider:
			var p string
			if p, err = asString(v); err == nil {
				cfg.provider, err = embed.ParseProvider(p)
			}
		case OptHost:
			cfg.host, err = asString(v)
		case OptBaseURL:
			cfg.baseURL, err = asString(v)
		case OptNormalize:
			cfg.normalize, err = asBool(v)
		case OptVectorBackend:
			cfg.vectorBackend, err = asString(v)
		case OptBatchSize:
			cfg.batchSize, err = asInt(v)
		case OptQueryCacheSize:
			cfg.cacheSize, err = asInt(v)
		}
		if err != nil {
			return settings{}, rerrors.New(rerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("invalid value for option %s: %v", k, err), err).
				WithDetail("option", k)
		}
	}

	if err := cfg.validate(); err != nil {
		return settings{}, err
	}
	return cfg, nil
}

func (c settings) validate() error {
	switch {
	case c.key == "":
		return rerrors.Newf(rerrors.ErrCodeConfigInvalid, "option %s must not be empty", OptKey)
	case len(c.on) == 0:
		return rerrors.Newf(rerrors.ErrCodeConfigInvalid, "option %s must name at least one field", OptOn)
	case c.workers < 0:
		return rerrors.Newf(rerrors.ErrCodeConfigInvalid, "option %s must not be negative", OptWorkers)
	case !(c.saturation >= 0) || math.IsInf(c.saturation, 0):
		return rerrors.Newf(rerrors.ErrCodeConfigInvalid, "option %s must not be negative", OptSaturation)
	case !(c.lengthNorm >= 0 && c.lengthNorm <= 1):
		return rerrors.Newf(rerrors.ErrCodeConfigInvalid, "option %s must be within [0, 1]", OptLengthNormalization)
	case c.batchSize <= 0:
		return rerrors.Newf(rerrors.ErrCodeConfigInvalid, "option %s must be positive", OptBatchSize)
	case c.cacheSize < 0:
		return rerrors.Newf(rerrors.ErrCodeConfigInvalid, "option %s must not be negative", OptQueryCacheSize)
	}
	return nil
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}

func asStringSlice(v any) ([]string, error) {
	var raw []string
	switch t := v.(type) {
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			s, err := asString(item)
			if err != nil {
				return nil, err
			}
			raw = append(raw, s)
		}
	case string:
		raw = strings.Split(t, ",")
	default:
		return nil, fmt.Errorf("expected a list of field names, got %T", v)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func asBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(t))
	default:
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("expected an integer, got %v", t)
		}
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}

func asFloat(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(t), 64); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number, got %v", f)
	}
	return f, nil
}
