package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/goldenretriever/internal/config"
	rerrors "github.com/Aman-CERP/goldenretriever/internal/errors"
	"github.com/Aman-CERP/goldenretriever/internal/metrics"
	"github.com/Aman-CERP/goldenretriever/internal/output"
	"github.com/Aman-CERP/goldenretriever/internal/ui"
	"github.com/Aman-CERP/goldenretriever/pkg/document"
	"github.com/Aman-CERP/goldenretriever/pkg/retriever"
)

// retrieveOptions holds CLI flags for retrieve.
type retrieveOptions struct {
	strategy      string
	key           string
	on            []string
	k             int
	batchSize     int
	workers       int
	provider      string
	model         string
	documentModel string
	queryModel    string
	saturation    float64
	scorer        string
	accelerated   bool
	extra         []string // raw key=value options
	queriesFile   string
	format        string
	showMetrics   bool
	noTUI         bool
	noColor       bool
}

func newRetrieveCmd() *cobra.Command {
	var opts retrieveOptions

	cmd := &cobra.Command{
		Use:   "retrieve <documents.json|-> [query...]",
		Short: "Build a retriever over a collection and run queries",
		Long: `Build a retriever over a JSON array of documents and print the top-k
document ids for every query.

Documents are read from the file argument, or from stdin when it is "-".
Queries are the remaining arguments, or one per line from --queries.
Each document needs the key field (default "id") and the fields named by
--on are joined with a space to form its text.

Any retriever option can be given with --option name=value; options the
chosen strategy does not use are ignored.`,
		Example: `  # BM25 over the "text" field
  goldenretriever retrieve docs.json "paris" "london"

  # Fuzzy matching over two fields, 3 results each
  goldenretriever retrieve docs.json "pars" --strategy fuzzy --on title,text -k 3

  # Symmetric vectors via Ollama, JSON output
  goldenretriever retrieve docs.json "capital of france" \
    --strategy vector-symmetric --provider ollama --model nomic-embed-text --format json

  # Documents from stdin, queries from a file
  cat docs.json | goldenretriever retrieve - --queries queries.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetrieve(cmd.Context(), cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.strategy, "strategy", "s", "", "Strategy: lexical, fuzzy, vector-symmetric, vector-dual")
	f.StringVar(&opts.key, "key", "", "Document field holding the id")
	f.StringSliceVar(&opts.on, "on", nil, "Document fields to index, in order")
	f.IntVarP(&opts.k, "top-k", "k", 0, "Results per query")
	f.IntVar(&opts.batchSize, "batch-size", 0, "Queries encoded per batch (vector strategies)")
	f.IntVar(&opts.workers, "workers", 0, "Parallel query workers (0 = all CPUs)")
	f.StringVar(&opts.provider, "provider", "", "Embedding provider: static, ollama, openai")
	f.StringVar(&opts.model, "model", "", "Encoder for vector-symmetric")
	f.StringVar(&opts.documentModel, "document-model", "", "Document encoder for vector-dual")
	f.StringVar(&opts.queryModel, "query-model", "", "Query encoder for vector-dual")
	f.Float64Var(&opts.saturation, "saturation", 0, "BM25 saturation parameter (k1)")
	f.StringVar(&opts.scorer, "scorer", "", "Fuzzy scoring function")
	f.BoolVar(&opts.accelerated, "accelerated", false, "Use the accelerated device")
	f.StringArrayVarP(&opts.extra, "option", "o", nil, "Retriever option as name=value (repeatable)")
	f.StringVarP(&opts.queriesFile, "queries", "q", "", "File with one query per line")
	f.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	f.BoolVar(&opts.showMetrics, "metrics", false, "Print Prometheus metrics to stderr when done")
	f.BoolVar(&opts.noTUI, "no-tui", false, "Plain progress output even on a terminal")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runRetrieve(ctx context.Context, cmd *cobra.Command, args []string, opts retrieveOptions) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return rerrors.InputError(err.Error(), nil)
	}

	root, err := config.FindProjectRoot(".")
	if err != nil {
		root, _ = os.Getwd()
	}
	cfg, err := config.Load(root)
	if err != nil {
		return rerrors.ConfigError("failed to load configuration", err)
	}
	applyRetrieveFlags(cmd, cfg, opts)
	extra, err := applyExtraOptions(cfg, opts.extra)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return rerrors.ConfigError(err.Error(), nil)
	}

	retrieverOpts := retriever.Options(cfg.Options())
	for name, value := range extra {
		retrieverOpts[name] = value
	}

	docs, err := readDocuments(cmd.InOrStdin(), args[0], cfg.Retrieval.Key)
	if err != nil {
		return err
	}
	queries, err := readQueries(args[1:], opts.queriesFile)
	if err != nil {
		return err
	}

	slog.Info("retrieve_started",
		slog.String("strategy", cfg.Retrieval.Strategy),
		slog.Int("documents", len(docs)),
		slog.Int("queries", len(queries)),
		slog.Int("k", cfg.Retrieval.K))

	r, err := buildRetriever(ctx, cmd, cfg, docs, retrieverOpts, opts)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	results, err := r.Retrieve(ctx, queries, cfg.Retrieval.K, retriever.WithBatchSize(cfg.Embeddings.BatchSize))
	if err != nil {
		return err
	}

	if err := output.New(cmd.OutOrStdout()).Results(format, output.Pair(queries, results)); err != nil {
		return err
	}

	if opts.showMetrics {
		return metrics.WriteText(cmd.ErrOrStderr())
	}
	return nil
}

// applyExtraOptions parses repeated -o name=value pairs. The key and
// batch_size options are written back to cfg because the command itself uses
// them; the remaining pairs are returned for the retriever.
func applyExtraOptions(cfg *config.Config, pairs []string) (map[string]string, error) {
	extra := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, rerrors.Newf(rerrors.ErrCodeConfigInvalid, "option %q is not name=value", kv)
		}
		switch name {
		case retriever.OptKey:
			cfg.Retrieval.Key = strings.TrimSpace(value)
		case retriever.OptBatchSize:
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, rerrors.New(rerrors.ErrCodeConfigInvalid,
					fmt.Sprintf("invalid value for option %s: %v", name, err), err).
					WithDetail("option", name)
			}
			cfg.Embeddings.BatchSize = n
		default:
			extra[name] = value
		}
	}
	return extra, nil
}

// applyRetrieveFlags overrides configuration with the flags the user set.
func applyRetrieveFlags(cmd *cobra.Command, cfg *config.Config, opts retrieveOptions) {
	changed := cmd.Flags().Changed
	if changed("strategy") {
		cfg.Retrieval.Strategy = opts.strategy
	}
	if changed("key") {
		cfg.Retrieval.Key = opts.key
	}
	if changed("on") {
		cfg.Retrieval.On = opts.on
	}
	if changed("top-k") {
		cfg.Retrieval.K = opts.k
	}
	if changed("workers") {
		cfg.Retrieval.Workers = opts.workers
	}
	if changed("accelerated") {
		cfg.Retrieval.UseAcceleratedDevice = opts.accelerated
	}
	if changed("batch-size") {
		cfg.Embeddings.BatchSize = opts.batchSize
	}
	if changed("provider") {
		cfg.Embeddings.Provider = opts.provider
	}
	if changed("model") {
		cfg.Embeddings.Model = opts.model
	}
	if changed("document-model") {
		cfg.Embeddings.DocumentModel = opts.documentModel
	}
	if changed("query-model") {
		cfg.Embeddings.QueryModel = opts.queryModel
	}
	if changed("saturation") {
		cfg.Lexical.SaturationParameter = opts.saturation
	}
	if changed("scorer") {
		cfg.Fuzzy.ScoringFunction = opts.scorer
	}
}

// buildRetriever constructs the retriever while rendering build progress
// on stderr.
func buildRetriever(ctx context.Context, cmd *cobra.Command, cfg *config.Config, docs document.Collection, ropts retriever.Options, opts retrieveOptions) (*retriever.Retriever, error) {
	renderer := ui.NewRenderer(ui.NewConfig(cmd.ErrOrStderr(),
		ui.WithForcePlain(opts.noTUI),
		ui.WithNoColor(opts.noColor || ui.DetectNoColor()),
		ui.WithTitle("goldenretriever "+cfg.Retrieval.Strategy),
	))
	if err := renderer.Start(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = renderer.Stop() }()

	start := time.Now()
	progress := func(stage retriever.Stage, current, total int) {
		s, ok := ui.ParseStage(string(stage))
		if !ok {
			return
		}
		renderer.UpdateProgress(ui.ProgressEvent{Stage: s, Current: current, Total: total})
	}

	r, err := retriever.New(ctx, docs, cfg.Retrieval.Strategy, ropts, retriever.WithProgress(progress))
	if err != nil {
		renderer.AddError(ui.ErrorEvent{Err: err})
		return nil, err
	}

	stats := r.Stats()
	if stats.Incomplete > 0 {
		renderer.AddError(ui.ErrorEvent{
			Err:    fmt.Errorf("%d documents are missing indexed fields", stats.Incomplete),
			IsWarn: true,
		})
	}

	completion := ui.CompletionStats{
		Strategy:   r.Strategy().String(),
		Documents:  stats.DocumentCount,
		Incomplete: stats.Incomplete,
		Duration:   time.Since(start),
	}
	if r.Strategy().IsVector() {
		model := fmt.Sprint(ropts[retriever.OptModelName])
		if r.Strategy() == retriever.VectorDual {
			model = fmt.Sprintf("%v / %v", ropts[retriever.OptDocumentModel], ropts[retriever.OptQueryModel])
		}
		completion.Encoder = ui.EncoderInfo{
			Provider:   fmt.Sprint(ropts[retriever.OptProvider]),
			Model:      model,
			Dimensions: stats.Dimensions,
		}
	}
	renderer.Complete(completion)

	return r, nil
}

// readDocuments loads the collection from path, or from stdin for "-".
func readDocuments(stdin io.Reader, path, key string) (document.Collection, error) {
	if path != "-" {
		return document.LoadJSON(path, key)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, rerrors.InputError("failed to read documents from stdin", err)
	}
	return document.ParseJSON(data, key)
}

// readQueries returns the query arguments followed by the non-blank lines
// of the queries file.
func readQueries(args []string, path string) ([]string, error) {
	queries := append([]string(nil), args...)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, rerrors.New(rerrors.ErrCodeFileNotFound, "failed to open queries file", err).
				WithDetail("path", path)
		}
		defer func() { _ = f.Close() }()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				queries = append(queries, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, rerrors.InputError("failed to read queries file", err)
		}
	}

	if len(queries) == 0 {
		return nil, rerrors.InputError("no queries given", nil).
			WithSuggestion("Pass queries as arguments or with --queries <file>")
	}
	return queries, nil
}
