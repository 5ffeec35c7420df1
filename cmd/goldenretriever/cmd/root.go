// Package cmd provides the CLI commands for goldenretriever.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/goldenretriever/internal/config"
	"github.com/Aman-CERP/goldenretriever/internal/logging"
	"github.com/Aman-CERP/goldenretriever/internal/profiling"
	"github.com/Aman-CERP/goldenretriever/pkg/version"
)

// Profiling flags
var (
	profileCPU   string
	profileMem   string
	profileTrace string
	profiler     *profiling.Session
)

// Logging flags
var (
	debugMode      bool
	logLevel       string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the goldenretriever CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goldenretriever",
		Short: "Rank documents against queries with one retriever interface",
		Long: `goldenretriever builds an in-memory retriever over a JSON collection of
documents and returns the top-k document ids for each query.

Four strategies share the same interface:
  lexical           BM25 over tokenized text
  fuzzy             approximate string matching
  vector-symmetric  one encoder for documents and queries
  vector-dual       separate document and query encoders

Settings come from defaults, the user config, .goldenretriever.yaml in the
project, GOLDENRETRIEVER_* environment variables and flags, in that order.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("goldenretriever version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&profileCPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileMem, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileTrace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.goldenretriever/logs/")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level for stderr: debug, info, warn, error")

	cmd.PersistentPreRunE = startProfilingAndLogging
	cmd.PersistentPostRunE = stopProfilingAndLogging

	cmd.AddCommand(newRetrieveCmd())
	cmd.AddCommand(newStrategiesCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startProfilingAndLogging installs the logger and starts any requested
// profiles.
func startProfilingAndLogging(_ *cobra.Command, _ []string) error {
	level := logLevel
	if level == "" {
		level = configuredLogLevel()
	}

	cleanup, err := logging.SetupDefault(debugMode, level)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	loggingCleanup = cleanup

	cfg := profiling.Config{CPU: profileCPU, Heap: profileMem, Trace: profileTrace}
	if cfg.Enabled() {
		profiler, err = profiling.Start(cfg)
		if err != nil {
			return err
		}
	}
	return nil
}

// configuredLogLevel returns logging.level from the merged configuration.
// Configuration errors are left for the command itself to report.
func configuredLogLevel() string {
	root, err := config.FindProjectRoot(".")
	if err != nil {
		return ""
	}
	cfg, err := config.Load(root)
	if err != nil {
		return ""
	}
	return cfg.Logging.Level
}

// stopProfilingAndLogging flushes profiles and closes the log file.
func stopProfilingAndLogging(_ *cobra.Command, _ []string) error {
	var err error
	if profiler != nil {
		err = profiler.Stop()
		profiler = nil
	}

	if loggingCleanup != nil {
		slog.Debug("debug_logging_stopped",
			slog.String("heap_in_use", profiling.FormatBytes(profiling.HeapInUse())))
		loggingCleanup()
		loggingCleanup = nil
	}

	return err
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
