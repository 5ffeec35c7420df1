package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/goldenretriever/configs"
	"github.com/Aman-CERP/goldenretriever/internal/config"
	"github.com/Aman-CERP/goldenretriever/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage goldenretriever configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/goldenretriever/config.yaml)
  3. Project config (.goldenretriever.yaml)
  4. Environment variables (GOLDENRETRIEVER_*)
  5. Command-line flags`,
		Example: `  # Create user config with defaults
  goldenretriever config init

  # Create a project config in the current directory
  goldenretriever config init --project

  # Show effective configuration
  goldenretriever config show --json`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file with defaults",
		Long: `Write the commented default configuration to the user config file, or to
.goldenretriever.yaml in the current directory with --project.

With --force an existing file is backed up, then rewritten with its
settings preserved and any new options filled in with defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetUserConfigPath()
			if project {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current directory: %w", err)
				}
				path = filepath.Join(cwd, config.ProjectConfigName)
			}
			return runConfigInit(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Back up and rewrite an existing file")
	cmd.Flags().BoolVar(&project, "project", false, "Write .goldenretriever.yaml in the current directory")

	return cmd
}

func runConfigInit(cmd *cobra.Command, path string, force bool) error {
	out := output.New(cmd.OutOrStdout())

	if _, err := os.Stat(path); err == nil {
		if !force {
			out.Warning("Configuration already exists")
			out.Statusf("📁", "Location: %s", path)
			out.Status("💡", "Use --force to rewrite it (your settings are kept)")
			return nil
		}
		return runConfigUpgrade(out, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configs.ConfigTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out.Success("Created configuration")
	out.Statusf("📁", "Location: %s", path)
	return nil
}

// runConfigUpgrade backs up the file, then rewrites it over the defaults.
func runConfigUpgrade(out *output.Writer, path string) error {
	backupPath, err := config.BackupFile(path)
	if err != nil {
		return fmt.Errorf("failed to backup config: %w", err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to load existing config: %w", err)
	}
	if err := cfg.WriteYAML(path); err != nil {
		return err
	}

	out.Success("Configuration rewritten")
	out.Statusf("📁", "Location: %s", path)
	out.Statusf("💾", "Backup: %s", backupPath)
	return nil
}

func newConfigShowCmd() *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long: `Show the configuration after merging all sources, or a single source
with --source user|project|defaults.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput, source)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool, source string) error {
	out := output.New(cmd.OutOrStdout())

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}
	root, err := config.FindProjectRoot(cwd)
	if err != nil {
		root = cwd
	}

	var cfg *config.Config
	switch source {
	case "merged":
		cfg, err = config.Load(root)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	case "user":
		path := config.GetUserConfigPath()
		if _, statErr := os.Stat(path); statErr != nil {
			out.Warning("No user configuration file found")
			out.Statusf("📁", "Expected at: %s", path)
			return nil
		}
		if cfg, err = config.LoadFile(path); err != nil {
			return err
		}
	case "project":
		path := config.ProjectConfigPath(root)
		if path == "" {
			out.Warning("No project configuration file found")
			out.Statusf("📁", "Searched: %s", root)
			return nil
		}
		if cfg, err = config.LoadFile(path); err != nil {
			return err
		}
	case "defaults":
		cfg = config.NewConfig()
	default:
		return fmt.Errorf("unknown source %q (use: merged, user, project, defaults)", source)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return nil
		},
	}
}
