package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/goldenretriever/internal/config"
)

func TestConfigInit_CreatesUserConfig(t *testing.T) {
	// Given: no user config
	workspace(t)
	path := config.GetUserConfigPath()

	// When: running config init
	stdout, _, err := execute(t, "config", "init")

	// Then: the defaults are written
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created configuration")
	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), cfg)
}

func TestConfigInit_ExistingWithoutForce_LeavesFile(t *testing.T) {
	// Given: an existing user config
	workspace(t)
	path := writeFile(t, config.GetUserConfigPath(), "retrieval:\n  k: 9\n")

	// When: running config init without --force
	stdout, _, err := execute(t, "config", "init")

	// Then: the file is untouched
	require.NoError(t, err)
	assert.Contains(t, stdout, "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "retrieval:\n  k: 9\n", string(data))
}

func TestConfigInit_Force_BacksUpAndPreservesSettings(t *testing.T) {
	// Given: an existing user config with a custom k
	workspace(t)
	path := writeFile(t, config.GetUserConfigPath(), "retrieval:\n  k: 9\n")

	// When: running config init --force
	stdout, _, err := execute(t, "config", "init", "--force")

	// Then: a backup exists and the rewritten file keeps k and gains defaults
	require.NoError(t, err)
	assert.Contains(t, stdout, "Backup:")

	backups, err := config.ListBackups(path)
	require.NoError(t, err)
	require.Len(t, backups, 1)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Retrieval.K)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scoring_function: partial_ratio")
}

func TestConfigInit_Project(t *testing.T) {
	dir := workspace(t)

	_, _, err := execute(t, "config", "init", "--project")

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, config.ProjectConfigName))
}

func TestConfigShow_MergedJSON(t *testing.T) {
	// Given: a project config and an env override
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, ".goldenretriever.yaml"), "retrieval:\n  strategy: fuzzy\n")
	t.Setenv("GOLDENRETRIEVER_K", "3")

	// When: showing the merged config as JSON
	stdout, _, err := execute(t, "config", "show", "--json")

	// Then: both layers are visible
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(stdout), &cfg))
	assert.Equal(t, "fuzzy", cfg.Retrieval.Strategy)
	assert.Equal(t, 3, cfg.Retrieval.K)
}

func TestConfigShow_Sources(t *testing.T) {
	// Given: only a project config
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, ".goldenretriever.yaml"), "fuzzy:\n  scoring_function: ratio\n")

	// When/Then: the project source shows it as YAML
	stdout, _, err := execute(t, "config", "show", "--source", "project")
	require.NoError(t, err)
	assert.Contains(t, stdout, "scoring_function: ratio")

	// When/Then: the user source reports the missing file
	stdout, _, err = execute(t, "config", "show", "--source", "user")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No user configuration file found")

	// When/Then: defaults ignore the project file
	stdout, _, err = execute(t, "config", "show", "--source", "defaults")
	require.NoError(t, err)
	assert.Contains(t, stdout, "scoring_function: partial_ratio")

	// When/Then: an unknown source is rejected
	_, _, err = execute(t, "config", "show", "--source", "cloud")
	require.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	workspace(t)

	stdout, _, err := execute(t, "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath(), strings.TrimSpace(stdout))
}
