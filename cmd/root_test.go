package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RAMarenco/nlp-analyzer/app"
	"github.com/RAMarenco/nlp-analyzer/config"
	"github.com/RAMarenco/nlp-analyzer/prosenlp"
	"github.com/RAMarenco/nlp-analyzer/spacy"
)

// parseFlags registers the flags on a fresh command, resetting the package
// variables to their defaults, and parses args.
func parseFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	registerFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(config.EnvPath, "")
	cfg, err := loadConfig(parseFlags(t))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.False(t, listModels)
}

func TestLoadConfigFlags(t *testing.T) {
	t.Setenv(config.EnvPath, "")
	cfg, err := loadConfig(parseFlags(t,
		"--model", "es_core_news_sm",
		"--folder", "corpus",
		"--ext", ".txt,.html",
		"--fail-fast",
		"--count-tokens", "cl100k_base",
		"--log-level", "debug",
	))
	require.NoError(t, err)

	assert.Equal(t, "es_core_news_sm", cfg.Model)
	assert.Equal(t, "corpus", cfg.Folder)
	assert.Equal(t, []string{".txt", ".html"}, cfg.Extensions)
	assert.True(t, cfg.FailFast)
	assert.Equal(t, "cl100k_base", cfg.CountTokens)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	t.Setenv(config.EnvPath, "")
	path := writeConfig(t, "nlp.toml", `
engine = "prose"
model = "en"
folder = "docs"

[prose]
models_dir = "/opt/prose"
`)

	cfg, err := loadConfig(parseFlags(t, "--config", path, "--folder", "other"))
	require.NoError(t, err)

	assert.Equal(t, config.EngineProse, cfg.Engine)
	assert.Equal(t, "en", cfg.Model)
	assert.Equal(t, "other", cfg.Folder)
	assert.Equal(t, "/opt/prose", cfg.Prose.ModelsDir)
}

func TestLoadConfigFromEnv(t *testing.T) {
	path := writeConfig(t, "nlp.yaml", "model: de_core_news_sm\nspacy:\n  python: /usr/bin/python3.12\n")
	t.Setenv(config.EnvPath, path)

	cfg, err := loadConfig(parseFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "de_core_news_sm", cfg.Model)
	assert.Equal(t, "/usr/bin/python3.12", cfg.Spacy.Python)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv(config.EnvPath, "")

	_, err := loadConfig(parseFlags(t, "--engine", "nltk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = loadConfig(parseFlags(t, "--config", filepath.Join(t.TempDir(), "missing.toml")))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewEngine(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &spacy.Engine{}, newEngine(cfg, nil))

	cfg.Engine = config.EngineProse
	assert.IsType(t, &prosenlp.Engine{}, newEngine(cfg, nil))
}

// execute runs a command built like rootCmd with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvPath, "")

	cmd := &cobra.Command{
		Use:           rootCmd.Use,
		Args:          rootCmd.Args,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runAnalyze,
	}
	registerFlags(cmd)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootRejectsArguments(t *testing.T) {
	_, err := execute(t, "stray")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestListModelsIgnoresTokenCounting(t *testing.T) {
	out, err := execute(t, "--engine", "prose", "--list-models", "--count-tokens", "bogus")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed prose models:")
	assert.Contains(t, out, prosenlp.BuiltinModel)
}

func TestAnalyzeRejectsUnknownEncoding(t *testing.T) {
	_, err := execute(t, "--engine", "prose", "--model", "en", "--folder", t.TempDir(), "--count-tokens", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestMissingModelPrintsUsage(t *testing.T) {
	out, err := execute(t, "--engine", "prose", "--folder", t.TempDir())
	assert.ErrorIs(t, err, app.ErrMissingModel)
	assert.Contains(t, out, "--model")
	assert.Contains(t, out, "Usage:")
}
