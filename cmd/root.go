package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/RAMarenco/nlp-analyzer/app"
	"github.com/RAMarenco/nlp-analyzer/config"
	"github.com/RAMarenco/nlp-analyzer/nlp"
	"github.com/RAMarenco/nlp-analyzer/prosenlp"
	"github.com/RAMarenco/nlp-analyzer/render"
	"github.com/RAMarenco/nlp-analyzer/spacy"
	"github.com/RAMarenco/nlp-analyzer/tokenizer"
	"github.com/RAMarenco/nlp-analyzer/walker"
)

var (
	configPath  string
	modelName   string
	folder      string
	listModels  bool
	engineName  string
	extensions  []string
	pythonPath  string
	proseModels string
	failFast    bool
	countTokens string
	logLevel    string
	logFormat   string
)

var rootCmd = &cobra.Command{
	Use:   "nlp-analyzer",
	Short: "Analyze text files with a pretrained NLP pipeline",
	Long: `nlp-analyzer walks a folder of .txt and .c files, runs a pretrained
NLP model over each one and prints its tokens, dependency trees and
named entities.

Examples:
  nlp-analyzer --list-models
  nlp-analyzer --model es_core_news_sm --folder samples
  nlp-analyzer --engine prose --model en --count-tokens cl100k_base`,
	Args:          cobra.NoArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runAnalyze,
}

// Execute runs the root command. Errors carrying an exit code are returned
// as *app.ExitError.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	registerFlags(rootCmd)
}

func registerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&modelName, "model", "", "Model to use (must be installed)")
	flags.StringVar(&folder, "folder", "samples", "Folder to search for files")
	flags.BoolVar(&listModels, "list-models", false, "List the installed models and exit")

	flags.StringVarP(&configPath, "config", "c", "", "Path to a TOML or YAML config file (default $"+config.EnvPath+")")
	flags.StringVar(&engineName, "engine", config.EngineSpacy, "Analysis engine: 'spacy' or 'prose'")
	flags.StringSliceVar(&extensions, "ext", append([]string(nil), walker.DefaultExtensions...), "File extensions to analyze")
	flags.StringVar(&pythonPath, "python", "python3", "Python interpreter with spaCy installed")
	flags.StringVar(&proseModels, "prose-models", "", "Directory holding prose models written to disk")
	flags.BoolVar(&failFast, "fail-fast", false, "Stop at the first file that cannot be analyzed")
	flags.StringVar(&countTokens, "count-tokens", "", "Show the BPE token count of each file for this tiktoken encoding (e.g. cl100k_base)")
	flags.StringVar(&logLevel, "log-level", "warn", "Log level: 'debug', 'info', 'warn' or 'error'")
	flags.StringVar(&logFormat, "log-format", "text", "Log format: 'text' or 'json'")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
	logger.Debug("Configuration loaded.", "engine", cfg.Engine, "model", cfg.Model, "folder", cfg.Folder)

	// Listing models never needs the BPE ranks.
	var counter app.TokenCounter
	if cfg.CountTokens != "" && !listModels {
		c, err := tokenizer.NewCounter(cfg.CountTokens)
		if err != nil {
			return err
		}
		counter = c
	}

	console := render.NewConsole(cmd.OutOrStdout())
	a := app.NewApp(cfg, console, newEngine(cfg, logger), counter, logger)

	err = a.Run(cmd.Context(), listModels)
	if errors.Is(err, app.ErrMissingModel) {
		cmd.Println()
		_ = cmd.Usage()
	}
	return err
}

// loadConfig reads the config file, then applies the flags set on the
// command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = modelName
	}
	if flags.Changed("folder") {
		cfg.Folder = folder
	}
	if flags.Changed("engine") {
		cfg.Engine = engineName
	}
	if flags.Changed("ext") {
		cfg.Extensions = extensions
	}
	if flags.Changed("python") {
		cfg.Spacy.Python = pythonPath
	}
	if flags.Changed("prose-models") {
		cfg.Prose.ModelsDir = proseModels
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = failFast
	}
	if flags.Changed("count-tokens") {
		cfg.CountTokens = countTokens
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newEngine(cfg *config.Config, logger *slog.Logger) nlp.Engine {
	if cfg.Engine == config.EngineProse {
		return prosenlp.NewEngine(cfg.Prose.ModelsDir, logger)
	}
	return spacy.NewEngine(cfg.Spacy.Python, logger)
}
