// Package config holds the settings of an analysis run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/RAMarenco/nlp-analyzer/walker"
)

// EnvPath names the environment variable consulted when no --config is given.
const EnvPath = "NLP_ANALYZER_CONFIG"

const (
	EngineSpacy = "spacy"
	EngineProse = "prose"
)

// Config holds the complete application configuration
type Config struct {
	Engine     string   `toml:"engine" yaml:"engine"`
	Model      string   `toml:"model" yaml:"model"`
	Folder     string   `toml:"folder" yaml:"folder"`
	Extensions []string `toml:"extensions" yaml:"extensions"`
	FailFast   bool     `toml:"fail_fast" yaml:"fail_fast"`

	// CountTokens names a tiktoken encoding; empty disables BPE counting.
	CountTokens string `toml:"count_tokens" yaml:"count_tokens"`

	Spacy SpacyConfig `toml:"spacy" yaml:"spacy"`
	Prose ProseConfig `toml:"prose" yaml:"prose"`
	Log   LogConfig   `toml:"log" yaml:"log"`
}

// SpacyConfig configures the Python bridge
type SpacyConfig struct {
	Python string `toml:"python" yaml:"python"`
}

// ProseConfig configures the in-process engine
type ProseConfig struct {
	ModelsDir string `toml:"models_dir" yaml:"models_dir"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads the file named by NLP_ANALYZER_CONFIG, or returns the
// defaults when it is unset.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Engine == "" {
		c.Engine = EngineSpacy
	}
	if c.Folder == "" {
		c.Folder = "samples"
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), walker.DefaultExtensions...)
	}
	if c.Spacy.Python == "" {
		c.Spacy.Python = "python3"
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineSpacy, EngineProse:
	default:
		return fmt.Errorf("invalid engine %q: must be %q or %q", c.Engine, EngineSpacy, EngineProse)
	}

	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid extension %q: must start with a dot", ext)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.Log.Level)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.Log.Format)
	}

	return nil
}
