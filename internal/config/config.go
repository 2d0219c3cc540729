package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Gemini  GeminiConfig  `koanf:"gemini"`
	Git     GitConfig     `koanf:"git"`
	History HistoryConfig `koanf:"history"`
	Tracing TracingConfig `koanf:"tracing"`
	Logging LoggingConfig `koanf:"logging"`
}

type GeminiConfig struct {
	APIKey    string        `koanf:"api_key"`
	Model     string        `koanf:"model" validate:"required"`
	MaxTokens int           `koanf:"max_tokens" validate:"gt=0"`
	Endpoint  string        `koanf:"endpoint" validate:"required,url"`
	Timeout   time.Duration `koanf:"timeout"`
}

type GitConfig struct {
	RepoPath     string `koanf:"repo_path" validate:"required"`
	MaxDiffBytes int    `koanf:"max_diff_bytes" validate:"gt=0"`
}

type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

type TracingConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"`
	SamplingRate float64 `koanf:"sampling_rate"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

var validate = validator.New()

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:     "gemini-2.0-flash",
			MaxTokens: 300,
			Endpoint:  "https://generativelanguage.googleapis.com",
			Timeout:   60 * time.Second,
		},
		Git: GitConfig{
			RepoPath:     ".",
			MaxDiffBytes: 32000,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    defaultHistoryPath(),
		},
		Tracing: TracingConfig{
			SamplingRate: 0.1,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads configuration from YAML file + environment variables.
// Loading order: defaults → YAML file → env vars (later overrides earlier).
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	cfg := Defaults()

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			// Only fail if the file was explicitly specified and can't be read
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	} else {
		// Try the working directory, then the home config, ignore if absent
		for _, p := range defaultConfigPaths() {
			if err := k.Load(file.Provider(p), yaml.Parser()); err == nil {
				break
			}
		}
	}

	// Load environment variables.
	// DIFFWHISPERER_GEMINI__MAX_TOKENS → gemini.max_tokens
	// Double underscore (__) separates nesting levels.
	// Single underscore within a level is preserved (e.g., max_tokens).
	err := k.Load(env.Provider("DIFFWHISPERER_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "DIFFWHISPERER_")
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "__", ".")
		return s
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// The conventional Gemini key variables win over nothing, lose to the
	// explicit DIFFWHISPERER_GEMINI__API_KEY form.
	if cfg.Gemini.APIKey == "" {
		for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
			if v := os.Getenv(name); v != "" {
				cfg.Gemini.APIKey = v
				break
			}
		}
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return nil, fmt.Errorf("config: %s fails %q validation", strings.ToLower(e.Namespace()), e.Tag())
		}
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func defaultConfigPaths() []string {
	paths := []string{"diffwhisperer.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".diffwhisperer", "config.yaml"))
	}
	return paths
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".diffwhisperer", "history.db")
}
