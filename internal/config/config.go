// Package config loads and persists the application's configuration. Values
// come from a YAML file under the user's cache directory, overridable through
// SPARROW_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "sparrow"

// Config holds the application's configuration values.
type Config struct {
	APIToken           string
	Model              string
	Seed               int
	Temperature        float64
	RequestTimeout     time.Duration
	MaxRetries         int
	Concurrency        int
	MaxReviewTokens    int
	ExcludedExtensions []string
	LogLevel           string
	LogFormat          string
}

// persisted is the subset of Config written back to the config file, so that
// the API token survives between runs.
type persisted struct {
	APIToken string `yaml:"openai_token"`
	Model    string `yaml:"model"`
	Seed     int    `yaml:"llm_seed"`
	Version  int    `yaml:"config_file_version"`
}

// DataRoot returns the directory storing application data, honoring
// XDG_CACHE_HOME.
func DataRoot() string {
	if root := os.Getenv("XDG_CACHE_HOME"); root != "" {
		return filepath.Join(root, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return appName
	}
	return filepath.Join(home, ".cache", appName)
}

// FilePath returns the location of the configuration file.
func FilePath() string {
	return filepath.Join(DataRoot(), "config.yaml")
}

// Load reads configuration from the config file and environment variables,
// sets defaults, and validates the result. Environment variables take
// precedence over the file; a missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(FilePath())
	v.SetConfigType("yaml")

	v.SetDefault("model", "gpt-4o")
	v.SetDefault("llm_seed", 42)
	v.SetDefault("llm_temperature", 0.0)
	v.SetDefault("request_timeout_seconds", 120)
	v.SetDefault("max_retries", 3)
	v.SetDefault("concurrency", 1)
	v.SetDefault("max_review_tokens", 20_000)
	v.SetDefault("excluded_extensions", []string{".lock", ".yaml", ".toml", ".json", ".md", ".txt"})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetEnvPrefix("SPARROW")
	v.AutomaticEnv()
	// The token is also picked up from the conventional OpenAI variable.
	if err := v.BindEnv("openai_token", "SPARROW_OPENAI_TOKEN", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind token environment variables: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file %s: %w", FilePath(), err)
			}
		}
	}

	cfg := &Config{
		APIToken:           v.GetString("openai_token"),
		Model:              v.GetString("model"),
		Seed:               v.GetInt("llm_seed"),
		Temperature:        v.GetFloat64("llm_temperature"),
		RequestTimeout:     time.Duration(v.GetInt("request_timeout_seconds")) * time.Second,
		MaxRetries:         v.GetInt("max_retries"),
		Concurrency:        v.GetInt("concurrency"),
		MaxReviewTokens:    v.GetInt("max_review_tokens"),
		ExcludedExtensions: v.GetStringSlice("excluded_extensions"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}
	return nil
}

// Save writes the persistent subset of the configuration back to the config
// file, creating the data directory if needed.
func (c *Config) Save() error {
	if err := os.MkdirAll(DataRoot(), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := yaml.Marshal(persisted{
		APIToken: c.APIToken,
		Model:    c.Model,
		Seed:     c.Seed,
		Version:  1,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(FilePath(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
