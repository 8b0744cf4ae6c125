// Package config loads service configuration from an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/whomadeit/internal/classifier"
	"github.com/abhisek/whomadeit/internal/llm"
)

// Config holds whomadeit configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	LLM        LLMConfig        `yaml:"llm"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`         // e.g. ":8000"
	CORSOrigins []string `yaml:"cors_origins"` // "*" allows any origin
}

// DatabaseConfig locates the SQLite database file.
type DatabaseConfig struct {
	Path string `yaml:"path"` // empty means the XDG default
}

// LoggingConfig selects the zap log level and encoder.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // json | console
}

// LLMConfig selects the LLM provider and model. API keys come from the
// environment only.
type LLMConfig struct {
	Provider string `yaml:"provider"` // anthropic | openai | gemini | openrouter | mock
	Model    string `yaml:"model"`    // empty keeps the provider default
}

// ClassifierConfig tunes classification requests. RequestsPerMinute of 0
// disables rate limiting.
type ClassifierConfig struct {
	MaxTokens         int           `yaml:"max_tokens"`
	Temperature       float64       `yaml:"temperature"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cls := classifier.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Addr:        ":8000",
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		LLM: LLMConfig{
			Provider: llm.DefaultConfig().Provider,
		},
		Classifier: ClassifierConfig{
			MaxTokens:         cls.MaxTokens,
			Temperature:       cls.Temperature,
			RequestsPerMinute: cls.RequestsPerMinute,
			Timeout:           cls.Timeout,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then .env and the environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML file over the defaults. An empty path or a
// missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file without overriding ones
// already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// applyDefaults fills fields a YAML file left empty.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = def.Server.CORSOrigins
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = def.Logging.Format
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = def.LLM.Provider
	}
	if c.Classifier.MaxTokens == 0 {
		c.Classifier.MaxTokens = def.Classifier.MaxTokens
	}
	if c.Classifier.Timeout == 0 {
		c.Classifier.Timeout = def.Classifier.Timeout
	}
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("WHOMADEIT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("WHOMADEIT_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("WHOMADEIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("WHOMADEIT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("WHOMADEIT_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("WHOMADEIT_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
}

// Validate checks values that would otherwise fail later at runtime.
// Missing API keys are not checked here.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}
	if c.Classifier.MaxTokens <= 0 {
		return fmt.Errorf("classifier.max_tokens must be positive, got %d", c.Classifier.MaxTokens)
	}
	if c.Classifier.RequestsPerMinute < 0 {
		return fmt.Errorf("classifier.requests_per_minute must not be negative, got %d", c.Classifier.RequestsPerMinute)
	}
	if c.Classifier.Timeout < 0 {
		return fmt.Errorf("classifier.timeout must not be negative, got %s", c.Classifier.Timeout)
	}
	return nil
}

// LLMConfig returns the provider configuration. API keys and per-provider
// models come from the environment; provider and model from c.
func (c *Config) LLMConfig() llm.Config {
	out := llm.ApplyEnv(llm.DefaultConfig())
	out.Provider = c.LLM.Provider
	if c.LLM.Model != "" {
		out.SetModel(c.LLM.Model)
	}
	return out
}

// ClassifierConfig returns the classifier client configuration.
func (c *Config) ClassifierConfig() classifier.Config {
	return classifier.Config{
		MaxTokens:         c.Classifier.MaxTokens,
		Temperature:       c.Classifier.Temperature,
		RequestsPerMinute: c.Classifier.RequestsPerMinute,
		Timeout:           c.Classifier.Timeout,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
