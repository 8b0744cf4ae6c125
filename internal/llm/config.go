package llm

import (
	"errors"
	"fmt"
	"os"
)

// ErrMissingAPIKey is returned by Validate when the selected provider has no
// API key.
var ErrMissingAPIKey = errors.New("missing API key")

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-5.2"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "openai/gpt-5.2"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-5.2",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-5.2",
		},
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	return ApplyEnv(DefaultConfig())
}

// ApplyEnv overlays environment variables onto cfg. Prefixed variables
// (WHOMADEIT_*) win over the vendor-standard key names.
func ApplyEnv(cfg Config) Config {
	if p := os.Getenv("WHOMADEIT_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	cfg.Anthropic.APIKey = firstEnv(cfg.Anthropic.APIKey, "WHOMADEIT_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	if m := os.Getenv("WHOMADEIT_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	cfg.OpenAI.APIKey = firstEnv(cfg.OpenAI.APIKey, "WHOMADEIT_OPENAI_API_KEY", "OPENAI_API_KEY")
	if m := os.Getenv("WHOMADEIT_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("WHOMADEIT_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	cfg.Gemini.APIKey = firstEnv(cfg.Gemini.APIKey, "WHOMADEIT_GEMINI_API_KEY", "GEMINI_API_KEY")
	if m := os.Getenv("WHOMADEIT_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	cfg.OpenRouter.APIKey = firstEnv(cfg.OpenRouter.APIKey, "WHOMADEIT_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	if m := os.Getenv("WHOMADEIT_OPENROUTER_MODEL"); m != "" {
		cfg.OpenRouter.Model = m
	}

	// WHOMADEIT_LLM_MODEL targets whichever provider is selected.
	if m := os.Getenv("WHOMADEIT_LLM_MODEL"); m != "" {
		cfg.SetModel(m)
	}

	return cfg
}

// SetModel sets the model of the currently selected provider.
func (c *Config) SetModel(model string) {
	switch c.Provider {
	case "anthropic":
		c.Anthropic.Model = model
	case "openai":
		c.OpenAI.Model = model
	case "gemini":
		c.Gemini.Model = model
	case "openrouter":
		c.OpenRouter.Model = model
	}
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("%w: WHOMADEIT_ANTHROPIC_API_KEY is required for the anthropic provider", ErrMissingAPIKey)
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: WHOMADEIT_OPENAI_API_KEY is required for the openai provider", ErrMissingAPIKey)
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("%w: WHOMADEIT_GEMINI_API_KEY is required for the gemini provider", ErrMissingAPIKey)
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("%w: WHOMADEIT_OPENROUTER_API_KEY is required for the openrouter provider", ErrMissingAPIKey)
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// firstEnv returns the first set variable among keys, or fallback.
func firstEnv(fallback string, keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return fallback
}
