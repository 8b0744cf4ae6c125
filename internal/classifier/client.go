// Package classifier asks an LLM who created an item and turns the reply
// into a typed guess.
package classifier

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/abhisek/whomadeit/internal/llm"
)

// Purpose labels classifier calls in the LLM event log.
const Purpose = "inventor-classification"

// Config holds configuration for the classifier client.
type Config struct {
	MaxTokens   int
	Temperature float64

	// RequestsPerMinute throttles outbound calls. Zero disables throttling.
	RequestsPerMinute int

	// Timeout bounds a single provider call. Zero means no extra deadline
	// beyond the caller's context.
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0,
		Timeout:     30 * time.Second,
	}
}

// Client sends classification prompts to an LLM provider.
type Client struct {
	provider llm.Provider
	limiter  *rate.Limiter
	cfg      Config
}

// New creates a classifier client.
func New(provider llm.Provider, cfg Config) *Client {
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60)
		burst = cfg.RequestsPerMinute
	}
	return &Client{
		provider: provider,
		limiter:  rate.NewLimiter(limit, burst),
		cfg:      cfg,
	}
}

// Model returns the model identifier of the underlying provider.
func (c *Client) Model() string {
	return c.provider.ModelID()
}

// Generate makes one call to the provider and returns the raw reply text.
// There is no retry: provider errors are returned as is.
func (c *Client) Generate(ctx context.Context, text string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, Purpose)

	// No Schema: the reply comes back as raw text so malformed output
	// reaches Parse instead of failing inside the provider.
	resp, err := c.provider.Generate(ctx, llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMessage(text)},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("classify %q: %w", text, err)
	}
	return string(resp.Content), nil
}

// Classify generates a reply for text and parses it. Only provider
// failures are returned as errors; malformed replies yield the fallback.
func (c *Client) Classify(ctx context.Context, text string) (Outcome, error) {
	raw, err := c.Generate(ctx, text)
	if err != nil {
		return Outcome{}, err
	}
	return Parse(raw), nil
}
