package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Chat sends one system + user exchange and returns the model's text.
	Chat(ctx context.Context, conv Conversation) (string, error)
	// Name identifies the provider and model for logging.
	Name() string
}

// Conversation is a single-turn structured prompt.
type Conversation struct {
	System string
	User   string
}

// Config holds provider selection and tuning.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string // overrides the provider endpoint, mainly for ollama and tests
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RateLimit   int // requests per minute, 0 disables limiting
	CacheTTL    time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}
