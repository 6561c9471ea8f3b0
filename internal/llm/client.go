package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	ClassifyPurpose(ctx context.Context, prompt string) (PurposeResponse, error)
}

// PurposeResponse contains the backend's purpose prediction for one file.
type PurposeResponse struct {
	Category    string
	Explanation string
	Confidence  float64
}

// Config holds configuration for the LLM classifier.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	RateLimit   int
	CacheTTL    time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}
