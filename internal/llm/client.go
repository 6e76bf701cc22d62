package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers.
type Client interface {
	Classify(ctx context.Context, prompt string) (ClassificationResponse, error)
}

// ClassificationResponse contains the LLM's deductibility verdict.
type ClassificationResponse struct {
	DeductionType string
	Reasoning     string
	Confidence    float64 // 0-100
	IsDeductible  bool
}

// Config holds configuration for the LLM classifier.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string // Overrides the provider endpoint, used by tests and proxies
	MaxRetries  int
	RetryDelay  time.Duration
	RateLimit   int // Requests per minute
	Temperature float64
	MaxTokens   int
}
