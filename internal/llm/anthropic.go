package llm

import (
	"context"
	"errors"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicModel   = "claude-3-5-haiku-latest"
	anthropicVersion = "2023-06-01"
)

// anthropicClient asks the Messages API for a deductibility verdict.
type anthropicClient struct {
	endpoint
}

func newAnthropicClient(cfg Config) (Client, error) {
	e, err := newEndpoint("Anthropic", cfg, anthropicModel, anthropicBaseURL)
	if err != nil {
		return nil, err
	}
	return &anthropicClient{endpoint: e}, nil
}

// Classify sends one transaction prompt to Anthropic.
func (c *anthropicClient) Classify(ctx context.Context, prompt string) (ClassificationResponse, error) {
	request := anthropicRequest{
		Model:       c.model,
		System:      systemPrompt,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var response anthropicResponse
	if err := c.post(ctx, "/v1/messages", headers, request, &response); err != nil {
		return ClassificationResponse{}, err
	}

	for _, block := range response.Content {
		if block.Type == "text" || block.Type == "" {
			return parseClassification(block.Text)
		}
	}
	return ClassificationResponse{}, errors.New("no content in Anthropic response")
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	System      string        `json:"system"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type anthropicResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Role       string `json:"role"`
	StopReason string `json:"stop_reason"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}
