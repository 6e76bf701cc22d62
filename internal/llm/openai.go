package llm

import (
	"context"
	"errors"
)

const (
	openAIBaseURL = "https://api.openai.com"
	openAIModel   = "gpt-4o-mini"
)

// openAIClient asks the Chat Completions API for a deductibility verdict in
// JSON mode.
type openAIClient struct {
	endpoint
}

func newOpenAIClient(cfg Config) (Client, error) {
	e, err := newEndpoint("OpenAI", cfg, openAIModel, openAIBaseURL)
	if err != nil {
		return nil, err
	}
	return &openAIClient{endpoint: e}, nil
}

// Classify sends one transaction prompt to OpenAI.
func (c *openAIClient) Classify(ctx context.Context, prompt string) (ClassificationResponse, error) {
	request := openAIRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var response openAIResponse
	if err := c.post(ctx, "/v1/chat/completions", headers, request, &response); err != nil {
		return ClassificationResponse{}, err
	}

	if len(response.Choices) == 0 {
		return ClassificationResponse{}, errors.New("no completion choices returned")
	}
	return parseClassification(response.Choices[0].Message.Content)
}

type openAIRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
	Index        int         `json:"index"`
}
