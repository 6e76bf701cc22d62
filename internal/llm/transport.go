package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/deductible/internal/common"
)

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 200
	requestTimeout     = 30 * time.Second
)

// endpoint carries what both providers need to send one chat request.
type endpoint struct {
	httpClient  *http.Client
	provider    string
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

func newEndpoint(provider string, cfg Config, defaultModel, defaultBaseURL string) (endpoint, error) {
	if cfg.APIKey == "" {
		return endpoint{}, fmt.Errorf("%w: %s API key is required", common.ErrMissingConfig, provider)
	}

	e := endpoint{
		provider:    provider,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	if e.model == "" {
		e.model = defaultModel
	}
	if e.baseURL == "" {
		e.baseURL = defaultBaseURL
	}
	if e.temperature == 0 {
		e.temperature = defaultTemperature
	}
	if e.maxTokens == 0 {
		e.maxTokens = defaultMaxTokens
	}
	return e, nil
}

// post sends payload as JSON to path and decodes a 200 response into out.
func (e endpoint) post(ctx context.Context, path string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", e.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := statusError(e.provider, resp.StatusCode, respBody); err != nil {
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", e.provider, err)
	}
	return nil
}

// statusError converts a non-200 response into an error. Rate limits and
// server errors are retryable; anything else is not.
func statusError(provider string, status int, body []byte) error {
	if status == http.StatusOK {
		return nil
	}

	err := fmt.Errorf("%s API error (status %d): %s", provider, status, strings.TrimSpace(string(body)))
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case status >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}
