package llm

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/service"
)

const systemPrompt = "You are an Australian tax deduction assistant. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }."

// Classifier asks a language model whether a transaction is deductible.
type Classifier struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   service.RetryOptions
}

// NewClassifier creates a new LLM-based deduction classifier.
func NewClassifier(cfg Config, logger *slog.Logger) (*Classifier, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewClassifierWithClient(client, cfg, logger), nil
}

// NewClassifierWithClient wraps an existing client with rate limiting and retries.
func NewClassifierWithClient(client Client, cfg Config, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 2
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 250 * time.Millisecond
	}

	return &Classifier{
		client:      client,
		logger:      logger.With("component", "llm_classifier"),
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// ClassifyDeduction returns the model's verdict for one transaction. The
// caller bounds the call with ctx.
func (c *Classifier) ClassifyDeduction(ctx context.Context, tx model.Transaction, result model.ClassificationResult, enabled []string) (model.AIVerdict, error) {
	if len(enabled) == 0 {
		return model.AIVerdict{}, fmt.Errorf("%w: no deduction categories enabled", common.ErrInvalidInput)
	}

	prompt := buildPrompt(tx, result, enabled)

	var response ClassificationResponse
	err := common.WithRetry(ctx, func() error {
		if err := c.rateLimiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		var callErr error
		response, callErr = c.client.Classify(ctx, prompt)
		return callErr
	}, c.retryOpts)
	if err != nil {
		c.logger.Warn("AI classification failed",
			common.DescriptionAttr(tx.Description),
			"error", err)
		return model.AIVerdict{}, err
	}

	verdict := model.AIVerdict{
		IsDeductible:  response.IsDeductible,
		DeductionType: response.DeductionType,
		Confidence:    int(math.Round(response.Confidence)),
		Reasoning:     response.Reasoning,
	}

	c.logger.Debug("AI classified transaction",
		common.DescriptionAttr(tx.Description),
		"deductible", verdict.IsDeductible,
		"type", verdict.DeductionType,
		"confidence", verdict.Confidence)

	return verdict, nil
}

// Close stops the classifier. Later calls fail with common.ErrAIUnavailable.
func (c *Classifier) Close() {
	c.rateLimiter.Close()
}

// buildPrompt creates the prompt for a deductibility decision.
func buildPrompt(tx model.Transaction, result model.ClassificationResult, enabled []string) string {
	var sb strings.Builder

	sb.WriteString("Decide whether this bank transaction is a tax-deductible work or business expense for an Australian taxpayer.\n\n")
	sb.WriteString("Transaction:\n")
	fmt.Fprintf(&sb, "Description: %s\n", tx.Description)
	if tx.Amount.Valid {
		fmt.Fprintf(&sb, "Amount: %s\n", tx.Amount.Decimal.StringFixed(2))
	}
	if !tx.Date.IsZero() {
		fmt.Fprintf(&sb, "Date: %s\n", tx.Date.Format("2006-01-02"))
	}
	if tx.Category != "" {
		fmt.Fprintf(&sb, "Bank category: %s\n", tx.Category)
	}
	if result.MerchantName != "" {
		fmt.Fprintf(&sb, "Merchant: %s\n", result.MerchantName)
	}
	if !result.IsUnknown() {
		fmt.Fprintf(&sb, "Industry code: %s\n", result.IndustryCode)
	}

	sb.WriteString("\nThe taxpayer claims only these deduction categories:\n")
	for _, category := range enabled {
		fmt.Fprintf(&sb, "- %s\n", category)
	}

	sb.WriteString("\nRespond with JSON in exactly this shape:\n")
	sb.WriteString(`{"isDeductible": true, "deductionType": "<one of the categories above, or empty>", "confidence": <0-100>, "reasoning": "<one sentence>"}`)
	sb.WriteString("\n")

	return sb.String()
}
