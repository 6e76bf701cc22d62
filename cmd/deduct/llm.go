package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/llm"
	"github.com/spf13/viper"
)

// llmConfigFromViper reads the AI client settings. The API key falls back to
// the provider's conventional environment variable.
func llmConfigFromViper() (llm.Config, error) {
	cfg := llm.Config{
		Provider:    strings.ToLower(viper.GetString("llm.provider")),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}

	var envKey string
	switch cfg.Provider {
	case "openai":
		envKey = "OPENAI_API_KEY"
	case "anthropic":
		envKey = "ANTHROPIC_API_KEY"
	default:
		return llm.Config{}, fmt.Errorf("%w: unsupported LLM provider %q", common.ErrInvalidConfig, cfg.Provider)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(envKey)
	}
	if cfg.APIKey == "" {
		return llm.Config{}, fmt.Errorf("%w: %s API key not found in config or %s environment variable",
			common.ErrMissingConfig, cfg.Provider, envKey)
	}

	return cfg, nil
}

// createAIClassifier builds the AI enrichment client, or returns nil when AI
// is disabled in config.
func createAIClassifier(logger *slog.Logger) (*llm.Classifier, error) {
	if !viper.GetBool("engine.ai_enabled") {
		return nil, nil
	}

	cfg, err := llmConfigFromViper()
	if err != nil {
		return nil, err
	}

	classifier, err := llm.NewClassifier(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	logger.Info("AI enrichment enabled", "provider", cfg.Provider, "model", cfg.Model)
	return classifier, nil
}
