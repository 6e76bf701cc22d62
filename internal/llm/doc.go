// Package llm provides language model clients used as an optional first pass
// when deciding whether a transaction is deductible. It supports OpenAI and
// Anthropic, with retry logic and rate limiting.
package llm
