// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchStrategy names the merchant resolution step that produced a result.
type MatchStrategy string

// Match strategy constants.
const (
	StrategyExact     MatchStrategy = "exact"
	StrategyPattern   MatchStrategy = "pattern"
	StrategyVariation MatchStrategy = "variation"
	StrategyBlacklist MatchStrategy = "blacklist"
	StrategyDeposit   MatchStrategy = "deposit"
	StrategyWord      MatchStrategy = "word"
	StrategyFuzzy     MatchStrategy = "fuzzy"
	StrategyNone      MatchStrategy = "none"
)

// UnknownIndustryCode is the sentinel code for unresolved merchants.
const UnknownIndustryCode = "9999"

// Well known merchant labels.
const (
	UnknownMerchant       = "Unknown Merchant"
	IncomeMerchant        = "Income/Credit Transaction"
	NonDeductibleMerchant = "Non-Deductible Transaction"
)

// ClassificationResult is the merchant resolver's verdict for a description.
type ClassificationResult struct {
	MerchantName  string        `json:"merchantName"`
	IndustryCode  string        `json:"industryCode"`
	MatchStrategy MatchStrategy `json:"matchStrategy"`
	Confidence    int           `json:"confidence"`
}

// IsUnknown reports whether the result carries the unknown industry code.
func (r ClassificationResult) IsUnknown() bool {
	return r.IndustryCode == "" || r.IndustryCode == UnknownIndustryCode
}

// ClassificationSource records what decided a transaction's deductibility.
type ClassificationSource string

// Classification source constants.
const (
	SourceRule     ClassificationSource = "rule"
	SourceAI       ClassificationSource = "ai"
	SourceManual   ClassificationSource = "manual"
	SourceFallback ClassificationSource = "fallback"
)

// Deduction is the deductibility verdict before user overrides are applied.
type Deduction struct {
	DeductionType string
	Source        ClassificationSource
	Confidence    int
	IsDeductible  bool
}

// AIVerdict is a deductibility decision returned by a language model.
type AIVerdict struct {
	DeductionType string `json:"deductionType"`
	Reasoning     string `json:"reasoning,omitempty"`
	Confidence    int    `json:"confidence"`
	IsDeductible  bool   `json:"isDeductible"`
}

// CachedResolution is the value stored in the result cache for a description.
// AIChecked is set once the AI classifier has been consulted, whether or not
// it produced a verdict.
type CachedResolution struct {
	AI        *AIVerdict
	Result    ClassificationResult
	AIChecked bool
}

// ProcessedTransaction is a transaction after merchant resolution, deduction
// classification and override resolution.
type ProcessedTransaction struct {
	ClassifiedAt         time.Time
	Transaction          Transaction
	Classification       ClassificationResult
	DeductionType        string
	Category             string
	ClassificationSource ClassificationSource
	DeductionAmount      decimal.Decimal
	Confidence           int
	IsBusinessExpense    bool
	AutoClassified       bool
	Cached               bool
}
