// Package deduction decides whether a resolved transaction is a deductible
// business expense and applies user overrides to that decision.
package deduction

import (
	"strings"

	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
)

const (
	categoryKeywordScore = 30
	freeTextKeywordScore = 10
	minimumScore         = 20
	industryConfidence   = 95
	blacklistConfidence  = 100

	// Industry codes below this confidence level are not trusted to imply a
	// category on their own and fall through to keyword scoring.
	unambiguousIndustryLevel = 70
)

// Classifier applies the industry-code shortcut and keyword scoring rules.
type Classifier struct {
	rules []model.DeductionRule
}

// NewClassifier creates a classifier over the default deduction rules.
func NewClassifier() *Classifier {
	return &Classifier{rules: reference.DeductionRules()}
}

// Classify decides deductibility for a transaction given the merchant
// resolver's verdict and the user's enabled categories.
func (c *Classifier) Classify(tx model.Transaction, result model.ClassificationResult, enabled model.DeductionToggleState) model.Deduction {
	if tx.IsIncome() {
		return model.Deduction{Source: model.SourceRule}
	}

	switch result.MatchStrategy {
	case model.StrategyBlacklist:
		return model.Deduction{Confidence: blacklistConfidence, Source: model.SourceRule}
	case model.StrategyDeposit:
		return model.Deduction{Confidence: result.Confidence, Source: model.SourceRule}
	}

	industry, known := reference.FindIndustry(result.IndustryCode)
	known = known && !result.IsUnknown()
	if known && industry.IsDeductible && industry.ConfidenceLevel >= unambiguousIndustryLevel && enabled.Enabled(industry.Category) {
		return model.Deduction{
			IsDeductible:  true,
			DeductionType: industry.Category,
			Confidence:    industryConfidence,
			Source:        model.SourceRule,
		}
	}

	// Everything else, non-deductible industries included, is scored on text.

	parts := []string{tx.Description, tx.Category, result.MerchantName}
	if known {
		parts = append(parts, industry.Description)
	}
	searchText := strings.ToLower(strings.Join(parts, " "))

	best, score := c.score(searchText, strings.ToLower(tx.Category), enabled)
	if score >= minimumScore {
		if score > 100 {
			score = 100
		}
		return model.Deduction{
			IsDeductible:  true,
			DeductionType: best,
			Confidence:    score,
			Source:        model.SourceRule,
		}
	}

	if result.IsUnknown() {
		return model.Deduction{Source: model.SourceFallback}
	}
	return model.Deduction{Source: model.SourceRule}
}

// score returns the best enabled rule for the search text. Ties keep the
// earlier rule.
func (c *Classifier) score(searchText, category string, enabled model.DeductionToggleState) (string, int) {
	best, bestScore := "", 0

	for _, rule := range c.rules {
		if !enabled.Enabled(rule.Name) {
			continue
		}

		score := 0
		for _, keyword := range rule.Categories {
			if (category != "" && strings.Contains(category, keyword)) || strings.Contains(searchText, keyword) {
				score += categoryKeywordScore
			}
		}
		for _, keyword := range rule.Keywords {
			if strings.Contains(searchText, keyword) {
				score += freeTextKeywordScore
			}
		}

		if score > bestScore {
			best, bestScore = rule.Name, score
		}
	}

	return best, bestScore
}
