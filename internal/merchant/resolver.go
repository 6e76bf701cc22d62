// Package merchant resolves raw bank descriptions to a merchant identity and
// industry code.
package merchant

import (
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/Veraticus/deductible/internal/classification"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
	"github.com/shopspring/decimal"
)

// Confidence assigned by each resolution step.
const (
	confidenceCertain       = 100
	confidencePair          = 95
	confidenceStructural    = 95
	confidenceSingle        = 90
	confidenceVariation     = 85
	confidenceGenericDep    = 80
	confidenceWord          = 80
	confidenceUnknownRaw    = 60
	confidenceFallback      = 30
	structuralSimilarityMin = 0.6
	fuzzySimilarityMin      = 0.7
	fuzzyConfidenceScale    = 70
	fallbackLabelMax        = 30
)

var (
	depositPattern   = regexp.MustCompile(`^deposit\s+(.+?)(?:\s+[a-z0-9-]+)?$`)
	authorityPattern = regexp.MustCompile(`payment\s+by\s+authority\s+to\s+(.+?)(?:\s+aus|\s+australia|$)`)
	aggregatorPrefix = regexp.MustCompile(`smp\*([a-z\s]+)`)
	transportForNSW  = regexp.MustCompile(`transport\s*for\s*nsw`)
)

// fallbackNoise are tokens that never make a useful merchant label.
var fallbackNoise = map[string]struct{}{
	"card":     {},
	"purchase": {},
	"payment":  {},
	"debit":    {},
	"credit":   {},
}

// input is a description prepared once and shared by every strategy.
type input struct {
	normalized string
	tokens     []string
	words      []string
}

// strategy is one step of the resolution cascade. It reports ok=false to
// pass the description to the next step.
type strategy struct {
	resolve func(in *input) (model.ClassificationResult, bool)
	name    string
}

// Resolver maps descriptions to merchants through an ordered cascade of
// strategies. The first strategy to produce a result wins.
type Resolver struct {
	patterns   *classification.PatternDetector
	logger     *slog.Logger
	strategies []strategy
}

// NewResolver creates a resolver. A nil detector uses the default brand patterns.
func NewResolver(patterns *classification.PatternDetector) *Resolver {
	if patterns == nil {
		patterns = classification.NewDefaultPatternDetector()
	}
	r := &Resolver{
		patterns: patterns,
		logger:   slog.Default().With("component", "merchant_resolver"),
	}
	r.strategies = []strategy{
		{name: "blacklist", resolve: r.matchBlacklist},
		{name: "specific_pattern", resolve: r.matchSpecificPattern},
		{name: "deposit", resolve: matchDeposit},
		{name: "direct", resolve: matchDirect},
		{name: "structural_pattern", resolve: matchStructural},
		{name: "variation", resolve: matchVariation},
		{name: "word", resolve: matchWord},
		{name: "fuzzy", resolve: matchFuzzy},
	}
	return r
}

// Resolve classifies a description. A positive amount short-circuits as
// income before any text matching.
func (r *Resolver) Resolve(description string, amount decimal.NullDecimal) model.ClassificationResult {
	if amount.Valid && amount.Decimal.IsPositive() {
		return IncomeResult()
	}
	return r.ResolveText(description)
}

// ResolveText classifies a description using text alone.
func (r *Resolver) ResolveText(description string) model.ClassificationResult {
	in := &input{normalized: Normalize(description)}
	if in.normalized == "" {
		return model.ClassificationResult{
			MerchantName:  model.UnknownMerchant,
			IndustryCode:  model.UnknownIndustryCode,
			MatchStrategy: model.StrategyNone,
		}
	}
	in.tokens = Clean(in.normalized)
	in.words = words(in.normalized)

	for _, s := range r.strategies {
		if result, ok := s.resolve(in); ok {
			r.logger.Debug("Resolved merchant",
				"description", description,
				"step", s.name,
				"merchant", result.MerchantName,
				"confidence", result.Confidence)
			return result
		}
	}

	result := fallback(in)
	r.logger.Debug("No merchant match, using fallback",
		"description", description,
		"merchant", result.MerchantName)
	return result
}

// IncomeResult is the verdict for any transaction with a positive amount.
func IncomeResult() model.ClassificationResult {
	return model.ClassificationResult{
		MerchantName:  model.IncomeMerchant,
		IndustryCode:  model.UnknownIndustryCode,
		Confidence:    confidenceCertain,
		MatchStrategy: model.StrategyNone,
	}
}

func (r *Resolver) matchBlacklist(in *input) (model.ClassificationResult, bool) {
	hit := false
	for _, word := range in.words {
		if reference.IsBlacklisted(word) {
			hit = true
			break
		}
	}
	if !hit {
		return model.ClassificationResult{}, false
	}

	// A known brand still names the merchant, but never makes it deductible.
	name := model.NonDeductibleMerchant
	if match := r.patterns.Detect(in.normalized); match != nil {
		name = match.MerchantName
	}
	return model.ClassificationResult{
		MerchantName:  name,
		IndustryCode:  model.UnknownIndustryCode,
		Confidence:    confidenceCertain,
		MatchStrategy: model.StrategyBlacklist,
	}, true
}

func (r *Resolver) matchSpecificPattern(in *input) (model.ClassificationResult, bool) {
	match := r.patterns.Detect(in.normalized)
	if match == nil {
		return model.ClassificationResult{}, false
	}
	return model.ClassificationResult{
		MerchantName:  match.MerchantName,
		IndustryCode:  match.IndustryCode,
		Confidence:    match.Confidence,
		MatchStrategy: model.StrategyPattern,
	}, true
}

func matchDeposit(in *input) (model.ClassificationResult, bool) {
	m := depositPattern.FindStringSubmatch(in.normalized)
	if m == nil {
		return model.ClassificationResult{}, false
	}
	name := strings.TrimSpace(m[1])

	if reference.IsDepositPlatform(name) {
		if code, ok := reference.MerchantIndustry(name); ok {
			return model.ClassificationResult{
				MerchantName:  reference.DisplayName(name) + " Deposit",
				IndustryCode:  code,
				Confidence:    confidencePair,
				MatchStrategy: model.StrategyDeposit,
			}, true
		}
	}

	return model.ClassificationResult{
		MerchantName:  reference.DisplayName(name) + " Deposit",
		IndustryCode:  model.UnknownIndustryCode,
		Confidence:    confidenceGenericDep,
		MatchStrategy: model.StrategyDeposit,
	}, true
}

func matchDirect(in *input) (model.ClassificationResult, bool) {
	// Pairs first: two-word keywords are more specific.
	for i := 0; i+1 < len(in.tokens); i++ {
		if keyword, code, ok := reference.LookupMerchant(in.tokens[i] + " " + in.tokens[i+1]); ok {
			return known(keyword, code, confidencePair, model.StrategyExact), true
		}
	}
	for _, token := range in.tokens {
		if keyword, code, ok := reference.LookupMerchant(token); ok {
			return known(keyword, code, confidenceSingle, model.StrategyExact), true
		}
	}
	return model.ClassificationResult{}, false
}

func matchStructural(in *input) (model.ClassificationResult, bool) {
	if m := authorityPattern.FindStringSubmatch(in.normalized); m != nil {
		if result, ok := matchExtracted(m[1]); ok {
			return result, true
		}
	}
	if m := aggregatorPrefix.FindStringSubmatch(in.normalized); m != nil {
		if result, ok := matchExtracted(m[1]); ok {
			return result, true
		}
	}
	if transportForNSW.MatchString(in.normalized) {
		return known("transport for nsw", "4821", confidenceStructural, model.StrategyPattern), true
	}
	return model.ClassificationResult{}, false
}

// matchExtracted resolves a merchant name pulled out of a structural pattern.
func matchExtracted(name string) (model.ClassificationResult, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ClassificationResult{}, false
	}

	if keyword, code, ok := reference.LookupMerchant(name); ok {
		return known(keyword, code, confidenceStructural, model.StrategyPattern), true
	}

	keyword, score := bestSimilarity([]string{name})
	if keyword != "" && score >= structuralSimilarityMin {
		code, _ := reference.MerchantIndustry(keyword)
		return known(keyword, code, int(math.Floor(score*100)), model.StrategyFuzzy), true
	}

	return model.ClassificationResult{
		MerchantName:  reference.DisplayName(name),
		IndustryCode:  model.UnknownIndustryCode,
		Confidence:    confidenceUnknownRaw,
		MatchStrategy: model.StrategyPattern,
	}, true
}

func matchVariation(in *input) (model.ClassificationResult, bool) {
	for _, token := range in.tokens {
		keyword, ok := reference.Variation(token)
		if !ok {
			continue
		}
		if code, ok := reference.MerchantIndustry(keyword); ok {
			return known(keyword, code, confidenceVariation, model.StrategyVariation), true
		}
	}
	return model.ClassificationResult{}, false
}

func matchWord(in *input) (model.ClassificationResult, bool) {
	keywords := reference.MerchantKeywords()
	for _, token := range in.tokens {
		if len(token) < 4 || reference.IsGenericWord(token) {
			continue
		}
		for _, keyword := range keywords {
			compact := reference.Compact(keyword)
			if len(compact) < 4 {
				continue
			}
			// A token inside a keyword must cover at least half of it.
			if strings.Contains(token, compact) || (strings.Contains(compact, token) && 2*len(token) >= len(compact)) {
				code, _ := reference.MerchantIndustry(keyword)
				return known(keyword, code, confidenceWord, model.StrategyWord), true
			}
		}
	}
	return model.ClassificationResult{}, false
}

func matchFuzzy(in *input) (model.ClassificationResult, bool) {
	if len(in.tokens) == 0 {
		return model.ClassificationResult{}, false
	}

	candidates := []string{strings.Join(in.tokens, " ")}
	for _, token := range in.tokens {
		if len(token) >= 4 && !reference.IsGenericWord(token) {
			candidates = append(candidates, token)
		}
	}

	keyword, score := bestSimilarity(candidates)
	if keyword == "" || score < fuzzySimilarityMin {
		return model.ClassificationResult{}, false
	}
	code, _ := reference.MerchantIndustry(keyword)
	return known(keyword, code, int(math.Round(score*fuzzyConfidenceScale)), model.StrategyFuzzy), true
}

// bestSimilarity returns the merchant keyword most similar to any candidate.
// Keywords shorter than four characters are skipped; ties keep the first
// keyword in table order.
func bestSimilarity(candidates []string) (string, float64) {
	bestKeyword, bestScore := "", 0.0
	for _, keyword := range reference.MerchantKeywords() {
		if len(reference.Compact(keyword)) < 4 {
			continue
		}
		for _, candidate := range candidates {
			if score := Similarity(strings.ToLower(candidate), keyword); score > bestScore {
				bestKeyword, bestScore = keyword, score
			}
		}
	}
	return bestKeyword, bestScore
}

func fallback(in *input) model.ClassificationResult {
	var meaningful []string
	for _, token := range in.tokens {
		if len(token) <= 2 {
			continue
		}
		if _, noise := fallbackNoise[token]; noise {
			continue
		}
		meaningful = append(meaningful, token)
		if len(meaningful) == 2 {
			break
		}
	}

	name := model.UnknownMerchant
	if len(meaningful) > 0 {
		label := strings.Join(meaningful, " ")
		if len(label) > fallbackLabelMax {
			label = strings.TrimSpace(label[:fallbackLabelMax])
		}
		name = reference.DisplayName(label)
	}

	return model.ClassificationResult{
		MerchantName:  name,
		IndustryCode:  model.UnknownIndustryCode,
		Confidence:    confidenceFallback,
		MatchStrategy: model.StrategyNone,
	}
}

func known(keyword, code string, confidence int, how model.MatchStrategy) model.ClassificationResult {
	return model.ClassificationResult{
		MerchantName:  reference.DisplayName(keyword),
		IndustryCode:  code,
		Confidence:    confidence,
		MatchStrategy: how,
	}
}
