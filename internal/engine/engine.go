// Package engine orchestrates merchant resolution, deduction classification,
// override resolution and result caching for single and bulk requests.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/deductible/internal/cache"
	"github.com/Veraticus/deductible/internal/deduction"
	"github.com/Veraticus/deductible/internal/merchant"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
	"github.com/Veraticus/deductible/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Engine classifies transactions. It is safe for concurrent use.
type Engine struct {
	resolver   *merchant.Resolver
	classifier *deduction.Classifier
	cache      *cache.ResultCache
	ai         AIClassifier
	logger     *slog.Logger
	now        func() time.Time
	config     Config
}

// Config holds configuration options for the classification engine.
type Config struct {
	Workers         int           // Parallel resolvers for cache misses
	AITimeout       time.Duration // Upper bound on a single AI call
	AIMinConfidence int           // AI verdicts below this are ignored
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Workers:         4,
		AITimeout:       5 * time.Second,
		AIMinConfidence: 60,
	}
}

// Option customizes an Engine.
type Option func(*Engine)

// WithAI enables AI enrichment. A nil classifier leaves it disabled.
func WithAI(ai AIClassifier) Option {
	return func(e *Engine) {
		e.ai = ai
	}
}

// WithResolver replaces the default merchant resolver.
func WithResolver(r *merchant.Resolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine over a shared result cache. A nil cache gets a
// private one with default TTL and capacity.
func New(resultCache *cache.ResultCache, config Config, opts ...Option) *Engine {
	defaults := DefaultConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.AITimeout <= 0 {
		config.AITimeout = defaults.AITimeout
	}
	if config.AIMinConfidence <= 0 {
		config.AIMinConfidence = defaults.AIMinConfidence
	}
	if resultCache == nil {
		resultCache = cache.New(cache.DefaultTTL, cache.DefaultCapacity)
	}

	e := &Engine{
		cache:      resultCache,
		classifier: deduction.NewClassifier(),
		logger:     slog.Default(),
		now:        time.Now,
		config:     config,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = merchant.NewResolver(nil)
	}
	e.logger = e.logger.With("component", "engine")
	return e
}

// Item is one transaction submitted for classification.
type Item struct {
	Date        time.Time
	Amount      decimal.NullDecimal
	ID          string
	Description string
	Category    string
}

// ItemFromTransaction converts an imported transaction into an item.
func ItemFromTransaction(tx model.Transaction) Item {
	return Item{
		Date:        tx.Date,
		Amount:      tx.Amount,
		ID:          tx.ID,
		Description: tx.Description,
		Category:    tx.Category,
	}
}

// Overrides carries a user's toggles and corrections into a request. The
// engine never modifies them.
type Overrides struct {
	Toggles    model.DeductionToggleState
	Manual     model.ManualOverrides
	Categories model.CategoryOverrides
}

// LoadOverrides reads a user's toggles and overrides from the store.
func LoadOverrides(ctx context.Context, store service.OverrideReader, userID string) (Overrides, error) {
	toggles, err := store.GetDeductionToggles(ctx, userID)
	if err != nil {
		return Overrides{}, fmt.Errorf("failed to load deduction toggles: %w", err)
	}
	manual, err := store.GetManualOverrides(ctx, userID)
	if err != nil {
		return Overrides{}, fmt.Errorf("failed to load manual overrides: %w", err)
	}
	categories, err := store.GetCategoryOverrides(ctx, userID)
	if err != nil {
		return Overrides{}, fmt.Errorf("failed to load category overrides: %w", err)
	}
	return Overrides{Toggles: toggles, Manual: manual, Categories: categories}, nil
}

// ClassifyOne classifies a single transaction through the same cache and
// rules as a bulk request.
func (e *Engine) ClassifyOne(ctx context.Context, item Item, overrides Overrides) (model.ProcessedTransaction, error) {
	result, err := e.ClassifyBulk(ctx, []Item{item}, overrides)
	if err != nil {
		return model.ProcessedTransaction{}, err
	}
	return result.Ordered[0], nil
}

// CacheStats reports the shared result cache's size and hit counters.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// SweepCache drops expired cache entries and returns how many were removed.
func (e *Engine) SweepCache() int {
	removed := e.cache.Sweep()
	if removed > 0 {
		e.logger.Debug("Swept expired cache entries", "removed", removed)
	}
	return removed
}

// AIEnabled reports whether AI enrichment is configured.
func (e *Engine) AIEnabled() bool {
	return e.ai != nil
}

// toTransaction builds the domain transaction for an item, assigning an ID
// when the caller omitted one.
func toTransaction(item Item) model.Transaction {
	id := item.ID
	if id == "" {
		id = uuid.NewString()
	}
	return model.Transaction{
		ID:          id,
		Description: item.Description,
		Amount:      item.Amount,
		Date:        item.Date,
		Category:    item.Category,
	}
}

// decide merges the rule verdict with a cached AI verdict. Income is always
// decided by rules.
func (e *Engine) decide(tx model.Transaction, res model.CachedResolution, toggles model.DeductionToggleState) model.Deduction {
	auto := e.classifier.Classify(tx, res.Result, toggles)
	if tx.IsIncome() || res.AI == nil {
		return auto
	}

	verdict := *res.AI
	if verdict.Confidence < e.config.AIMinConfidence {
		return auto
	}
	if verdict.IsDeductible && !toggles.Enabled(verdict.DeductionType) {
		return auto
	}

	out := model.Deduction{
		IsDeductible: verdict.IsDeductible,
		Confidence:   verdict.Confidence,
		Source:       model.SourceAI,
	}
	if verdict.IsDeductible {
		out.DeductionType = verdict.DeductionType
	}
	return out
}

// needsAI reports whether a description's resolution should still be sent
// to the AI classifier. Only an expense in the current request qualifies,
// and each cached resolution is sent at most once.
func (e *Engine) needsAI(res model.CachedResolution, aiItems map[string]Item, key string, enabled []string) bool {
	if e.ai == nil || res.AIChecked || len(enabled) == 0 {
		return false
	}
	if _, ok := aiItems[key]; !ok {
		return false
	}
	switch res.Result.MatchStrategy {
	case model.StrategyBlacklist, model.StrategyDeposit:
		return false
	}
	return true
}

func isIncome(item Item) bool {
	return item.Amount.Valid && item.Amount.Decimal.IsPositive()
}

// industryCategory labels a resolution with its reference category.
func industryCategory(result model.ClassificationResult) string {
	if result.IsUnknown() {
		return ""
	}
	return reference.Lookup(result.IndustryCode).Category
}
