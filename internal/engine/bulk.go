package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/deductible/internal/cache"
	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/deduction"
	"github.com/Veraticus/deductible/internal/merchant"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/google/uuid"
)

// BulkStats contains statistics about a bulk run.
type BulkStats struct {
	StrategyCounts          map[model.MatchStrategy]int `json:"strategyCounts"`
	TotalProcessed          int                         `json:"totalProcessed"`
	CacheHits               int                         `json:"cacheHits"`
	ExactMatches            int                         `json:"exactMatches"`
	WordMatches             int                         `json:"wordMatches"`
	FuzzyMatches            int                         `json:"fuzzyMatches"`
	PatternMatches          int                         `json:"patternMatches"`
	DeductibleCount         int                         `json:"deductibleCount"`
	AICalls                 int                         `json:"aiCalls"`
	AIFailures              int                         `json:"aiFailures"`
	ProcessingTimeMs        int64                       `json:"processingTimeMs"`
	AveragePerDescriptionMs float64                     `json:"averagePerDescriptionMs"`
	CacheHitRate            float64                     `json:"cacheHitRate"`
}

// BulkResult is the outcome of a bulk request. Results is keyed by the
// submitted description; when a description repeats, the last item wins.
// Ordered holds one entry per submitted item in submission order.
type BulkResult struct {
	Results map[string]model.ProcessedTransaction
	BatchID string
	Ordered []model.ProcessedTransaction
	Stats   BulkStats
}

// resolveJob is one distinct description handed to a worker. A cached
// resolution only needs its AI enrichment.
type resolveJob struct {
	key    string
	cached model.CachedResolution
	hit    bool
}

// resolveResult carries a computed resolution back from a worker.
type resolveResult struct {
	key        string
	resolution model.CachedResolution
	hit        bool
	aiCalled   bool
	aiFailed   bool
}

// ClassifyBulk classifies a batch of transactions. Each distinct description
// is resolved at most once: cache hits are reused, and misses are resolved
// in parallel, optionally enriched by AI, and cached. A cached description
// that was never sent to the AI is enriched when an expense with that
// description arrives.
func (e *Engine) ClassifyBulk(ctx context.Context, items []Item, overrides Overrides) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, common.ErrEmptyBatch
	}
	startTime := time.Now()

	// Pass 1: one cache lookup per distinct description, in submission order.
	keys := make([]string, 0, len(items))
	firstItem := make(map[string]Item, len(items))
	// aiItems holds the first expense per description; income never goes to the AI.
	aiItems := make(map[string]Item, len(items))
	resolved := make(map[string]model.CachedResolution, len(items))
	hitOnLookup := make(map[string]bool, len(items))

	for _, item := range items {
		key := cache.Key(item.Description)
		if _, ok := aiItems[key]; !ok && !isIncome(item) {
			aiItems[key] = item
		}
		if _, seen := firstItem[key]; seen {
			continue
		}
		firstItem[key] = item
		keys = append(keys, key)

		if entry, ok := e.cache.Get(item.Description); ok {
			resolved[key] = entry.Value
			hitOnLookup[key] = true
		}
	}

	stats := BulkStats{StrategyCounts: make(map[model.MatchStrategy]int)}
	enabled := overrides.Toggles.EnabledCategories()

	var jobs []resolveJob
	for _, key := range keys {
		if !hitOnLookup[key] {
			jobs = append(jobs, resolveJob{key: key})
			continue
		}
		if e.needsAI(resolved[key], aiItems, key, enabled) {
			jobs = append(jobs, resolveJob{key: key, cached: resolved[key], hit: true})
		}
	}

	// Pass 2: resolve misses and pending AI enrichment in parallel, then cache.
	for _, r := range e.resolveParallel(ctx, jobs, firstItem, aiItems, enabled) {
		resolved[r.key] = r.resolution
		if r.hit {
			e.cache.Update(firstItem[r.key].Description, r.resolution)
		} else {
			e.cache.Put(firstItem[r.key].Description, r.resolution)
		}
		if r.aiCalled {
			stats.AICalls++
		}
		if r.aiFailed {
			stats.AIFailures++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrClassificationRun, err)
	}

	// Pass 3: per-item amount guard, deduction rules and overrides.
	result := &BulkResult{
		BatchID: uuid.NewString(),
		Results: make(map[string]model.ProcessedTransaction, len(keys)),
		Ordered: make([]model.ProcessedTransaction, 0, len(items)),
	}
	consumed := make(map[string]bool, len(keys))
	classifiedAt := e.now()

	for _, item := range items {
		key := cache.Key(item.Description)
		res := resolved[key]

		hit := hitOnLookup[key]
		if consumed[key] {
			// Repeats are served from the cache; this also bumps the
			// entry's hit count. An entry evicted mid-batch still has its
			// local copy.
			if entry, ok := e.cache.Get(item.Description); ok {
				res = entry.Value
			}
			hit = true
		}
		consumed[key] = true

		processed := e.process(item, res, overrides)
		processed.ClassifiedAt = classifiedAt
		processed.Cached = hit

		if hit {
			stats.CacheHits++
		}
		stats.record(processed)

		result.Results[item.Description] = processed
		result.Ordered = append(result.Ordered, processed)
	}

	elapsed := time.Since(startTime)
	stats.TotalProcessed = len(items)
	stats.ProcessingTimeMs = elapsed.Milliseconds()
	stats.AveragePerDescriptionMs = float64(elapsed.Microseconds()) / 1000 / float64(len(items))
	stats.CacheHitRate = float64(stats.CacheHits) / float64(len(items))
	result.Stats = stats

	e.logger.Info("Bulk classification complete",
		"batch_id", result.BatchID,
		"items", stats.TotalProcessed,
		"distinct", len(keys),
		"cache_hits", stats.CacheHits,
		"deductible", stats.DeductibleCount,
		"ai_calls", stats.AICalls,
		"ai_failures", stats.AIFailures,
		"duration", elapsed)

	return result, nil
}

// process turns one item and its description's resolution into a processed
// transaction.
func (e *Engine) process(item Item, res model.CachedResolution, overrides Overrides) model.ProcessedTransaction {
	tx := toTransaction(item)

	if tx.IsIncome() {
		res = model.CachedResolution{Result: merchant.IncomeResult()}
	}
	tx.MerchantName = res.Result.MerchantName
	tx.IndustryCode = res.Result.IndustryCode

	auto := e.decide(tx, res, overrides.Toggles)
	processed := deduction.ApplyOverrides(tx, auto, overrides.Manual, overrides.Categories)
	processed.Classification = res.Result
	processed.Category = industryCategory(res.Result)
	return processed
}

// resolveParallel resolves descriptions on a pool of workers.
func (e *Engine) resolveParallel(
	ctx context.Context,
	jobs []resolveJob,
	firstItem, aiItems map[string]Item,
	enabled []string,
) []resolveResult {
	if len(jobs) == 0 {
		return nil
	}

	workers := e.config.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	workChan := make(chan resolveJob, len(jobs))
	for _, job := range jobs {
		workChan <- job
	}
	close(workChan)

	resultsChan := make(chan resolveResult, len(jobs))

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			e.resolveWorker(ctx, workerID, workChan, resultsChan, firstItem, aiItems, enabled)
		}(i)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]resolveResult, 0, len(jobs))
	for r := range resultsChan {
		results = append(results, r)
	}

	return results
}

// resolveWorker resolves descriptions from the work channel.
func (e *Engine) resolveWorker(
	ctx context.Context,
	workerID int,
	workChan <-chan resolveJob,
	resultsChan chan<- resolveResult,
	firstItem, aiItems map[string]Item,
	enabled []string,
) {
	for job := range workChan {
		select {
		case <-ctx.Done():
			return
		default:
		}

		out := resolveResult{key: job.key, resolution: job.cached, hit: job.hit}
		if !job.hit {
			out.resolution = model.CachedResolution{
				Result: e.resolver.ResolveText(firstItem[job.key].Description),
			}
		}

		if e.needsAI(out.resolution, aiItems, job.key, enabled) {
			item := aiItems[job.key]
			out.aiCalled = true
			out.resolution.AIChecked = true
			verdict, err := e.classifyWithAI(ctx, item, out.resolution.Result, enabled)
			if err != nil {
				out.aiFailed = true
				// A request that was canceled leaves the description for the next one.
				out.resolution.AIChecked = ctx.Err() == nil
				e.logger.Warn("AI classification failed, using rules",
					"worker_id", workerID,
					common.DescriptionAttr(item.Description),
					"error", err)
			} else {
				out.resolution.AI = &verdict
			}
		}

		resultsChan <- out
	}
}

// classifyWithAI calls the AI classifier under the engine's timeout.
func (e *Engine) classifyWithAI(ctx context.Context, item Item, result model.ClassificationResult, enabled []string) (model.AIVerdict, error) {
	aiCtx, cancel := context.WithTimeout(ctx, e.config.AITimeout)
	defer cancel()

	tx := toTransaction(item)
	tx.MerchantName = result.MerchantName
	tx.IndustryCode = result.IndustryCode

	verdict, err := e.ai.ClassifyDeduction(aiCtx, tx, result, enabled)
	if err != nil {
		return model.AIVerdict{}, fmt.Errorf("%w: %w", common.ErrAIUnavailable, err)
	}
	return verdict, nil
}

// record folds one processed transaction into the run statistics.
func (s *BulkStats) record(p model.ProcessedTransaction) {
	strategy := p.Classification.MatchStrategy
	s.StrategyCounts[strategy]++

	switch strategy {
	case model.StrategyExact:
		s.ExactMatches++
	case model.StrategyWord:
		s.WordMatches++
	case model.StrategyFuzzy:
		s.FuzzyMatches++
	case model.StrategyPattern:
		s.PatternMatches++
	}

	if p.IsBusinessExpense {
		s.DeductibleCount++
	}
}

// Merge folds the stats of another run into s. Rates and averages are
// recomputed over the combined totals.
func (s *BulkStats) Merge(other BulkStats) {
	if s.StrategyCounts == nil {
		s.StrategyCounts = make(map[model.MatchStrategy]int, len(other.StrategyCounts))
	}
	for strategy, n := range other.StrategyCounts {
		s.StrategyCounts[strategy] += n
	}
	s.TotalProcessed += other.TotalProcessed
	s.CacheHits += other.CacheHits
	s.ExactMatches += other.ExactMatches
	s.WordMatches += other.WordMatches
	s.FuzzyMatches += other.FuzzyMatches
	s.PatternMatches += other.PatternMatches
	s.DeductibleCount += other.DeductibleCount
	s.AICalls += other.AICalls
	s.AIFailures += other.AIFailures
	s.ProcessingTimeMs += other.ProcessingTimeMs

	if s.TotalProcessed > 0 {
		s.AveragePerDescriptionMs = float64(s.ProcessingTimeMs) / float64(s.TotalProcessed)
		s.CacheHitRate = float64(s.CacheHits) / float64(s.TotalProcessed)
	}
}

// GetDisplay returns a JSON representation of the stats.
func (s BulkStats) GetDisplay() string {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal stats: %v"}`, err)
	}
	return string(data)
}
