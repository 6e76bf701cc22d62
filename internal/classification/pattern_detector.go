// Package classification provides brand pattern detection for raw bank
// descriptions.
package classification

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/deductible/internal/reference"
)

// Pattern maps a regular expression over a lowercase description to a
// merchant and industry code.
type Pattern struct {
	Name         string
	Regex        string
	Merchant     string // Empty means the matched text is formatted as the merchant name
	IndustryCode string
	Priority     int // Higher priority patterns are checked first
	Confidence   int
}

// CompiledPattern holds a compiled regex pattern with metadata.
type CompiledPattern struct {
	compiledRegex *regexp.Regexp
	Pattern
}

// PatternDetector matches descriptions against an ordered list of brand
// patterns. The first pattern to match wins.
type PatternDetector struct {
	patterns []CompiledPattern
	mu       sync.RWMutex
}

// Match represents a pattern match result.
type Match struct {
	PatternName  string
	MerchantName string
	IndustryCode string
	Confidence   int
}

// NewPatternDetector creates a new pattern detector with the given patterns.
func NewPatternDetector(patterns []Pattern) (*PatternDetector, error) {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return nil, err
	}
	return &PatternDetector{patterns: compiled}, nil
}

// NewDefaultPatternDetector creates a detector loaded with DefaultPatterns.
func NewDefaultPatternDetector() *PatternDetector {
	pd, err := NewPatternDetector(DefaultPatterns())
	if err != nil {
		panic(fmt.Sprintf("default brand patterns do not compile: %v", err))
	}
	return pd
}

func compilePatterns(patterns []Pattern) ([]CompiledPattern, error) {
	compiled := make([]CompiledPattern, 0, len(patterns))

	for _, p := range patterns {
		regexStr := p.Regex
		if !strings.HasPrefix(regexStr, "(?i)") {
			regexStr = "(?i)" + regexStr
		}

		regex, err := regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}

		compiled = append(compiled, CompiledPattern{
			Pattern:       p,
			compiledRegex: regex,
		})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return compiled, nil
}

// Detect returns the highest priority pattern matching the description, or
// nil when nothing matches.
func (pd *PatternDetector) Detect(description string) *Match {
	pd.mu.RLock()
	defer pd.mu.RUnlock()

	text := strings.ToLower(description)
	for _, pattern := range pd.patterns {
		found := pattern.compiledRegex.FindString(text)
		if found == "" {
			continue
		}

		merchant := pattern.Merchant
		if merchant == "" {
			if keyword, _, ok := reference.LookupMerchant(found); ok {
				found = keyword
			}
			merchant = reference.DisplayName(found)
		}

		return &Match{
			PatternName:  pattern.Name,
			MerchantName: merchant,
			IndustryCode: pattern.IndustryCode,
			Confidence:   pattern.Confidence,
		}
	}

	return nil
}

// UpdatePatterns replaces the detector's patterns.
func (pd *PatternDetector) UpdatePatterns(patterns []Pattern) error {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		return err
	}

	pd.mu.Lock()
	pd.patterns = compiled
	pd.mu.Unlock()

	return nil
}

// PatternCount returns the number of loaded patterns.
func (pd *PatternDetector) PatternCount() int {
	pd.mu.RLock()
	defer pd.mu.RUnlock()
	return len(pd.patterns)
}
