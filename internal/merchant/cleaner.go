package merchant

import (
	"regexp"
	"strings"

	"github.com/Veraticus/deductible/internal/reference"
)

var (
	boilerplatePrefix = regexp.MustCompile(`^(debit card purchase|eftpos debit|eftpos purchase|visa purchase|card purchase|purchase|payment by authority to|payment to|payment|transfer to|transfer|direct debit|dd|deposit)\s*`)
	locationSuffix    = regexp.MustCompile(`\s*\b(aus|australia|sydney|melbourne|brisbane|perth|adelaide|usa|usd|incl|fore)$`)
	afterAsterisk     = regexp.MustCompile(`\s*\*.*$`)
	trailingReference = regexp.MustCompile(`-[a-z0-9]+$`)
	digitRuns         = regexp.MustCompile(`\d{2,}`)
	tokenSeparators   = regexp.MustCompile(`[\s\-_*\\/\[\](){}]+`)
	nonWordChars      = regexp.MustCompile(`[^a-z0-9]`)
)

// Normalize lowercases and trims a description for use as a lookup key.
func Normalize(description string) string {
	return strings.Join(strings.Fields(strings.ToLower(description)), " ")
}

// Clean strips banking boilerplate from a description and returns the
// remaining meaningful tokens in order.
func Clean(description string) []string {
	text := Normalize(description)
	text = boilerplatePrefix.ReplaceAllString(text, "")
	text = locationSuffix.ReplaceAllString(text, "")
	text = afterAsterisk.ReplaceAllString(text, "")
	text = trailingReference.ReplaceAllString(text, "")
	text = digitRuns.ReplaceAllString(text, "")

	var tokens []string
	for _, raw := range tokenSeparators.Split(text, -1) {
		word := nonWordChars.ReplaceAllString(raw, "")
		if len(word) < 2 || reference.IsStopWord(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// words splits a normalized description on whitespace and strips
// punctuation, keeping everything. Used for blacklist checks where stop-word
// filtering must not hide a banking term.
func words(description string) []string {
	var out []string
	for _, raw := range strings.Fields(Normalize(description)) {
		word := nonWordChars.ReplaceAllString(raw, "")
		if word != "" {
			out = append(out, word)
		}
	}
	return out
}
