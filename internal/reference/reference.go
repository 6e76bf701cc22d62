package reference

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/deductible/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// index holds lookups derived from the static tables.
type index struct {
	industries   map[string]model.Industry
	compact      map[string]string
	keywords     []string
	ruleNames    []string
	industryList []model.Industry
}

var (
	buildOnce sync.Once
	built     *index
)

func tables() *index {
	buildOnce.Do(func() {
		idx := &index{
			industries: make(map[string]model.Industry, len(industries)),
			compact:    make(map[string]string, len(merchantIndustries)),
		}
		for _, ind := range industries {
			idx.industries[ind.Code] = ind
		}
		idx.industryList = append(idx.industryList, industries...)
		sort.Slice(idx.industryList, func(i, j int) bool {
			return idx.industryList[i].Code < idx.industryList[j].Code
		})

		for keyword := range merchantIndustries {
			idx.keywords = append(idx.keywords, keyword)
			idx.compact[Compact(keyword)] = keyword
		}
		// Longest first so more specific keywords win partial matches.
		sort.Slice(idx.keywords, func(i, j int) bool {
			a, b := idx.keywords[i], idx.keywords[j]
			if len(a) != len(b) {
				return len(a) > len(b)
			}
			return a < b
		})

		for _, rule := range deductionRules {
			idx.ruleNames = append(idx.ruleNames, rule.Name)
		}
		built = idx
	})
	return built
}

// Compact lowercases s and strips everything but letters and digits.
func Compact(s string) string {
	return nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "")
}

// MerchantIndustry returns the industry code for a merchant keyword.
func MerchantIndustry(keyword string) (string, bool) {
	code, ok := merchantIndustries[strings.ToLower(strings.TrimSpace(keyword))]
	return code, ok
}

// LookupMerchant finds a merchant keyword by exact match or by its compact
// form, so "jbhifi" and "bookingcom" resolve to "jb hi-fi" and "booking.com".
func LookupMerchant(text string) (keyword, code string, ok bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if code, ok := merchantIndustries[text]; ok {
		return text, code, true
	}
	if keyword, ok := tables().compact[Compact(text)]; ok {
		return keyword, merchantIndustries[keyword], true
	}
	return "", "", false
}

// MerchantKeywords returns every merchant keyword, longest first.
func MerchantKeywords() []string {
	keywords := tables().keywords
	out := make([]string, len(keywords))
	copy(out, keywords)
	return out
}

// Lookup returns category information for an industry code. Unknown codes
// map to the generic "Other" category and are never deductible.
func Lookup(code string) model.CategoryInfo {
	ind, ok := FindIndustry(code)
	if !ok {
		return model.CategoryInfo{
			Category:     CategoryOther,
			Description:  unknownIndustryLabel,
			IsDeductible: false,
		}
	}
	return model.CategoryInfo{
		Category:     ind.Category,
		Description:  ind.Description,
		IsDeductible: ind.IsDeductible,
	}
}

// FindIndustry returns the full industry record for a code.
func FindIndustry(code string) (model.Industry, bool) {
	ind, ok := tables().industries[strings.TrimSpace(code)]
	return ind, ok
}

// Industries returns the industry table ordered by code.
func Industries() []model.Industry {
	list := tables().industryList
	out := make([]model.Industry, len(list))
	copy(out, list)
	return out
}

// DeductionRules returns the deduction rule table in priority order.
func DeductionRules() []model.DeductionRule {
	out := make([]model.DeductionRule, len(deductionRules))
	copy(out, deductionRules)
	return out
}

// DeductionCategories returns the names of all deduction categories.
func DeductionCategories() []string {
	names := tables().ruleNames
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// IsDeductionCategory reports whether name is a known deduction category.
func IsDeductionCategory(name string) bool {
	for _, rule := range deductionRules {
		if rule.Name == name {
			return true
		}
	}
	return false
}

// IsBlacklisted reports whether word is a non-merchant banking term.
func IsBlacklisted(word string) bool {
	_, ok := blacklist[word]
	return ok
}

// IsStopWord reports whether word carries no merchant information.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// IsGenericWord reports whether word is too common to anchor a partial match.
func IsGenericWord(word string) bool {
	_, ok := genericWords[word]
	return ok
}

// Variation returns the merchant keyword a known abbreviation stands for.
func Variation(word string) (string, bool) {
	keyword, ok := variations[word]
	return keyword, ok
}

// IsDepositPlatform reports whether name is a recognised payout platform.
func IsDepositPlatform(name string) bool {
	_, ok := depositPlatforms[strings.ToLower(name)]
	return ok
}

// DisplayName renders a merchant keyword for humans.
func DisplayName(keyword string) string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if name, ok := displayNames[keyword]; ok {
		return name
	}
	return cases.Title(language.English).String(keyword)
}

// Stats summarises the size of each reference table.
type Stats struct {
	Industries           int `json:"industries"`
	DeductibleIndustries int `json:"deductibleIndustries"`
	Merchants            int `json:"merchants"`
	DeductionRules       int `json:"deductionRules"`
	BlacklistTerms       int `json:"blacklistTerms"`
	Variations           int `json:"variations"`
	DepositPlatforms     int `json:"depositPlatforms"`
}

// TableStats reports the size of each reference table.
func TableStats() Stats {
	deductible := 0
	for _, industry := range industries {
		if industry.IsDeductible {
			deductible++
		}
	}

	return Stats{
		Industries:           len(industries),
		DeductibleIndustries: deductible,
		Merchants:            len(merchantIndustries),
		DeductionRules:       len(deductionRules),
		BlacklistTerms:       len(blacklist),
		Variations:           len(variations),
		DepositPlatforms:     len(depositPlatforms),
	}
}
