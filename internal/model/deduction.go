package model

import "sort"

// Industry describes an industry code in the reference table.
type Industry struct {
	Code            string `json:"code"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	ConfidenceLevel int    `json:"confidenceLevel"`
	IsDeductible    bool   `json:"isDeductible"`
}

// CategoryInfo is the result of looking up an industry code.
type CategoryInfo struct {
	Category     string `json:"category"`
	Description  string `json:"description"`
	IsDeductible bool   `json:"isDeductible"`
}

// DeductionRule ties a deduction category to the keywords that indicate it.
type DeductionRule struct {
	Name       string
	Categories []string
	Keywords   []string
}

// DeductionToggleState maps a deduction category name to whether the user
// has enabled it.
type DeductionToggleState map[string]bool

// Enabled reports whether a deduction category is enabled.
func (s DeductionToggleState) Enabled(category string) bool {
	return s[category]
}

// EnabledCategories returns the enabled categories in sorted order.
func (s DeductionToggleState) EnabledCategories() []string {
	var out []string
	for name, on := range s {
		if on {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the toggle state.
func (s DeductionToggleState) Clone() DeductionToggleState {
	out := make(DeductionToggleState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// ManualOverrides maps a transaction ID to a forced business-expense flag.
type ManualOverrides map[string]bool

// CategoryOverrides maps a transaction ID to a forced deduction category.
type CategoryOverrides map[string]string
