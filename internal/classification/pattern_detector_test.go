package classification

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPatternDetector(t *testing.T) {
	tests := []struct {
		name     string
		errMsg   string
		patterns []Pattern
		wantErr  bool
	}{
		{
			name: "valid patterns",
			patterns: []Pattern{
				{Name: "Shell", Regex: `shell`, Merchant: "Shell", IndustryCode: "4613", Priority: 100, Confidence: 95},
				{Name: "Coles", Regex: `coles`, Merchant: "Coles", IndustryCode: "4110", Priority: 50, Confidence: 95},
			},
		},
		{
			name: "invalid regex",
			patterns: []Pattern{
				{Name: "Bad Pattern", Regex: `[invalid regex`, Priority: 100, Confidence: 95},
			},
			wantErr: true,
			errMsg:  "failed to compile pattern",
		},
		{
			name:     "empty patterns",
			patterns: []Pattern{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd, err := NewPatternDetector(tt.patterns)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.patterns), pd.PatternCount())
		})
	}
}

func TestPatternDetector_PriorityOrder(t *testing.T) {
	pd, err := NewPatternDetector([]Pattern{
		{Name: "Low", Regex: `express`, Merchant: "Low", IndustryCode: "1", Priority: 10, Confidence: 50},
		{Name: "High", Regex: `express`, Merchant: "High", IndustryCode: "2", Priority: 90, Confidence: 90},
	})
	require.NoError(t, err)

	match := pd.Detect("COLES EXPRESS")
	require.NotNil(t, match)
	assert.Equal(t, "High", match.PatternName)
	assert.Equal(t, 90, match.Confidence)
}

func TestDefaultPatterns(t *testing.T) {
	pd := NewDefaultPatternDetector()

	tests := []struct {
		name        string
		description string
		merchant    string
		code        string
		noMatch     bool
	}{
		{
			name:        "fuel outranks co-branded supermarket",
			description: "Debit Card Purchase Shell Coles Express",
			merchant:    "Shell",
			code:        "4613",
		},
		{
			name:        "fuel brand formatted from match",
			description: "EFTPOS PURCHASE 7-ELEVEN 2145 SYDNEY",
			merchant:    "7-Eleven",
			code:        "4613",
		},
		{
			name:        "bp is upper cased",
			description: "BP CONNECT PARRAMATTA",
			merchant:    "BP",
			code:        "4613",
		},
		{
			name:        "telecommunications",
			description: "Direct Debit Optus Mobile Services",
			merchant:    "Optus",
			code:        "5910",
		},
		{
			name:        "uber eats before uber",
			description: "UBER EATS SYDNEY",
			merchant:    "Uber Eats",
			code:        "4512",
		},
		{
			name:        "uber rides",
			description: "UBER *TRIP HELP.UBER.COM",
			merchant:    "Uber",
			code:        "4622",
		},
		{
			name:        "shopify deposit reference",
			description: "Deposit Shopify Shopify-L7N7dwct6J",
			merchant:    "Shopify",
			code:        "7000",
		},
		{
			name:        "maccas alias",
			description: "MACCAS ROUSE HILL",
			merchant:    "McDonald's",
			code:        "4512",
		},
		{
			name:        "bpay is not bp",
			description: "BPAY PAYMENT TO ENERGY",
			noMatch:     true,
		},
		{
			name:        "no brand",
			description: "Local bakery",
			noMatch:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := pd.Detect(tt.description)
			if tt.noMatch {
				assert.Nil(t, match)
				return
			}
			require.NotNil(t, match)
			assert.Equal(t, tt.merchant, match.MerchantName)
			assert.Equal(t, tt.code, match.IndustryCode)
			assert.Equal(t, 95, match.Confidence)
		})
	}
}

func TestUpdatePatterns(t *testing.T) {
	pd := NewDefaultPatternDetector()
	initial := pd.PatternCount()
	require.Positive(t, initial)

	err := pd.UpdatePatterns([]Pattern{
		{Name: "Canva", Regex: `canva`, Merchant: "Canva", IndustryCode: "7000", Priority: 10, Confidence: 95},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pd.PatternCount())
	assert.Nil(t, pd.Detect("Shell Coles Express"))

	err = pd.UpdatePatterns([]Pattern{{Name: "Bad", Regex: `(`}})
	require.Error(t, err)
	assert.Equal(t, 1, pd.PatternCount())
}

func TestPatternDetector_Concurrent(t *testing.T) {
	pd := NewDefaultPatternDetector()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			match := pd.Detect("BUNNINGS WAREHOUSE 123")
			assert.NotNil(t, match)
		}()
	}
	wg.Wait()
}
