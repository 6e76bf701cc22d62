package classification

// DefaultPatterns returns the brand patterns checked before any other
// merchant resolution step. Fuel brands rank above supermarkets so that
// co-branded sites such as "Shell Coles Express" resolve to the fuel retailer.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Name:         "Uber Eats",
			Regex:        `uber\s*eats`,
			Merchant:     "Uber Eats",
			IndustryCode: "4512",
			Priority:     100,
			Confidence:   95,
		},
		{
			Name:         "Uber",
			Regex:        `\buber\b`,
			Merchant:     "Uber",
			IndustryCode: "4622",
			Priority:     95,
			Confidence:   95,
		},
		{
			Name:         "Shopify",
			Regex:        `shopify`,
			Merchant:     "Shopify",
			IndustryCode: "7000",
			Priority:     90,
			Confidence:   95,
		},
		{
			Name:         "Instantly",
			Regex:        `\binstantly\b`,
			Merchant:     "Instantly",
			IndustryCode: "7000",
			Priority:     90,
			Confidence:   95,
		},
		{
			Name:         "Plus500",
			Regex:        `plus\s*500`,
			Merchant:     "Plus500",
			IndustryCode: "6240",
			Priority:     90,
			Confidence:   95,
		},
		{
			Name:         "Optus",
			Regex:        `optus`,
			Merchant:     "Optus",
			IndustryCode: "5910",
			Priority:     85,
			Confidence:   95,
		},
		{
			Name:         "Telstra",
			Regex:        `telstra`,
			Merchant:     "Telstra",
			IndustryCode: "5910",
			Priority:     85,
			Confidence:   95,
		},
		{
			Name:         "Fuel",
			Regex:        `\b(shell|bp|caltex|mobil|ampol|esso|7-?eleven)\b`,
			IndustryCode: "4613",
			Priority:     80,
			Confidence:   95,
		},
		{
			Name:         "McDonald's",
			Regex:        `mcdonald|\bmaccas\b|\bmacca\b`,
			Merchant:     "McDonald's",
			IndustryCode: "4512",
			Priority:     70,
			Confidence:   95,
		},
		{
			Name:         "Woolworths",
			Regex:        `woolworths|\bwoolies\b`,
			Merchant:     "Woolworths",
			IndustryCode: "4110",
			Priority:     60,
			Confidence:   95,
		},
		{
			Name:         "Coles",
			Regex:        `\bcoles\b`,
			Merchant:     "Coles",
			IndustryCode: "4110",
			Priority:     60,
			Confidence:   95,
		},
		{
			Name:         "JB Hi-Fi",
			Regex:        `jb\s*hi-?\s*fi`,
			Merchant:     "JB Hi-Fi",
			IndustryCode: "4252",
			Priority:     60,
			Confidence:   95,
		},
		{
			Name:         "Harvey Norman",
			Regex:        `harvey\s+norman`,
			Merchant:     "Harvey Norman",
			IndustryCode: "4252",
			Priority:     60,
			Confidence:   95,
		},
		{
			Name:         "Bunnings",
			Regex:        `bunnings`,
			Merchant:     "Bunnings",
			IndustryCode: "4231",
			Priority:     60,
			Confidence:   95,
		},
	}
}
