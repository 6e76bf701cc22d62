package reference

// blacklist holds banking and non-merchant terms. A description containing
// any of these as a word is never a business expense.
var blacklist = map[string]struct{}{
	"bpay":        {},
	"payid":       {},
	"osko":        {},
	"withdrawal":  {},
	"transfer":    {},
	"fee":         {},
	"charge":      {},
	"interest":    {},
	"dividend":    {},
	"refund":      {},
	"reversal":    {},
	"adjustment":  {},
	"correction":  {},
	"atm":         {},
	"ato":         {},
	"centrelink":  {},
	"medicare":    {},
	"rms":         {},
	"vicroads":    {},
	"supermarket": {},
	"grocery":     {},
	"personal":    {},
	"private":     {},
}

// stopWords are dropped from cleaned descriptions before matching.
var stopWords = map[string]struct{}{
	"the":        {},
	"and":        {},
	"for":        {},
	"with":       {},
	"from":       {},
	"ltd":        {},
	"pty":        {},
	"co":         {},
	"inc":        {},
	"by":         {},
	"to":         {},
	"authority":  {},
	"incl":       {},
	"usd":        {},
	"usa":        {},
	"aus":        {},
	"australia":  {},
	"fore":       {},
	"debit":      {},
	"card":       {},
	"purchase":   {},
	"eftpos":     {},
	"visa":       {},
	"mastercard": {},
	"amex":       {},
	"value":      {},
	"date":       {},
}

// genericWords are too common to anchor a partial keyword match.
var genericWords = map[string]struct{}{
	"services": {},
	"service":  {},
	"store":    {},
	"stores":   {},
	"online":   {},
	"shop":     {},
	"group":    {},
	"express":  {},
	"payment":  {},
	"payments": {},
	"credit":   {},
	"energy":   {},
	"learning": {},
}

// variations maps a common abbreviation or misspelling to a merchant keyword.
var variations = map[string]string{
	"maccas":      "mcdonald",
	"macca":       "mcdonald",
	"mcd":         "mcdonald",
	"mcdonalds":   "mcdonald",
	"woolies":     "woolworths",
	"jbhifi":      "jb hi-fi",
	"jbhi":        "jb hi-fi",
	"ofw":         "officeworks",
	"7eleven":     "7-eleven",
	"eleven":      "7-eleven",
	"hungryjacks": "hungry jack",
	"hjs":         "hungry jack",
	"cba":         "commonwealth",
	"commbank":    "commonwealth",
	"virgin":      "virgin australia",
	"vaustralia":  "virgin australia",
	"tiger":       "tigerair",
	"bunnos":      "bunnings",
	"kmt":         "kmart",
	"airbnb":      "airbnb",
	"gloriajeans": "gloria jean",
	"dominoes":    "dominos",
	"starbuck":    "starbucks",
	"cabs":        "13cabs",
}

// depositPlatforms are payout sources that produce recognisable deposits.
var depositPlatforms = map[string]struct{}{
	"shopify": {},
	"stripe":  {},
	"square":  {},
	"paypal":  {},
	"etsy":    {},
	"amazon":  {},
	"ebay":    {},
}
