package reference

// merchantIndustries maps a lowercase merchant keyword to its industry code.
var merchantIndustries = map[string]string{
	// Fuel
	"shell":    "4613",
	"bp":       "4613",
	"caltex":   "4613",
	"mobil":    "4613",
	"ampol":    "4613",
	"esso":     "4613",
	"7-eleven": "4613",
	"liberty":  "4613",
	"puma":     "4613",

	// Road passenger transport
	"uber":      "4622",
	"taxi":      "4622",
	"ola":       "4622",
	"didi":      "4622",
	"cabcharge": "4622",
	"13cabs":    "4622",
	"gocatch":   "4622",

	// Rail and public transport
	"transport for nsw": "4821",
	"opal":              "4821",
	"myki":              "4821",
	"translink":         "4821",

	// Air travel and accommodation
	"qantas":           "4900",
	"jetstar":          "4900",
	"virgin australia": "4900",
	"tigerair":         "4900",
	"rex":              "4900",
	"booking.com":      "4400",
	"airbnb":           "4400",
	"hilton":           "4400",

	// Parking
	"wilson parking": "9533",
	"secure parking": "9533",
	"parking":        "9533",

	// Hardware and computer retail
	"bunnings":      "4231",
	"mitre 10":      "4231",
	"officeworks":   "4252",
	"jb hi-fi":      "4252",
	"harvey norman": "4252",
	"apple store":   "4252",
	"dick smith":    "4252",

	// Software and business platforms
	"shopify":   "7000",
	"instantly": "7000",
	"adobe":     "7000",
	"microsoft": "7000",
	"atlassian": "7000",
	"github":    "7000",
	"canva":     "7000",
	"stripe":    "7000",
	"square":    "7000",
	"paypal":    "7000",

	// Telecommunications
	"telstra":          "5910",
	"optus":            "5910",
	"vodafone":         "5910",
	"tpg":              "5910",
	"iinet":            "5910",
	"belong":           "5910",
	"aussie broadband": "5910",

	// Energy
	"agl":             "2610",
	"origin energy":   "2610",
	"energyaustralia": "2610",

	// Accounting and tax
	"xero":     "6920",
	"myob":     "6920",
	"hr block": "6920",

	// Memberships and education
	"cpa australia":       "9551",
	"engineers australia": "9551",
	"university":          "8102",
	"tafe":                "8102",
	"udemy":               "8212",
	"coursera":            "8212",
	"linkedin learning":   "8212",

	// Charities
	"red cross":      "9559",
	"salvation army": "9559",
	"unicef":         "9559",
	"world vision":   "9559",
	"oxfam":          "9559",

	// Meals
	"mcdonald":    "4512",
	"kfc":         "4512",
	"subway":      "4512",
	"dominos":     "4512",
	"pizza hut":   "4512",
	"hungry jack": "4512",
	"red rooster": "4512",
	"uber eats":   "4512",
	"starbucks":   "4511",
	"gloria jean": "4511",
	"coffee club": "4511",
	"cafe":        "4511",

	// Grooming
	"barber":      "9511",
	"hairdresser": "9511",

	// Supermarkets and general retail
	"woolworths":  "4110",
	"coles":       "4110",
	"aldi":        "4110",
	"iga":         "4110",
	"foodworks":   "4110",
	"kmart":       "4260",
	"target":      "4260",
	"big w":       "4260",
	"myer":        "4260",
	"david jones": "4260",
	"amazon":      "4310",
	"ebay":        "4310",
	"etsy":        "4310",

	// Streaming
	"netflix": "5700",
	"spotify": "5700",

	// Finance and insurance
	"plus500":         "6240",
	"westpac":         "6221",
	"commonwealth":    "6221",
	"anz":             "6221",
	"nab":             "6221",
	"medibank":        "6322",
	"bupa":            "6322",
	"nib":             "6322",
	"allianz":         "6322",
	"australiansuper": "6330",
	"hostplus":        "6330",
}

// displayNames overrides the title-cased rendering of a merchant keyword.
var displayNames = map[string]string{
	"bp":                "BP",
	"7-eleven":          "7-Eleven",
	"jb hi-fi":          "JB Hi-Fi",
	"mcdonald":          "McDonald's",
	"booking.com":       "Booking.com",
	"transport for nsw": "Transport for NSW",
	"kfc":               "KFC",
	"tpg":               "TPG",
	"agl":               "AGL",
	"hr block":          "H&R Block",
	"cpa australia":     "CPA Australia",
	"tafe":              "TAFE",
	"myob":              "MYOB",
	"iinet":             "iiNet",
	"iga":               "IGA",
	"anz":               "ANZ",
	"nab":               "NAB",
	"nib":               "NIB",
	"unicef":            "UNICEF",
	"big w":             "Big W",
	"13cabs":            "13cabs",
	"australiansuper":   "AustralianSuper",
	"energyaustralia":   "EnergyAustralia",
	"linkedin learning": "LinkedIn Learning",
	"github":            "GitHub",
	"ebay":              "eBay",
}
