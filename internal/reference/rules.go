package reference

import "github.com/Veraticus/deductible/internal/model"

// deductionRules is ordered; ties in keyword scoring go to the earlier rule.
var deductionRules = []model.DeductionRule{
	{
		Name:       CategoryVehicles,
		Categories: []string{"transport", "fuel", "parking", "travel"},
		Keywords:   []string{"fuel", "petrol", "gas", "diesel", "bp", "shell", "caltex", "parking", "toll", "uber", "taxi"},
	},
	{
		Name:       CategoryWorkTools,
		Categories: []string{"technology", "equipment", "software"},
		Keywords:   []string{"computer", "laptop", "software", "microsoft", "adobe", "apple", "tools", "equipment"},
	},
	{
		Name:       CategoryClothing,
		Categories: []string{"clothing", "uniform"},
		Keywords:   []string{"uniform", "clothing", "workwear", "safety", "boots", "helmet"},
	},
	{
		Name:       CategoryHomeOffice,
		Categories: []string{"utilities", "office"},
		Keywords:   []string{"electricity", "gas", "internet", "phone", "office", "desk"},
	},
	{
		Name:       CategoryEducation,
		Categories: []string{"education", "training"},
		Keywords:   []string{"course", "training", "education", "university", "conference"},
	},
	{
		Name:       CategoryMemberships,
		Categories: []string{"membership", "subscriptions", "fees"},
		Keywords:   []string{"membership", "association", "subscription", "union", "license", "registration"},
	},
	{
		Name:       CategoryMeals,
		Categories: []string{"meals", "entertainment"},
		Keywords:   []string{"restaurant", "dining", "cafe", "meal", "lunch", "dinner", "entertainment"},
	},
	{
		Name:       CategoryGrooming,
		Categories: []string{"grooming", "wellbeing"},
		Keywords:   []string{"haircut", "barber", "massage", "wellbeing", "spa", "beauty"},
	},
	{
		Name:       CategoryGifts,
		Categories: []string{"gifts", "donations"},
		Keywords:   []string{"donation", "gift", "charity", "fundraiser", "ngo"},
	},
	{
		Name:       CategoryInvestments,
		Categories: []string{"insurance", "superannuation", "investments"},
		Keywords:   []string{"insurance", "super", "superannuation", "life insurance", "income protection", "investment"},
	},
	{
		Name:       CategoryTax,
		Categories: []string{"tax", "accounting"},
		Keywords:   []string{"tax", "accounting", "accountant", "tax agent", "lodgement", "preparation"},
	},
}
