// Package reference holds the static lookup tables used to resolve merchants
// and decide deductibility: industry codes, merchant keywords, deduction
// rules, blacklists and spelling variations.
package reference

import "github.com/Veraticus/deductible/internal/model"

// Deduction category names. These are also the toggle keys users enable.
const (
	CategoryVehicles     = "Vehicles, Travel & Transport"
	CategoryWorkTools    = "Work Tools, Equipment & Technology"
	CategoryClothing     = "Work Clothing & Uniforms"
	CategoryHomeOffice   = "Home Office Expenses"
	CategoryEducation    = "Education & Training"
	CategoryMemberships  = "Professional Memberships & Fees"
	CategoryMeals        = "Meals & Entertainment (Work-Related)"
	CategoryGrooming     = "Personal Grooming & Wellbeing"
	CategoryGifts        = "Gifts & Donations"
	CategoryInvestments  = "Investments, Insurance & Superannuation"
	CategoryTax          = "Tax & Accounting Expenses"
	CategoryPersonal     = "Personal Expenses"
	CategoryOther        = "Other"
	unknownIndustryLabel = "Unknown/Other"
)

var industries = []model.Industry{
	{Code: "2610", Description: "Electricity Supply", Category: CategoryHomeOffice, IsDeductible: true, ConfidenceLevel: 75},
	{Code: "2620", Description: "Gas Supply", Category: CategoryHomeOffice, IsDeductible: true, ConfidenceLevel: 75},
	{Code: "4110", Description: "Supermarket and Grocery Stores", Category: CategoryPersonal, IsDeductible: false, ConfidenceLevel: 95},
	{Code: "4231", Description: "Hardware and Building Supplies Retailing", Category: CategoryWorkTools, IsDeductible: true, ConfidenceLevel: 85},
	{Code: "4251", Description: "Clothing Retailing", Category: CategoryClothing, IsDeductible: true, ConfidenceLevel: 50},
	{Code: "4252", Description: "Computer and Computer Peripheral Retailing", Category: CategoryWorkTools, IsDeductible: true, ConfidenceLevel: 90},
	{Code: "4260", Description: "Department Stores", Category: CategoryPersonal, IsDeductible: false, ConfidenceLevel: 85},
	{Code: "4310", Description: "Non-Store Retailing", Category: CategoryOther, IsDeductible: false, ConfidenceLevel: 60},
	{Code: "4400", Description: "Accommodation", Category: CategoryVehicles, IsDeductible: true, ConfidenceLevel: 85},
	{Code: "4511", Description: "Cafes and Restaurants", Category: CategoryMeals, IsDeductible: true, ConfidenceLevel: 65},
	{Code: "4512", Description: "Takeaway Food Services", Category: CategoryMeals, IsDeductible: true, ConfidenceLevel: 60},
	{Code: "4613", Description: "Motor Vehicle Fuel Retailing", Category: CategoryVehicles, IsDeductible: true, ConfidenceLevel: 95},
	{Code: "4622", Description: "Taxi and Other Road Passenger Transport", Category: CategoryVehicles, IsDeductible: true, ConfidenceLevel: 95},
	{Code: "4821", Description: "Rail Passenger Transport", Category: CategoryVehicles, IsDeductible: true, ConfidenceLevel: 90},
	{Code: "4900", Description: "Air and Space Transport", Category: CategoryVehicles, IsDeductible: true, ConfidenceLevel: 95},
	{Code: "5700", Description: "Internet Publishing and Broadcasting", Category: CategoryPersonal, IsDeductible: false, ConfidenceLevel: 70},
	{Code: "5910", Description: "Telecommunications Services", Category: CategoryHomeOffice, IsDeductible: true, ConfidenceLevel: 95},
	{Code: "6221", Description: "Banking", Category: CategoryOther, IsDeductible: false, ConfidenceLevel: 90},
	{Code: "6240", Description: "Financial Asset Investing", Category: CategoryInvestments, IsDeductible: true, ConfidenceLevel: 60},
	{Code: "6322", Description: "General Insurance", Category: CategoryInvestments, IsDeductible: true, ConfidenceLevel: 80},
	{Code: "6330", Description: "Superannuation Funds", Category: CategoryInvestments, IsDeductible: true, ConfidenceLevel: 85},
	{Code: "6920", Description: "Accounting Services", Category: CategoryTax, IsDeductible: true, ConfidenceLevel: 95},
	{Code: "7000", Description: "Computer System Design and Related Services", Category: CategoryWorkTools, IsDeductible: true, ConfidenceLevel: 90},
	{Code: "8102", Description: "Higher Education", Category: CategoryEducation, IsDeductible: true, ConfidenceLevel: 90},
	{Code: "8212", Description: "Adult, Community and Other Education", Category: CategoryEducation, IsDeductible: true, ConfidenceLevel: 85},
	{Code: "9511", Description: "Hairdressing and Beauty Services", Category: CategoryGrooming, IsDeductible: true, ConfidenceLevel: 50},
	{Code: "9533", Description: "Parking Services", Category: CategoryVehicles, IsDeductible: true, ConfidenceLevel: 90},
	{Code: "9551", Description: "Business and Professional Association Services", Category: CategoryMemberships, IsDeductible: true, ConfidenceLevel: 90},
	{Code: "9559", Description: "Other Interest Group Services", Category: CategoryGifts, IsDeductible: true, ConfidenceLevel: 90},
	{Code: model.UnknownIndustryCode, Description: unknownIndustryLabel, Category: CategoryOther, IsDeductible: false, ConfidenceLevel: 0},
}
