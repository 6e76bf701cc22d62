package deduction

import (
	"github.com/Veraticus/deductible/internal/model"
	"github.com/shopspring/decimal"
)

const overrideConfidence = 100

// ApplyOverrides merges user overrides into an automatic decision. A category
// override beats a manual override, which beats the automatic result. The
// deduction amount is always recomputed from the final decision, and
// transactions with a non-negative amount are never business expenses.
// Storage refuses empty categories, so an empty category here is treated as
// no category override.
func ApplyOverrides(tx model.Transaction, auto model.Deduction, manual model.ManualOverrides, categories model.CategoryOverrides) model.ProcessedTransaction {
	source := auto.Source
	if source == "" {
		source = model.SourceFallback
	}

	processed := model.ProcessedTransaction{
		Transaction:          tx,
		IsBusinessExpense:    auto.IsDeductible,
		DeductionType:        auto.DeductionType,
		Confidence:           auto.Confidence,
		ClassificationSource: source,
		AutoClassified:       true,
	}

	if tx.ID != "" {
		if category, ok := categories[tx.ID]; ok && category != "" {
			processed.IsBusinessExpense = true
			processed.DeductionType = category
			processed.Confidence = overrideConfidence
			processed.ClassificationSource = model.SourceManual
			processed.AutoClassified = false
		} else if isBusiness, ok := manual[tx.ID]; ok {
			processed.IsBusinessExpense = isBusiness
			processed.DeductionType = ""
			processed.Confidence = overrideConfidence
			processed.ClassificationSource = model.SourceManual
			processed.AutoClassified = false
		}
	}

	if tx.IsIncome() {
		processed.IsBusinessExpense = false
		processed.DeductionType = ""
	}
	if !processed.IsBusinessExpense {
		processed.DeductionType = ""
	}

	processed.DeductionAmount = DeductionAmount(tx.Amount, processed.IsBusinessExpense)
	return processed
}

// DeductionAmount is abs(amount) for business expenses with a negative amount
// and zero otherwise.
func DeductionAmount(amount decimal.NullDecimal, isBusinessExpense bool) decimal.Decimal {
	if !isBusinessExpense || !amount.Valid || !amount.Decimal.IsNegative() {
		return decimal.Zero
	}
	return amount.Decimal.Abs()
}
