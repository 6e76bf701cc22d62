package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryRecord is a stored classification outcome.
type HistoryRecord struct {
	ClassifiedAt      time.Time
	BatchID           string
	TransactionID     string
	Description       string
	MerchantName      string
	IndustryCode      string
	MatchStrategy     MatchStrategy
	DeductionType     string
	Source            ClassificationSource
	DeductionAmount   decimal.Decimal
	Confidence        int
	IsBusinessExpense bool
}
