package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single bank transaction awaiting classification.
type Transaction struct {
	Date         time.Time
	ID           string
	Description  string // Raw bank description, e.g. "Debit Card Purchase Shell Coles Express"
	MerchantName string // Resolved merchant display name
	IndustryCode string
	AccountID    string
	Category     string // Category hint supplied by the bank or the caller
	Hash         string

	// Negative amounts are expenses; positive amounts are income or credits.
	// Amount is optional: descriptions can be classified without one.
	Amount decimal.NullDecimal
}

// HasAmount reports whether the transaction carries an amount.
func (t *Transaction) HasAmount() bool {
	return t.Amount.Valid
}

// IsIncome reports whether the transaction carries a non-negative amount.
// Such transactions can never be a business expense.
func (t *Transaction) IsIncome() bool {
	return t.Amount.Valid && !t.Amount.Decimal.IsNegative()
}

// IsExpense reports whether the transaction carries a negative amount.
func (t *Transaction) IsExpense() bool {
	return t.Amount.Valid && t.Amount.Decimal.IsNegative()
}

// GenerateHash creates a stable hash used to deduplicate imported transactions.
func (t *Transaction) GenerateHash() string {
	amount := "none"
	if t.Amount.Valid {
		amount = t.Amount.Decimal.StringFixed(2)
	}
	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		amount,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// NewAmount is a convenience for building an optional amount from a decimal string.
func NewAmount(value string) (decimal.NullDecimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return decimal.NewNullDecimal(d), nil
}
