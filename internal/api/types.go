package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/engine"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/shopspring/decimal"
)

// TransactionInput is one transaction in a request body.
type TransactionInput struct {
	Amount      decimal.NullDecimal `json:"amount"`
	ID          string              `json:"id,omitempty"`
	Description string              `json:"description"`
	Date        string              `json:"date,omitempty"`
	Category    string              `json:"category,omitempty"`
}

// BulkRequest accepts either plain descriptions or full transactions.
// Toggles, when present, replace the stored toggle state for this request.
type BulkRequest struct {
	Toggles      map[string]bool    `json:"toggles,omitempty"`
	Descriptions []string           `json:"descriptions,omitempty"`
	Transactions []TransactionInput `json:"transactions,omitempty"`
}

// SingleRequest classifies one transaction.
type SingleRequest struct {
	Toggles map[string]bool `json:"toggles,omitempty"`
	TransactionInput
}

// ResultJSON is the wire shape of a processed transaction.
type ResultJSON struct {
	Amount               *decimal.Decimal           `json:"amount,omitempty"`
	Classification       model.ClassificationResult `json:"classification"`
	ID                   string                     `json:"id"`
	Description          string                     `json:"description"`
	MerchantName         string                     `json:"merchantName"`
	IndustryCode         string                     `json:"industryCode"`
	Category             string                     `json:"category,omitempty"`
	DeductionType        string                     `json:"deductionType,omitempty"`
	ClassificationSource model.ClassificationSource `json:"classificationSource"`
	DeductionAmount      decimal.Decimal            `json:"deductionAmount"`
	Confidence           int                        `json:"confidence"`
	IsBusinessExpense    bool                       `json:"isBusinessExpense"`
	AutoClassified       bool                       `json:"autoClassified"`
	Cached               bool                       `json:"cached"`
}

// BulkResponse is the body returned for a bulk request.
type BulkResponse struct {
	Results map[string]ResultJSON `json:"results"`
	BatchID string                `json:"batchId"`
	Stats   engine.BulkStats      `json:"stats"`
}

// ErrorResponse is the body returned for any failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// NewResultJSON converts a processed transaction to its wire shape.
func NewResultJSON(p model.ProcessedTransaction) ResultJSON {
	out := ResultJSON{
		ID:                   p.Transaction.ID,
		Description:          p.Transaction.Description,
		MerchantName:         p.Classification.MerchantName,
		IndustryCode:         p.Classification.IndustryCode,
		Classification:       p.Classification,
		Category:             p.Category,
		DeductionType:        p.DeductionType,
		ClassificationSource: p.ClassificationSource,
		DeductionAmount:      p.DeductionAmount,
		Confidence:           p.Confidence,
		IsBusinessExpense:    p.IsBusinessExpense,
		AutoClassified:       p.AutoClassified,
		Cached:               p.Cached,
	}
	if p.Transaction.Amount.Valid {
		amount := p.Transaction.Amount.Decimal
		out.Amount = &amount
	}
	return out
}

// toItems converts a bulk request into engine items.
func (r BulkRequest) toItems() ([]engine.Item, error) {
	if len(r.Descriptions) > 0 && len(r.Transactions) > 0 {
		return nil, fmt.Errorf("%w: send descriptions or transactions, not both", common.ErrInvalidInput)
	}

	var items []engine.Item
	for _, desc := range r.Descriptions {
		items = append(items, engine.Item{Description: desc})
	}
	for i, in := range r.Transactions {
		item, err := in.toItem()
		if err != nil {
			return nil, fmt.Errorf("transaction at index %d: %w", i, err)
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, common.ErrEmptyBatch
	}
	if len(items) > MaxBatchSize {
		return nil, fmt.Errorf("%w: batch of %d exceeds limit of %d", common.ErrInvalidInput, len(items), MaxBatchSize)
	}
	return items, nil
}

func (in TransactionInput) toItem() (engine.Item, error) {
	item := engine.Item{
		ID:          in.ID,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
	}
	if strings.TrimSpace(in.Date) != "" {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(in.Date))
		if err != nil {
			return engine.Item{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", common.ErrInvalidInput, in.Date)
		}
		item.Date = date
	}
	return item, nil
}
