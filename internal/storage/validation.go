// Package storage provides the SQLite persistence layer for deduction toggles,
// user overrides and classification history.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrEmptySlice    = errors.New("slice cannot be empty")
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrInvalidResult = errors.New("invalid classification result")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCategory ensures the category is one of the deduction categories.
func validateCategory(category string) error {
	if err := validateString(category, "category"); err != nil {
		return err
	}
	if !reference.IsDeductionCategory(category) {
		return fmt.Errorf("%w: %q", common.ErrUnknownCategory, category)
	}
	return nil
}

// validateResults validates a batch of processed transactions before saving.
func validateResults(results []model.ProcessedTransaction) error {
	if len(results) == 0 {
		return fmt.Errorf("%w: results", ErrEmptySlice)
	}

	for i, result := range results {
		if result.Transaction.ID == "" {
			return fmt.Errorf("result at index %d: %w: missing transaction ID", i, ErrInvalidResult)
		}
		if result.Transaction.Description == "" {
			return fmt.Errorf("result at index %d: %w: missing description", i, ErrInvalidResult)
		}
	}
	return nil
}
