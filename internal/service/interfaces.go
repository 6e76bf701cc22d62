// Package service defines the interfaces shared between the engine, the
// storage layer and the outer surfaces.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/deductible/internal/model"
)

// OverrideReader supplies a user's toggles and overrides to a classification
// request. The engine only reads these.
type OverrideReader interface {
	GetDeductionToggles(ctx context.Context, userID string) (model.DeductionToggleState, error)
	GetManualOverrides(ctx context.Context, userID string) (model.ManualOverrides, error)
	GetCategoryOverrides(ctx context.Context, userID string) (model.CategoryOverrides, error)
}

// OverrideWriter records user corrections and category toggles.
type OverrideWriter interface {
	SetDeductionToggle(ctx context.Context, userID, category string, enabled bool) error
	InitializeToggles(ctx context.Context, userID string, selected []string) error
	SetManualOverride(ctx context.Context, userID, transactionID string, isBusiness bool) error
	SetCategoryOverride(ctx context.Context, userID, transactionID, category string) error
	ClearOverrides(ctx context.Context, userID, transactionID string) error
}

// HistoryStore persists classification results for later review.
type HistoryStore interface {
	SaveClassifications(ctx context.Context, userID, batchID string, results []model.ProcessedTransaction) error
	GetClassificationHistory(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error)
}

// Storage is the full persistence surface.
type Storage interface {
	OverrideReader
	OverrideWriter
	HistoryStore
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
