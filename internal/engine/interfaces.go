package engine

import (
	"context"

	"github.com/Veraticus/deductible/internal/model"
)

// AIClassifier defines the contract for model-backed deductibility decisions.
// Implementations must honor ctx cancellation; the engine bounds every call
// with its AI timeout.
type AIClassifier interface {
	ClassifyDeduction(ctx context.Context, tx model.Transaction, result model.ClassificationResult, enabled []string) (model.AIVerdict, error)
}
