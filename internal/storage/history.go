package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/deductible/internal/model"
	"github.com/shopspring/decimal"
)

// SaveClassifications records a batch of processed transactions.
func (s *SQLiteStorage) SaveClassifications(ctx context.Context, userID, batchID string, results []model.ProcessedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(batchID, "batchID"); err != nil {
		return err
	}
	if err := validateResults(results); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO classifications (
				user_id, batch_id, transaction_id, description, merchant_name,
				industry_code, match_strategy, deduction_type, source,
				deduction_amount, confidence, is_business_expense, classified_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, result := range results {
			classifiedAt := result.ClassifiedAt
			if classifiedAt.IsZero() {
				classifiedAt = time.Now()
			}

			_, err := stmt.ExecContext(ctx,
				userID,
				batchID,
				result.Transaction.ID,
				result.Transaction.Description,
				result.Classification.MerchantName,
				result.Classification.IndustryCode,
				string(result.Classification.MatchStrategy),
				result.DeductionType,
				string(result.ClassificationSource),
				result.DeductionAmount.StringFixed(2),
				result.Confidence,
				boolToInt(result.IsBusinessExpense),
				classifiedAt.UTC(),
			)
			if err != nil {
				return fmt.Errorf("failed to save classification for %s: %w", result.Transaction.ID, err)
			}
		}
		return nil
	})
}

// GetClassificationHistory returns the user's most recent classifications,
// newest first.
func (s *SQLiteStorage) GetClassificationHistory(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT batch_id, transaction_id, description, merchant_name, industry_code,
			match_strategy, deduction_type, source, deduction_amount, confidence,
			is_business_expense, classified_at
		FROM classifications
		WHERE user_id = ?
		ORDER BY classified_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query classification history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.HistoryRecord
	for rows.Next() {
		var (
			record                      model.HistoryRecord
			merchant, industry, dedType sql.NullString
			strategy, source, amount    string
			isBusiness                  int
		)

		if err := rows.Scan(
			&record.BatchID,
			&record.TransactionID,
			&record.Description,
			&merchant,
			&industry,
			&strategy,
			&dedType,
			&source,
			&amount,
			&record.Confidence,
			&isBusiness,
			&record.ClassifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}

		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("%w: bad deduction amount %q for %s", ErrInvalidResult, amount, record.TransactionID)
		}

		record.MerchantName = merchant.String
		record.IndustryCode = industry.String
		record.DeductionType = dedType.String
		record.MatchStrategy = model.MatchStrategy(strategy)
		record.Source = model.ClassificationSource(source)
		record.DeductionAmount = parsed
		record.IsBusinessExpense = isBusiness == 1

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classification history: %w", err)
	}

	return records, nil
}
