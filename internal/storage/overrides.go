package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
)

// GetDeductionToggles returns the user's toggle state. Every known deduction
// category is present; categories never stored are disabled.
func (s *SQLiteStorage) GetDeductionToggles(ctx context.Context, userID string) (model.DeductionToggleState, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	state := make(model.DeductionToggleState)
	for _, category := range reference.DeductionCategories() {
		state[category] = false
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, enabled
		FROM deduction_toggles
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query toggles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var category string
		var enabled int
		if err := rows.Scan(&category, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan toggle: %w", err)
		}
		state[category] = enabled == 1
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating toggles: %w", err)
	}

	return state, nil
}

// SetDeductionToggle enables or disables one deduction category.
func (s *SQLiteStorage) SetDeductionToggle(ctx context.Context, userID, category string, enabled bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	return upsertToggle(ctx, s.db, userID, category, enabled)
}

// InitializeToggles replaces the user's toggles: the selected categories are
// enabled and every other known category is disabled.
func (s *SQLiteStorage) InitializeToggles(ctx context.Context, userID string, selected []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	enabled := make(map[string]bool, len(selected))
	for _, category := range selected {
		if err := validateCategory(category); err != nil {
			return err
		}
		enabled[category] = true
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM deduction_toggles WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("failed to clear toggles: %w", err)
		}
		for _, category := range reference.DeductionCategories() {
			if err := upsertToggle(ctx, tx, userID, category, enabled[category]); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertToggle(ctx context.Context, q queryable, userID, category string, enabled bool) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO deduction_toggles (user_id, category, enabled, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, category) DO UPDATE SET
			enabled = excluded.enabled,
			updated_at = CURRENT_TIMESTAMP
	`, userID, category, boolToInt(enabled))
	if err != nil {
		return fmt.Errorf("failed to save toggle %q: %w", category, err)
	}
	return nil
}

// GetManualOverrides returns the user's business-expense overrides keyed by
// transaction ID.
func (s *SQLiteStorage) GetManualOverrides(ctx context.Context, userID string) (model.ManualOverrides, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, is_business
		FROM manual_overrides
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query manual overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	overrides := make(model.ManualOverrides)
	for rows.Next() {
		var txID string
		var isBusiness int
		if err := rows.Scan(&txID, &isBusiness); err != nil {
			return nil, fmt.Errorf("failed to scan manual override: %w", err)
		}
		overrides[txID] = isBusiness == 1
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manual overrides: %w", err)
	}

	return overrides, nil
}

// SetManualOverride records a forced business-expense flag for a transaction.
func (s *SQLiteStorage) SetManualOverride(ctx context.Context, userID, transactionID string, isBusiness bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manual_overrides (user_id, transaction_id, is_business, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, transaction_id) DO UPDATE SET
			is_business = excluded.is_business,
			updated_at = CURRENT_TIMESTAMP
	`, userID, transactionID, boolToInt(isBusiness))
	if err != nil {
		return fmt.Errorf("failed to save manual override: %w", err)
	}
	return nil
}

// GetCategoryOverrides returns the user's forced deduction categories keyed by
// transaction ID.
func (s *SQLiteStorage) GetCategoryOverrides(ctx context.Context, userID string) (model.CategoryOverrides, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, category
		FROM category_overrides
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query category overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	overrides := make(model.CategoryOverrides)
	for rows.Next() {
		var txID, category string
		if err := rows.Scan(&txID, &category); err != nil {
			return nil, fmt.Errorf("failed to scan category override: %w", err)
		}
		overrides[txID] = category
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category overrides: %w", err)
	}

	return overrides, nil
}

// SetCategoryOverride forces a transaction into a deduction category.
func (s *SQLiteStorage) SetCategoryOverride(ctx context.Context, userID, transactionID, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_overrides (user_id, transaction_id, category, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, transaction_id) DO UPDATE SET
			category = excluded.category,
			updated_at = CURRENT_TIMESTAMP
	`, userID, transactionID, category)
	if err != nil {
		return fmt.Errorf("failed to save category override: %w", err)
	}
	return nil
}

// ClearOverrides removes both kinds of override for a transaction.
func (s *SQLiteStorage) ClearOverrides(ctx context.Context, userID, transactionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"manual_overrides", "category_overrides"} {
			query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = ? AND transaction_id = ?`, table) // #nosec G201 -- constant table names
			if _, err := tx.ExecContext(ctx, query, userID, transactionID); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
}
