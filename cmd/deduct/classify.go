package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/deductible/internal/api"
	"github.com/Veraticus/deductible/internal/cli"
	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/engine"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <description>",
		Short: "Classify a single transaction",
		Long: `Resolve one bank description to a merchant and decide whether it is a
business expense under your enabled deduction categories.

Examples:
  deduct classify "Debit Card Purchase Shell Coles Express" --amount -45.50
  deduct classify "Direct Debit Optus Mobile" --toggle "Home Office Expenses"
  deduct classify "Uber Trip" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().String("amount", "", "signed transaction amount (negative for expenses)")
	cmd.Flags().String("id", "", "transaction ID used for manual overrides")
	cmd.Flags().String("date", "", "transaction date (YYYY-MM-DD)")
	cmd.Flags().StringArray("toggle", nil, "enable a deduction category for this run (repeatable, NAME or NAME=false)")
	cmd.Flags().Bool("json", false, "print the result as JSON")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	item, err := classifyItem(cmd, strings.Join(args, " "))
	if err != nil {
		return err
	}

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(db)

	toggleFlags, _ := cmd.Flags().GetStringArray("toggle")
	overrides, err := loadRequestOverrides(ctx, db, toggleFlags)
	if err != nil {
		return err
	}

	eng, cleanup, err := buildEngine(slog.Default())
	if err != nil {
		return err
	}
	defer cleanup()

	processed, err := eng.ClassifyOne(ctx, item, overrides)
	if err != nil {
		return fmt.Errorf("failed to classify transaction: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(api.NewResultJSON(processed))
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderResult(processed))
	return nil
}

func classifyItem(cmd *cobra.Command, description string) (engine.Item, error) {
	item := engine.Item{Description: description}
	item.ID, _ = cmd.Flags().GetString("id")

	if amount, _ := cmd.Flags().GetString("amount"); amount != "" {
		parsed, err := model.NewAmount(amount)
		if err != nil {
			return engine.Item{}, common.NewUserError("--amount must be a number such as -45.50", err)
		}
		item.Amount = parsed
	}

	if date, _ := cmd.Flags().GetString("date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return engine.Item{}, common.NewUserError("--date must be YYYY-MM-DD", err)
		}
		item.Date = parsed
	}

	return item, nil
}
