// Package report exports processed transactions as an XLSX workbook.
package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Veraticus/deductible/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names in the exported workbook.
const (
	SummarySheet      = "Summary"
	TransactionsSheet = "Transactions"
)

// TypeSummary aggregates deductible transactions of one deduction type.
type TypeSummary struct {
	Amount decimal.Decimal
	Count  int
}

// Summary aggregates a batch of processed transactions.
type Summary struct {
	ByType         map[string]TypeSummary
	BySource       map[model.ClassificationSource]int
	TotalDeduction decimal.Decimal
	Transactions   int
	Deductible     int
}

// Summarize builds the report summary for results.
func Summarize(results []model.ProcessedTransaction) Summary {
	summary := Summary{
		ByType:       make(map[string]TypeSummary),
		BySource:     make(map[model.ClassificationSource]int),
		Transactions: len(results),
	}
	for _, r := range results {
		summary.BySource[r.ClassificationSource]++
		if !r.IsBusinessExpense {
			continue
		}
		summary.Deductible++
		summary.TotalDeduction = summary.TotalDeduction.Add(r.DeductionAmount)

		key := r.DeductionType
		if key == "" {
			key = "Unspecified"
		}
		ts := summary.ByType[key]
		ts.Count++
		ts.Amount = ts.Amount.Add(r.DeductionAmount)
		summary.ByType[key] = ts
	}
	return summary
}

// Writer writes classification reports.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a report writer.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// WriteFile writes the report to path, creating parent directories.
func (w *Writer) WriteFile(ctx context.Context, path string, results []model.ProcessedTransaction) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path) // #nosec G304 -- path is chosen by the CLI user
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := w.Write(ctx, f, results); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}

	w.logger.Info("Report written", "path", path, "transactions", len(results))
	return nil
}

// Write renders the workbook to out.
func (w *Writer) Write(ctx context.Context, out io.Writer, results []model.ProcessedTransaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if _, err := f.NewSheet(TransactionsSheet); err != nil {
		return fmt.Errorf("failed to create transactions sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	summaryRows, headerRows := summaryData(Summarize(results))
	if err := writeRows(f, SummarySheet, summaryRows); err != nil {
		return err
	}
	for _, row := range headerRows {
		if err := f.SetRowStyle(SummarySheet, row, row, bold); err != nil {
			return fmt.Errorf("failed to style summary: %w", err)
		}
	}

	if err := writeRows(f, TransactionsSheet, transactionData(results)); err != nil {
		return err
	}
	if err := f.SetRowStyle(TransactionsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	if err := f.SetPanes(TransactionsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// summaryData lays out the summary sheet and returns the 1-based rows that
// hold section headers.
func summaryData(summary Summary) ([][]any, []int) {
	values := [][]any{
		{"Deduction Report"},
		{},
		{"Total Transactions", summary.Transactions},
		{"Business Expenses", summary.Deductible},
		{"Total Deductible Amount", summary.TotalDeduction.StringFixed(2)},
		{},
		{"Deduction Type", "Count", "Amount"},
	}
	headers := []int{1, len(values)}

	types := make([]string, 0, len(summary.ByType))
	for name := range summary.ByType {
		types = append(types, name)
	}
	// Largest amount first.
	sort.Slice(types, func(i, j int) bool {
		a, b := summary.ByType[types[i]].Amount, summary.ByType[types[j]].Amount
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return types[i] < types[j]
	})
	for _, name := range types {
		ts := summary.ByType[name]
		values = append(values, []any{name, ts.Count, ts.Amount.StringFixed(2)})
	}

	values = append(values, []any{}, []any{"Classification Source", "Count"})
	headers = append(headers, len(values))

	sources := make([]string, 0, len(summary.BySource))
	for source := range summary.BySource {
		sources = append(sources, string(source))
	}
	sort.Strings(sources)
	for _, source := range sources {
		values = append(values, []any{source, summary.BySource[model.ClassificationSource(source)]})
	}

	return values, headers
}

var transactionHeader = []any{
	"Date",
	"Description",
	"Merchant",
	"Industry Code",
	"Amount",
	"Business Expense",
	"Deduction Type",
	"Deduction Amount",
	"Confidence",
	"Source",
	"Match Strategy",
	"Transaction ID",
}

// transactionData lays out one row per transaction, newest first.
func transactionData(results []model.ProcessedTransaction) [][]any {
	sorted := make([]model.ProcessedTransaction, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Transaction.Date.After(sorted[j].Transaction.Date)
	})

	values := make([][]any, 0, len(sorted)+1)
	values = append(values, transactionHeader)
	for _, r := range sorted {
		date := ""
		if !r.Transaction.Date.IsZero() {
			date = r.Transaction.Date.Format("2006-01-02")
		}
		amount := ""
		if r.Transaction.Amount.Valid {
			amount = r.Transaction.Amount.Decimal.StringFixed(2)
		}
		business := "No"
		if r.IsBusinessExpense {
			business = "Yes"
		}
		values = append(values, []any{
			date,
			r.Transaction.Description,
			r.Classification.MerchantName,
			r.Classification.IndustryCode,
			amount,
			business,
			r.DeductionType,
			r.DeductionAmount.StringFixed(2),
			r.Confidence,
			string(r.ClassificationSource),
			string(r.Classification.MatchStrategy),
			r.Transaction.ID,
		})
	}
	return values
}
