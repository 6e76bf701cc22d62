package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/deductible/internal/api"
	"github.com/Veraticus/deductible/internal/cli"
	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/config"
	"github.com/Veraticus/deductible/internal/engine"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/ofx"
	"github.com/Veraticus/deductible/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultChunkSize = 500

func bulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk <file>",
		Short: "Classify many transactions from a file",
		Long: `Classify every transaction in a file. Plain text files hold one description
per line; OFX/QFX bank exports are detected by extension or forced with --ofx.
Use "-" to read descriptions from stdin.

Examples:
  deduct bulk descriptions.txt
  deduct bulk statement.qfx --xlsx ~/reports/fy2024.xlsx --save
  deduct bulk statement.ofx --account 062000123456
  cat descriptions.txt | deduct bulk - --json`,
		Args: cobra.ExactArgs(1),
		RunE: runBulk,
	}

	cmd.Flags().Bool("ofx", false, "treat the input as an OFX/QFX statement")
	cmd.Flags().String("account", "", "only classify transactions from this OFX account ID")
	cmd.Flags().StringArray("toggle", nil, "enable a deduction category for this run (repeatable, NAME or NAME=false)")
	cmd.Flags().String("xlsx", "", "write an XLSX report to this path")
	cmd.Flags().Bool("json", false, "print results as JSON")
	cmd.Flags().Bool("save", false, "record results in classification history")
	cmd.Flags().Int("chunk-size", defaultChunkSize, "transactions classified per engine call")

	return cmd
}

func runBulk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	forceOFX, _ := cmd.Flags().GetBool("ofx")
	account, _ := cmd.Flags().GetString("account")
	items, err := readBulkInput(ctx, cmd.InOrStdin(), path, forceOFX, account)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return common.NewUserError("no transactions found in "+path, common.ErrEmptyBatch)
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
	if len(overrides.Toggles.EnabledCategories()) == 0 {
		slog.Warn("No deduction categories enabled; every transaction will be personal. See 'deduct toggles'.")
	}

	eng, cleanup, err := buildEngine(slog.Default())
	if err != nil {
		return err
	}
	defer cleanup()

	asJSON, _ := cmd.Flags().GetBool("json")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")

	var bar *progressbar.ProgressBar
	if !asJSON {
		bar = newProgressBar(cmd.ErrOrStderr(), len(items))
	}

	run, err := classifyChunks(ctx, eng, items, overrides, chunkSize, func(done int) {
		if bar != nil {
			if err := bar.Add(done); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	})
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		for _, batch := range run.batches {
			if err := db.SaveClassifications(ctx, viper.GetString("user"), batch.BatchID, batch.Ordered); err != nil {
				return fmt.Errorf("failed to save classification history: %w", err)
			}
		}
	}

	if xlsxPath, _ := cmd.Flags().GetString("xlsx"); xlsxPath != "" {
		if err := report.NewWriter(slog.Default()).WriteFile(ctx, config.ExpandPath(xlsxPath), run.ordered); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess("Report written to "+xlsxPath))
	}

	if asJSON {
		return writeBulkJSON(cmd.OutOrStdout(), run)
	}

	printBulkSummary(cmd.OutOrStdout(), run)
	return nil
}

// readBulkInput loads items from a description list or an OFX statement.
// A non-empty account restricts an OFX statement to that account's
// transactions.
func readBulkInput(ctx context.Context, stdin io.Reader, path string, forceOFX bool, account string) ([]engine.Item, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(config.ExpandPath(path)) // #nosec G304 -- path is chosen by the CLI user
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if !forceOFX && !isOFXPath(path) {
		if account != "" {
			return nil, common.NewUserError("--account needs an OFX/QFX statement", common.ErrInvalidInput)
		}
		return readDescriptions(r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	parser := ofx.NewParser()
	if account != "" {
		if err := checkAccount(ctx, parser, data, path, account); err != nil {
			return nil, err
		}
	}

	transactions, err := parser.ParseFile(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, common.NewUserError("could not read "+path+" as an OFX/QFX statement", err)
	}
	items := make([]engine.Item, 0, len(transactions))
	for _, tx := range transactions {
		if account != "" && tx.AccountID != account {
			continue
		}
		items = append(items, engine.ItemFromTransaction(tx))
	}
	return items, nil
}

func checkAccount(ctx context.Context, parser *ofx.Parser, data []byte, path, account string) error {
	accounts, err := parser.GetAccounts(ctx, bytes.NewReader(data))
	if err != nil {
		return common.NewUserError("could not read "+path+" as an OFX/QFX statement", err)
	}
	for _, acct := range accounts {
		if acct == account {
			return nil
		}
	}
	msg := fmt.Sprintf("account %s is not in %s (available: %s)", account, path, strings.Join(accounts, ", "))
	return common.NewUserError(msg, fmt.Errorf("%w: account %q", common.ErrNotFound, account))
}

func isOFXPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return true
	}
	return false
}

// bulkRun is the combined outcome of a chunked bulk classification.
type bulkRun struct {
	results map[string]model.ProcessedTransaction
	batches []*engine.BulkResult
	ordered []model.ProcessedTransaction
	stats   engine.BulkStats
}

// classifyChunks sends items to the engine in chunks so progress can be
// reported. The shared cache makes later chunks reuse earlier resolutions.
func classifyChunks(
	ctx context.Context,
	eng *engine.Engine,
	items []engine.Item,
	overrides engine.Overrides,
	chunkSize int,
	progress func(done int),
) (*bulkRun, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	run := &bulkRun{
		results: make(map[string]model.ProcessedTransaction, len(items)),
		ordered: make([]model.ProcessedTransaction, 0, len(items)),
	}

	for start := 0; start < len(items); start += chunkSize {
		end := min(start+chunkSize, len(items))

		result, err := eng.ClassifyBulk(ctx, items[start:end], overrides)
		if err != nil {
			return nil, fmt.Errorf("failed to classify transactions %d-%d: %w", start+1, end, err)
		}

		run.batches = append(run.batches, result)
		run.ordered = append(run.ordered, result.Ordered...)
		for desc, processed := range result.Results {
			run.results[desc] = processed
		}
		run.stats.Merge(result.Stats)

		if progress != nil {
			progress(end - start)
		}
	}

	return run, nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Classifying transactions...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func writeBulkJSON(w io.Writer, run *bulkRun) error {
	resp := api.BulkResponse{
		Results: make(map[string]api.ResultJSON, len(run.results)),
		Stats:   run.stats,
	}
	if len(run.batches) == 1 {
		resp.BatchID = run.batches[0].BatchID
	}
	for desc, processed := range run.results {
		resp.Results[desc] = api.NewResultJSON(processed)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func printBulkSummary(w io.Writer, run *bulkRun) {
	summary := report.Summarize(run.ordered)

	fmt.Fprintln(w, cli.FormatTitle("Classification Summary"))
	fmt.Fprintln(w, cli.RenderTable(
		[]string{"Metric", "Value"},
		[][]string{
			{"Transactions", fmt.Sprintf("%d", run.stats.TotalProcessed)},
			{"Distinct descriptions", fmt.Sprintf("%d", len(run.results))},
			{"Cache hit rate", fmt.Sprintf("%.1f%%", run.stats.CacheHitRate*100)},
			{"Business expenses", fmt.Sprintf("%d", summary.Deductible)},
			{"Total deductible", summary.TotalDeduction.StringFixed(2)},
			{"AI calls", fmt.Sprintf("%d (%d failed)", run.stats.AICalls, run.stats.AIFailures)},
		},
	))

	if len(summary.ByType) == 0 {
		return
	}

	rows := make([][]string, 0, len(summary.ByType))
	for _, name := range sortedTypeNames(summary) {
		ts := summary.ByType[name]
		rows = append(rows, []string{name, fmt.Sprintf("%d", ts.Count), ts.Amount.StringFixed(2)})
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTable([]string{"Deduction type", "Count", "Amount"}, rows))
}

func sortedTypeNames(summary report.Summary) []string {
	names := make([]string, 0, len(summary.ByType))
	for name := range summary.ByType {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
