package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/deductible/internal/cache"
	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/config"
	"github.com/Veraticus/deductible/internal/engine"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
	"github.com/Veraticus/deductible/internal/storage"
	"github.com/spf13/viper"
)

// openStorage opens the configured database and brings its schema up to date.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.DatabasePath(viper.GetString("database.path"))

	db, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("Connected to database", "path", dbPath)
	return db, nil
}

func closeStorage(db *storage.SQLiteStorage) {
	if err := db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// engineConfigFromViper reads engine tuning, falling back to defaults for
// unset or invalid values.
func engineConfigFromViper() engine.Config {
	cfg := engine.DefaultConfig()
	if workers := viper.GetInt("engine.workers"); workers > 0 {
		cfg.Workers = workers
	}
	if timeout := viper.GetDuration("engine.ai_timeout"); timeout > 0 {
		cfg.AITimeout = timeout
	}
	if minConfidence := viper.GetInt("engine.ai_min_confidence"); minConfidence > 0 {
		cfg.AIMinConfidence = minConfidence
	}
	return cfg
}

// buildEngine wires the result cache, engine configuration and optional AI
// enrichment. The returned cleanup releases the AI client.
func buildEngine(logger *slog.Logger) (*engine.Engine, func(), error) {
	ttl := viper.GetDuration("cache.ttl")
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	capacity := viper.GetInt("cache.capacity")
	if capacity <= 0 {
		capacity = cache.DefaultCapacity
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	cleanup := func() {}

	ai, err := createAIClassifier(logger)
	if err != nil {
		return nil, nil, err
	}
	if ai != nil {
		opts = append(opts, engine.WithAI(ai))
		cleanup = ai.Close
	}

	return engine.New(cache.New(ttl, capacity), engineConfigFromViper(), opts...), cleanup, nil
}

// parseToggles turns --toggle flag values into a toggle state. Each value is a
// deduction category name, optionally suffixed with =false to disable it.
func parseToggles(values []string) (model.DeductionToggleState, error) {
	if len(values) == 0 {
		return nil, nil
	}

	state := make(model.DeductionToggleState, len(values))
	for _, value := range values {
		name, enabled := value, true
		if i := strings.LastIndex(value, "="); i >= 0 {
			switch strings.ToLower(strings.TrimSpace(value[i+1:])) {
			case "true", "on", "yes":
				name = value[:i]
			case "false", "off", "no":
				name, enabled = value[:i], false
			}
		}
		name = strings.TrimSpace(name)
		if !reference.IsDeductionCategory(name) {
			return nil, common.NewUserError(
				fmt.Sprintf("unknown deduction category %q (see 'deduct toggles list')", name),
				common.ErrUnknownCategory)
		}
		state[name] = enabled
	}
	return state, nil
}

// loadRequestOverrides reads the stored overrides for the configured user.
// Toggles given on the command line replace the stored toggles.
func loadRequestOverrides(ctx context.Context, db *storage.SQLiteStorage, toggleFlags []string) (engine.Overrides, error) {
	flagToggles, err := parseToggles(toggleFlags)
	if err != nil {
		return engine.Overrides{}, err
	}

	overrides, err := engine.LoadOverrides(ctx, db, viper.GetString("user"))
	if err != nil {
		return engine.Overrides{}, err
	}
	if flagToggles != nil {
		overrides.Toggles = flagToggles
	}
	return overrides, nil
}

// readDescriptions reads one description per line. Blank lines and lines
// starting with # are skipped.
func readDescriptions(r io.Reader) ([]engine.Item, error) {
	var items []engine.Item
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, engine.Item{Description: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read descriptions: %w", err)
	}
	return items, nil
}

// sortedCategories returns a toggle state's categories in display order.
func sortedCategories(state model.DeductionToggleState) []string {
	names := make([]string, 0, len(state))
	for name := range state {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
