package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/deductible/internal/api"
	"github.com/Veraticus/deductible/internal/engine"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classification API over HTTP",
		Long: `Start the HTTP API. Requests use the stored toggles and overrides of the
configured user unless a request supplies its own toggles.

Endpoints:
  POST /api/classify/bulk   classify descriptions or transactions
  POST /api/classify        classify one transaction
  GET  /api/cache/stats     result cache statistics
  GET  /api/tables/stats    reference table sizes
  GET  /api/health          liveness`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Bool("history", false, "record every bulk request in classification history")

	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.history", cmd.Flags().Lookup("history"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	db, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(db)

	eng, cleanup, err := buildEngine(logger)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := []api.Option{
		api.WithLogger(logger),
		api.WithOverrideReader(db, viper.GetString("user")),
	}
	if viper.GetBool("server.history") {
		opts = append(opts, api.WithHistory(db))
	}

	sweeper, err := startCacheSweeper(eng, viper.GetString("cache.sweep"), logger)
	if err != nil {
		return err
	}
	defer func() {
		<-sweeper.Stop().Done()
	}()

	server := &http.Server{
		Addr:              viper.GetString("server.addr"),
		Handler:           api.NewServer(eng, opts...).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serveUntilDone(ctx, server, logger)
}

// startCacheSweeper schedules periodic removal of expired cache entries.
func startCacheSweeper(eng *engine.Engine, schedule string, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		removed := eng.SweepCache()
		stats := eng.CacheStats()
		logger.Debug("Cache sweep complete",
			"removed", removed,
			"size", stats.Size,
			"hits", stats.Hits,
			"misses", stats.Misses)
	}); err != nil {
		return nil, fmt.Errorf("invalid cache.sweep schedule %q: %w", schedule, err)
	}

	c.Start()
	logger.Info("Cache sweeper started", "schedule", schedule)
	return c, nil
}

// serveUntilDone runs server until ctx is canceled, then shuts it down.
func serveUntilDone(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving classification API", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
