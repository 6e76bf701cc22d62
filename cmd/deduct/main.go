// Package main contains the deduct CLI commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Veraticus/deductible/internal/cache"
	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/config"
	"github.com/Veraticus/deductible/internal/engine"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "deduct",
		Short: "🧾 Bank transaction tax-deduction classifier",
		Long: `deduct resolves raw bank transaction descriptions to merchants and industry
codes, then decides whether each transaction is a business expense under the
deduction categories you have enabled.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/deduct/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("db", "", "database path (default: "+config.DefaultDatabasePath+")")
	rootCmd.PersistentFlags().String("user", "default", "user whose toggles and overrides apply")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	setDefaults()

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(bulkCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(overridesCmd())
	rootCmd.AddCommand(togglesCmd())
	rootCmd.AddCommand(tablesCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(versionCmd())
}

func setDefaults() {
	defaults := engine.DefaultConfig()
	viper.SetDefault("cache.ttl", cache.DefaultTTL)
	viper.SetDefault("cache.capacity", cache.DefaultCapacity)
	viper.SetDefault("cache.sweep", "@every 5m")
	viper.SetDefault("engine.workers", defaults.Workers)
	viper.SetDefault("engine.ai_timeout", defaults.AITimeout)
	viper.SetDefault("engine.ai_min_confidence", defaults.AIMinConfidence)
	viper.SetDefault("engine.ai_enabled", false)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.max_retries", 2)
	viper.SetDefault("llm.retry_delay", 250*time.Millisecond)
	viper.SetDefault("llm.rate_limit", 60)
	viper.SetDefault("server.addr", ":8080")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := config.ConfigDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(dir)
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DEDUCT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if err := common.SetupLogger(level, viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deduct %s\n", version)
		},
	}
}
