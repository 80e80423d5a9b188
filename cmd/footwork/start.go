package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lacedup/footwork/internal/pipeline"
	"github.com/lacedup/footwork/internal/ratelimit"
	"github.com/lacedup/footwork/internal/scheduler"
	"github.com/lacedup/footwork/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the aggregation daemon",
	Long:  "Runs an immediate aggregation pass, then repeats on the configured interval; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.PollingInterval.String(),
		"sources", cfg.SourceCount(),
		"max_age_days", cfg.Filters.MaxAgeDays,
	)

	lock, err := acquireRunLock(cfg.DBPath)
	if err != nil {
		logger.Error("cannot start daemon", "error", err)
		os.Exit(1)
	}
	defer lock.Unlock()

	sqlStore, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	limiter := ratelimit.NewHostLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	titleFilter := setupFilter(cfg)
	n := setupNotifier(cfg, httpClient, logger)

	fetchers := buildFetchers(cfg, titleFilter, httpClient, limiter, logger)
	if len(fetchers) == 0 {
		logger.Error("no sources configured")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(fetchers, sqlStore, sqlStore.Catalog(), n, logger)
	sched := scheduler.New(runner, cfg.PollingInterval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
