package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lacedup/footwork/internal/liveness"
	"github.com/lacedup/footwork/internal/ratelimit"
	"github.com/lacedup/footwork/internal/store"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove dead postings from the catalog",
	Long:  "Probes every tracked posting's URL, drops the ones that are gone, and rewrites the dashboard. Unreachable pages are kept.",
	RunE:  runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	lock, err := acquireRunLock(cfg.DBPath)
	if err != nil {
		logger.Error("cannot start prune", "error", err)
		os.Exit(1)
	}
	defer lock.Unlock()

	sqlStore, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()
	catalog := sqlStore.Catalog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	limiter := ratelimit.NewHostLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	checker := liveness.NewChecker(httpClient, limiter, logger)

	removed, err := checker.Prune(ctx, catalog)
	if err != nil {
		logger.Error("prune failed", "error", err)
		os.Exit(1)
	}
	logger.Info("prune complete", "removed", removed)

	if err := regenerateReport(cfg.ReportPath, catalog, logger); err != nil {
		logger.Error("dashboard update failed", "error", err)
		os.Exit(1)
	}
	return nil
}
