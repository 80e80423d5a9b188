package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lacedup/footwork/internal/config"
	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/notifier"
	"github.com/lacedup/footwork/internal/pipeline"
	"github.com/lacedup/footwork/internal/ratelimit"
	"github.com/lacedup/footwork/internal/report"
	"github.com/lacedup/footwork/internal/store"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one aggregation pass and exit",
	Long:  "Fetches every configured source once, notifies new postings, updates the catalog and dashboard, then exits.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch and log matches without persisting anything or calling the webhook")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"sources", cfg.SourceCount(),
		"http_timeout", cfg.HTTPTimeout.String(),
		"max_age_days", cfg.Filters.MaxAgeDays,
	)

	var seenStore model.SeenStore
	var catalog model.Catalog
	var sqlStore *store.SQLiteStore

	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		seenStore = store.NewNopStore()
		catalog = store.NewNopCatalog()
	} else {
		lock, err := acquireRunLock(cfg.DBPath)
		if err != nil {
			logger.Error("cannot start run", "error", err)
			os.Exit(1)
		}
		defer lock.Unlock()

		sqlStore, err = store.Open(cfg.DBPath)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		seenStore = sqlStore
		catalog = sqlStore.Catalog()
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	limiter := ratelimit.NewHostLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	titleFilter := setupFilter(cfg)
	n := selectNotifier(cfg, dryRun, httpClient, logger)

	fetchers := buildFetchers(cfg, titleFilter, httpClient, limiter, logger)
	if len(fetchers) == 0 {
		logger.Error("no sources configured")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(fetchers, seenStore, catalog, n, logger)
	stats, err := runner.Run(ctx)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("run complete",
		"checked", stats.Checked,
		"new", stats.New,
		"sources_ok", stats.SourcesOK,
		"sources_failed", stats.SourcesFailed,
	)

	if !dryRun {
		if err := regenerateReport(cfg.ReportPath, catalog, logger); err != nil {
			logger.Error("dashboard update failed", "error", err)
		}
	}
	return nil
}

// selectNotifier picks the notifier for a run. With a nop store every
// fetched posting counts as new, so a dry run with the webhook wired would
// fire for all of them; matches go to the log instead.
func selectNotifier(cfg *config.Config, dry bool, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	if dry {
		return notifier.NewLogNotifier(logger)
	}
	return setupNotifier(cfg, httpClient, logger)
}

func regenerateReport(path string, catalog model.Catalog, logger *slog.Logger) error {
	postings, err := catalog.All()
	if err != nil {
		return err
	}
	if err := report.NewGenerator().WriteFile(path, postings); err != nil {
		return err
	}
	logger.Info("dashboard written", "path", path, "postings", len(postings))
	return nil
}
