package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/lacedup/footwork/internal/adapter"
	"github.com/lacedup/footwork/internal/config"
	"github.com/lacedup/footwork/internal/filter"
	"github.com/lacedup/footwork/internal/model"
	"github.com/lacedup/footwork/internal/notifier"
	"github.com/lacedup/footwork/internal/ratelimit"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "footwork",
	Short: "Footwear-industry job radar",
	Long:  "Footwork aggregates entry-level footwear and sports-brand job postings from career sites, job boards, and search APIs, and alerts you to new ones.",
	// Default to `start` so that `footwork` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: FOOTWORK_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > FOOTWORK_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("FOOTWORK_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func setupFilter(cfg *config.Config) *filter.KeywordFilter {
	return filter.NewKeywordFilter(
		cfg.Filters.EntryLevelKeywords,
		cfg.Filters.ExcludeSeniorityKeywords,
		cfg.Filters.ExcludeRetailKeywords,
		cfg.Filters.ExtraKeywords,
	)
}

// buildFetchers assembles one fetcher per configured source, all sharing the
// same HTTP client, title filter, and per-host rate limiter.
func buildFetchers(cfg *config.Config, f model.TitleFilter, httpClient *http.Client, limiter *ratelimit.HostLimiter, logger *slog.Logger) []model.Fetcher {
	var fetchers []model.Fetcher

	if len(cfg.SearchAPI.Queries) > 0 {
		fetchers = append(fetchers, adapter.NewJSearchAdapter(
			cfg.SearchAPI.APIKey, cfg.SearchAPI.Queries, cfg.SearchAPI.PagesPerQuery,
			cfg.Filters.MaxAgeDays, f, httpClient, limiter, logger,
		))
	}

	for _, w := range cfg.Workday {
		fetchers = append(fetchers, adapter.NewWorkdayAdapter(
			w.Name, w.Tenant, w.Subdomain, w.CareerSite, w.MaxPostings,
			f, httpClient, limiter, logger,
		))
		logger.Info("registered workday company", "name", w.Name, "tenant", w.Tenant)
	}

	for _, cs := range cfg.CareerSites {
		fetchers = append(fetchers, adapter.NewCareerSiteAdapter(adapter.CareerSiteSpec{
			Company:     cs.Company,
			Slug:        cs.Slug,
			Endpoint:    cs.Endpoint,
			MaxPages:    cs.MaxPages,
			ListFields:  cs.ListFields,
			IDField:     cs.IDField,
			TitleField:  cs.TitleField,
			LocField:    cs.LocField,
			URLField:    cs.URLField,
			DateField:   cs.DateField,
			URLTemplate: cs.URLTemplate,
		}, f, httpClient, limiter, logger))
		logger.Info("registered career site", "company", cs.Company)
	}

	for _, hp := range cfg.HTMLPages {
		fetchers = append(fetchers, adapter.NewHTMLPageAdapter(adapter.HTMLPageSpec{
			Company:          hp.Company,
			Slug:             hp.Slug,
			URL:              hp.URL,
			CardSelector:     hp.CardSelector,
			TitleSelector:    hp.TitleSelector,
			LinkSelector:     hp.LinkSelector,
			LocationSelector: hp.LocationSelector,
		}, f, httpClient, limiter, logger))
		logger.Info("registered html career page", "company", hp.Company)
	}

	for _, bf := range cfg.BoardFeeds {
		fetchers = append(fetchers, adapter.NewBoardFeedAdapter(adapter.BoardFeedSpec{
			Name:    bf.Name,
			Slug:    bf.Slug,
			FeedURL: bf.FeedURL,
		}, f, httpClient, limiter, logger))
		logger.Info("registered board feed", "board", bf.Name)
	}

	return fetchers
}

// acquireRunLock takes an exclusive file lock next to the database so two
// commands cannot mutate it concurrently. Callers must Unlock.
func acquireRunLock(dbPath string) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(filepath.Dir(dbPath), ".footwork.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another footwork process holds the lock at %s", lock.Path())
	}
	return lock, nil
}
