package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lacedup/footwork/internal/review"
	"github.com/lacedup/footwork/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse tracked postings interactively (TUI)",
	Long:  "Opens the catalog browser: cursor through postings, view details, toggle application status, open apply links.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	return review.Run(sqlStore.Catalog())
}
