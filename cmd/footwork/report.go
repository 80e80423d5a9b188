package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lacedup/footwork/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Regenerate the HTML dashboard",
	Long:  "Rewrites the dashboard file from the current catalog without fetching anything.",
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
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

	if err := regenerateReport(cfg.ReportPath, sqlStore.Catalog(), logger); err != nil {
		logger.Error("dashboard update failed", "error", err)
		os.Exit(1)
	}
	return nil
}
