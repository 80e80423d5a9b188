package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured sources",
	Long:  "Reads the config and prints a table of every enabled source.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-30s %s\n", "Source", "Kind")
	fmt.Println(strings.Repeat("─", 45))

	if len(cfg.SearchAPI.Queries) > 0 {
		fmt.Printf("%-30s %s\n", "jsearch", fmt.Sprintf("search api (%d queries)", len(cfg.SearchAPI.Queries)))
	}
	for _, w := range cfg.Workday {
		fmt.Printf("%-30s %s\n", w.Name, "workday")
	}
	for _, cs := range cfg.CareerSites {
		fmt.Printf("%-30s %s\n", cs.Company, "career site")
	}
	for _, hp := range cfg.HTMLPages {
		fmt.Printf("%-30s %s\n", hp.Company, "html page")
	}
	for _, bf := range cfg.BoardFeeds {
		fmt.Printf("%-30s %s\n", bf.Name, "board feed")
	}

	fmt.Printf("\nTotal: %d source(s)\n", cfg.SourceCount())
	return nil
}
