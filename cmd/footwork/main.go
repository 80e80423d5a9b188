package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Secrets like the RapidAPI key or the Slack webhook usually live in a
	// .env next to the config; absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
