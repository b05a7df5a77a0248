// Package main provides the operator CLI for reviewing analysis jobs without
// the dashboard.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "review-cli",
	Short:         "Pricelist analysis review from the terminal",
	Long:          "review-cli lists analysis jobs, prints their categorized changes, exports them and records approve/reject decisions against the analysis backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	backendURL   string
	backendToken string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Analysis backend base URL (overrides BACKEND_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&backendToken, "token", "", "Bearer token (overrides BACKEND_TOKEN)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
