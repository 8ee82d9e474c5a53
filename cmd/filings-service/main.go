package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// @title Filings Service API
// @version 1.0
// @description Incremental ingestion and read API for exchange corporate filings.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{
		Use:   "filings-service",
		Short: "Scrapes, analyses and serves corporate filings",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-filings.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd, ingestCmd, loadCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing filings-service CLI: %s\n", err)
		os.Exit(1)
	}
}
