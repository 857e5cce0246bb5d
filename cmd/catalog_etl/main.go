// Package main provides the entry point for the catalog-etl command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "catalog_etl",
	Short: "Product listing extract-and-load pipeline",
	Long:  "catalog_etl scrapes a product listing page, stores the records as CSV (and optionally JSON), reads them back and loads them into a SQLite table.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
