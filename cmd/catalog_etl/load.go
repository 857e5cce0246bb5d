package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/catalog-etl/internal/config"
	"github.com/jonathan/catalog-etl/internal/loader"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load the CSV file into SQLite",
	Long:  "Replaces the table {filename} in {data-dir}/{filename}.sqlite with the contents of {data-dir}/{filename}.csv.",
	RunE:  runLoad,
}

var (
	loadDataDir  string
	loadFilename string
)

func init() {
	loadCmd.Flags().StringVarP(&loadDataDir, "data-dir", "d", config.DefaultStorageDir, "Directory holding the data files")
	loadCmd.Flags().StringVarP(&loadFilename, "filename", "f", config.DefaultFileBaseName, "Base name of the CSV file and the table")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	cfg := config.Config{StorageDir: loadDataDir, FileBaseName: loadFilename}

	result, err := loader.LoadCSV(context.Background(), cfg.CSVPath(), cfg.DatabasePath(), cfg.TableName())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Data loaded into SQLite table %s (%d rows) at %s\n",
		result.Table, result.Rows, result.Database)
	return nil
}
