package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/catalog-etl/internal/config"
	"github.com/jonathan/catalog-etl/internal/observability"
	"github.com/jonathan/catalog-etl/internal/pipeline"
	"github.com/jonathan/catalog-etl/internal/storage"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read stored product records back",
	Long:  `Reads {data-dir}/{filename}.csv when --file-type is "csv" and {data-dir}/{filename}.json otherwise, then prints the rows.`,
	RunE:  runRead,
}

var (
	readDataDir  string
	readFilename string
	readFileType string
	readJSON     bool
)

func init() {
	readCmd.Flags().StringVarP(&readDataDir, "data-dir", "d", config.DefaultStorageDir, "Directory holding the data files")
	readCmd.Flags().StringVarP(&readFilename, "filename", "f", config.DefaultFileBaseName, "Base name of the data file")
	readCmd.Flags().StringVarP(&readFileType, "file-type", "t", config.DefaultFileFormat, `"csv" reads the CSV file, anything else the JSON file`)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Print rows as a JSON array")

	rootCmd.AddCommand(readCmd)
}

func runRead(cmd *cobra.Command, _ []string) error {
	branch := pipeline.SelectReader(readFileType)
	rows, err := storage.Read(readDataDir, readFilename, branch.Format())
	if err != nil {
		return fmt.Errorf("%s: %w", branch.Step(), err)
	}

	if readJSON {
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal rows: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	path := storage.PathFor(readDataDir, readFilename, branch.Format())
	observability.NewPrinter(cmd.OutOrStdout()).PrintRows(path, rows)
	return nil
}
