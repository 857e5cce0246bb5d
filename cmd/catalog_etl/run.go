package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/catalog-etl/internal/config"
	"github.com/jonathan/catalog-etl/internal/db"
	"github.com/jonathan/catalog-etl/internal/observability"
	"github.com/jonathan/catalog-etl/internal/pipeline"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the extract-and-load pipeline once",
	Long: `Runs every stage in order: fetch -> extract -> write -> choose file type -> read back -> load into SQLite.

Configuration can be loaded from a JSON or YAML file using --config. Command-line arguments override config file values.
Stage failures are logged and reported; the command only fails on invalid configuration.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath  string
	runURL         string
	runFilename    string
	runFileType    string
	runSourceType  string
	runDataDir     string
	runSelector    string
	runExportJSON  bool
	runUseBrowser  bool
	runTimeout     int
	runDatabaseURL string
	runVerbose     bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runURL, "url", "u", "", "Listing page URL (default "+config.DefaultSourceURL+")")
	runCommand.Flags().StringVarP(&runFilename, "filename", "f", "", "Base name for the data files and the table (default "+config.DefaultFileBaseName+")")
	runCommand.Flags().StringVarP(&runFileType, "file-type", "t", "", `Read-back format: "csv" reads the CSV file, anything else the JSON file (default csv)`)
	runCommand.Flags().StringVar(&runSourceType, "source-type", "", "Source kind label (default web)")
	runCommand.Flags().StringVarP(&runDataDir, "data-dir", "d", "", "Directory for data files (default "+config.DefaultStorageDir+")")
	runCommand.Flags().StringVar(&runSelector, "selector", "", "CSS selector for product cards")
	runCommand.Flags().BoolVar(&runExportJSON, "export-json", false, "Also write {filename}.json")
	runCommand.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Retry with a headless browser when the page has no product cards (requires Chrome)")
	runCommand.Flags().IntVar(&runTimeout, "timeout", 0, "HTTP timeout in seconds (0 means no timeout)")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// Database URL for run history
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL for run history (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (only flags that were explicitly set)
	applyRunFlags(cmd, &cfg)

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: Optional run history
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	opts := pipeline.RunOptions{
		Verbose: cfg.Verbose,
		Output:  cmd.OutOrStdout(),
	}
	if cfg.DatabaseURL != "" {
		database, err := connectHistory(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: run history disabled: %v", err)
		} else {
			defer database.Close()
			opts.Recorder = database
		}
	}

	report, err := pipeline.Run(ctx, cfg, opts)
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintSummary(report.Summary())
	return nil
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.SourceURL = runURL
	}
	if flags.Changed("filename") {
		cfg.FileBaseName = runFilename
	}
	if flags.Changed("file-type") {
		fileType := runFileType
		cfg.FileFormat = &fileType
	}
	if flags.Changed("source-type") {
		cfg.SourceKind = runSourceType
	}
	if flags.Changed("data-dir") {
		cfg.StorageDir = runDataDir
	}
	if flags.Changed("selector") {
		cfg.ProductSelector = runSelector
	}
	if flags.Changed("export-json") {
		cfg.ExportJSON = runExportJSON
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = runUseBrowser
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = runTimeout
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = runVerbose
	}
}

func connectHistory(ctx context.Context, databaseURL string) (*db.DB, error) {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create run history schema: %w", err)
	}
	return database, nil
}
