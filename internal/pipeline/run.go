// Package pipeline provides the orchestration of the extract-and-load run:
// fetch, extract, write, branch, read back and load.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/catalog-etl/internal/config"
	dbpkg "github.com/jonathan/catalog-etl/internal/db"
	"github.com/jonathan/catalog-etl/internal/extraction"
	"github.com/jonathan/catalog-etl/internal/fetch"
	"github.com/jonathan/catalog-etl/internal/loader"
	"github.com/jonathan/catalog-etl/internal/observability"
	"github.com/jonathan/catalog-etl/internal/pipeline/steps"
	"github.com/jonathan/catalog-etl/internal/storage"
	"github.com/jonathan/catalog-etl/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Status  string `json:"status"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RenderFunc renders a page in a browser and returns its HTML
type RenderFunc func(ctx context.Context, url, waitSelector string) (string, error)

// RunRecorder persists run history. *db.DB implements it.
type RunRecorder interface {
	CreateRun(ctx context.Context, runID uuid.UUID, sourceURL, fileBaseName, fileFormat string) error
	RecordStep(ctx context.Context, runID uuid.UUID, input *dbpkg.RunStepInput) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// RunOptions holds collaborators and switches for a run
type RunOptions struct {
	FetchOptions *fetch.Options // Defaults to fetch.DefaultOptions with the config timeout
	Render       RenderFunc     // Browser fallback; defaults to fetch.WithBrowser
	Verbose      bool
	Logger       *log.Logger // Defaults to log.Default()
	Output       io.Writer   // Verbose summaries; defaults to os.Stdout
	OnProgress   ProgressCallback
	Recorder     RunRecorder
}

// runner carries the per-run state through the stages
type runner struct {
	cfg      config.Config
	opts     RunOptions
	logger   *log.Logger
	printer  *observability.Printer
	report   *Report
	statuses map[string]string
}

// Run executes the pipeline once. Only an invalid configuration is returned as an
// error: every stage failure is logged, recorded in the report and the run
// continues with whatever partial or empty data it has.
func Run(ctx context.Context, cfg config.Config, opts RunOptions) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := newRunner(cfg, opts)
	r.report.enter(StateStart)
	r.startRecording(ctx)

	r.extractData(ctx)
	branch := r.chooseFileType(ctx)
	r.readBack(ctx, branch)
	r.loadToSQLite(ctx)

	r.report.enter(StateEnd)
	r.finishRecording(ctx)

	return r.report, nil
}

func newRunner(cfg config.Config, opts RunOptions) *runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.FetchOptions == nil {
		opts.FetchOptions = fetch.DefaultOptions()
		opts.FetchOptions.Timeout = cfg.Timeout()
	}
	if opts.Render == nil {
		opts.Render = func(ctx context.Context, url, waitSelector string) (string, error) {
			return fetch.WithBrowser(ctx, url, waitSelector, cfg.Timeout(), opts.Verbose)
		}
	}
	if cfg.ProductSelector == "" {
		cfg.ProductSelector = extraction.DefaultProductSelector
	}

	return &runner{
		cfg:     cfg,
		opts:    opts,
		logger:  logger,
		printer: observability.NewPrinter(out),
		report: &Report{
			RunID:   uuid.New(),
			Config:  cfg,
			Records: types.RecordSet{},
		},
		statuses: make(map[string]string),
	}
}

// extractData fetches the page, extracts records and writes the CSV file.
// Its failures are swallowed: a failed fetch yields an empty record set and
// the file is still written.
func (r *runner) extractData(ctx context.Context) {
	start := time.Now()
	var errs []error

	html, err := r.fetchPage(ctx)
	if err != nil {
		r.logger.Printf("Error occurred while scraping %s: %v", r.cfg.SourceURL, err)
		errs = append(errs, err)
	}
	r.report.enter(StateFetched)

	if err == nil {
		records, extractErr := r.extractRecords(ctx, html)
		if extractErr != nil {
			r.logger.Printf("Error occurred while extracting products from %s: %v", r.cfg.SourceURL, extractErr)
			errs = append(errs, extractErr)
		} else {
			r.report.Records = records
		}
	}
	r.report.enter(StateExtracted)
	r.verbosef("Extracted %d products", len(r.report.Records))
	if r.opts.Verbose {
		r.printer.PrintRecords(r.report.Records)
	}

	if writeErrs := r.writeFiles(); len(writeErrs) > 0 {
		errs = append(errs, writeErrs...)
	}
	r.report.enter(StateWritten)

	r.finishStep(ctx, StepResult{
		Step:     steps.StepExtractData,
		Status:   dbpkg.StepStatusCompleted,
		Duration: time.Since(start),
		Error:    errors.Join(errs...),
		Metadata: map[string]interface{}{"records": len(r.report.Records)},
	})
}

func (r *runner) fetchPage(ctx context.Context) (string, error) {
	r.verbosef("Fetching %s", r.cfg.SourceURL)
	result, err := fetch.URL(ctx, r.cfg.SourceURL, r.opts.FetchOptions)
	if err != nil {
		return "", err
	}
	r.verbosef("Fetched HTML: %d bytes (%s)", len(result.HTML), result.ContentType)
	return result.HTML, nil
}

// extractRecords parses html and, when enabled, retries through a headless
// browser if the server-rendered page holds no product cards.
func (r *runner) extractRecords(ctx context.Context, html string) (types.RecordSet, error) {
	records, err := extraction.Products(html, r.cfg.ProductSelector)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 || !r.cfg.UseBrowser {
		return records, nil
	}

	r.verbosef("No product cards in HTTP response, falling back to browser rendering...")
	rendered, err := r.opts.Render(ctx, r.cfg.SourceURL, r.cfg.ProductSelector)
	if err != nil {
		r.logger.Printf("Browser rendering failed for %s: %v, using HTTP content", r.cfg.SourceURL, err)
		return records, nil
	}
	return extraction.Products(rendered, r.cfg.ProductSelector)
}

func (r *runner) writeFiles() []error {
	var errs []error

	csvPath := r.cfg.CSVPath()
	if err := storage.WriteCSV(r.report.Records, csvPath); err != nil {
		r.logger.Printf("Error occurred while writing %s: %v", csvPath, err)
		errs = append(errs, err)
	} else {
		r.logger.Printf("Data saved to %s", csvPath)
	}

	if r.cfg.ExportJSON {
		jsonPath := r.cfg.JSONPath()
		if err := storage.WriteJSON(r.report.Records, jsonPath); err != nil {
			r.logger.Printf("Error occurred while writing %s: %v", jsonPath, err)
			errs = append(errs, err)
		} else {
			r.logger.Printf("Data saved to %s", jsonPath)
		}
	}

	return errs
}

// chooseFileType is the branch point; exactly one read step runs afterwards.
func (r *runner) chooseFileType(ctx context.Context) Branch {
	start := time.Now()
	branch := SelectReader(r.cfg.FileType())
	r.report.Branch = branch
	r.report.enter(branch.State())
	r.verbosef("file_type %q selects %s", r.cfg.FileType(), branch.Step())

	r.finishStep(ctx, StepResult{
		Step:     steps.StepChooseFileType,
		Status:   dbpkg.StepStatusCompleted,
		Duration: time.Since(start),
		Metadata: map[string]interface{}{"branch": string(branch)},
	})
	return branch
}

func (r *runner) readBack(ctx context.Context, branch Branch) {
	r.finishStep(ctx, StepResult{
		Step:   branch.Skipped(),
		Status: dbpkg.StepStatusSkipped,
	})

	ok, err := steps.CanRun(branch.Step(), r.statuses)
	if err != nil || !ok {
		r.finishStep(ctx, StepResult{Step: branch.Step(), Status: dbpkg.StepStatusSkipped, Error: err})
		return
	}

	start := time.Now()
	path := storage.PathFor(r.cfg.StorageDir, r.cfg.FileBaseName, branch.Format())
	rows, err := storage.Read(r.cfg.StorageDir, r.cfg.FileBaseName, branch.Format())
	r.report.enter(StateRead)

	result := StepResult{
		Step:     branch.Step(),
		Duration: time.Since(start),
	}
	if err != nil {
		r.logger.Printf("Error occurred while reading %s: %v", path, err)
		result.Status = dbpkg.StepStatusFailed
		result.Error = err
	} else {
		r.report.Rows = rows
		r.logger.Printf("Read %d rows from %s", len(rows), path)
		if r.opts.Verbose {
			r.printer.PrintRows(path, rows)
		}
		result.Status = dbpkg.StepStatusCompleted
		result.Metadata = map[string]interface{}{"rows": len(rows)}
	}
	r.finishStep(ctx, result)
}

// loadToSQLite runs once either read branch completed. It reads the CSV file
// from disk, not the rows the read step produced.
func (r *runner) loadToSQLite(ctx context.Context) {
	ok, err := steps.CanRun(steps.StepLoadToSQLite, r.statuses)
	if err != nil || !ok {
		r.logger.Printf("Skipping %s: no read step completed", steps.StepLoadToSQLite)
		r.finishStep(ctx, StepResult{Step: steps.StepLoadToSQLite, Status: dbpkg.StepStatusSkipped, Error: err})
		return
	}

	start := time.Now()
	result, loadErr := loader.LoadCSV(ctx, r.cfg.CSVPath(), r.cfg.DatabasePath(), r.cfg.TableName())
	r.report.enter(StateLoaded)

	step := StepResult{
		Step:     steps.StepLoadToSQLite,
		Status:   dbpkg.StepStatusCompleted,
		Duration: time.Since(start),
	}
	if loadErr != nil {
		r.logger.Printf("Error occurred while loading into SQLite: %v", loadErr)
		step.Error = loadErr
	} else {
		r.report.Load = result
		r.logger.Printf("Data loaded into SQLite table %s (%d rows)", result.Table, result.Rows)
		step.Metadata = map[string]interface{}{"rows": result.Rows, "table": result.Table}
	}
	r.finishStep(ctx, step)
}

func (r *runner) finishStep(ctx context.Context, result StepResult) {
	r.statuses[result.Step] = result.Status
	r.report.Steps = append(r.report.Steps, result)

	message := result.Status
	if result.Error != nil {
		message = fmt.Sprintf("%s: %v", result.Status, result.Error)
	}
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{
			Step:    result.Step,
			Status:  result.Status,
			Message: message,
			RunID:   r.report.RunID.String(),
		})
	}

	if r.opts.Recorder != nil {
		input := &dbpkg.RunStepInput{
			Step:       result.Step,
			Status:     result.Status,
			Duration:   result.Duration,
			Parameters: result.Metadata,
		}
		if result.Error != nil {
			input.ErrorMessage = result.Error.Error()
		}
		if err := r.opts.Recorder.RecordStep(ctx, r.report.RunID, input); err != nil {
			r.logger.Printf("Warning: failed to record step %s: %v", result.Step, err)
		}
	}
}

func (r *runner) startRecording(ctx context.Context) {
	if r.opts.Recorder == nil {
		return
	}
	err := r.opts.Recorder.CreateRun(ctx, r.report.RunID, r.cfg.SourceURL, r.cfg.FileBaseName, r.cfg.FileType())
	if err != nil {
		r.logger.Printf("Warning: failed to record run: %v", err)
		r.logger.Printf("Continuing without run history...")
		r.opts.Recorder = nil
	}
}

func (r *runner) finishRecording(ctx context.Context) {
	if r.opts.Recorder == nil {
		return
	}
	status := dbpkg.RunStatusCompleted
	if r.report.Degraded() {
		status = dbpkg.RunStatusDegraded
	}
	if err := r.opts.Recorder.CompleteRun(ctx, r.report.RunID, status); err != nil {
		r.logger.Printf("Warning: failed to complete run: %v", err)
	}
}

func (r *runner) verbosef(format string, args ...interface{}) {
	if r.opts.Verbose {
		r.logger.Printf("[VERBOSE] "+format, args...)
	}
}
