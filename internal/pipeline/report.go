package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/catalog-etl/internal/config"
	"github.com/jonathan/catalog-etl/internal/loader"
	"github.com/jonathan/catalog-etl/internal/observability"
	"github.com/jonathan/catalog-etl/internal/types"
)

// State is a position in the pipeline's state machine
type State string

// Pipeline states in the order a run passes through them
const (
	StateStart      State = "START"
	StateFetched    State = "FETCHED"
	StateExtracted  State = "EXTRACTED"
	StateWritten    State = "WRITTEN"
	StateBranchCSV  State = "BRANCH_CSV"
	StateBranchJSON State = "BRANCH_JSON"
	StateRead       State = "READ"
	StateLoaded     State = "LOADED"
	StateEnd        State = "END"
)

// StepResult is the outcome of one step.
// Status follows task semantics: steps that swallow their failures
// (extract_data, load_to_sqlite) report completed with Error set.
type StepResult struct {
	Step     string
	Status   string
	Duration time.Duration
	Error    error
	Metadata map[string]interface{}
}

// Report summarizes a pipeline run
type Report struct {
	RunID   uuid.UUID
	Config  config.Config
	Records types.RecordSet
	Branch  Branch
	// Rows is the output of the read step that ran. It is informational only:
	// the loader reads the CSV file from disk independently.
	Rows   []types.Row
	Load   *loader.Result
	States []State
	Steps  []StepResult
}

// Step returns the result for the named step, or nil if it was not recorded.
func (r *Report) Step(name string) *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Step == name {
			return &r.Steps[i]
		}
	}
	return nil
}

// State returns the final state of the run.
func (r *Report) State() State {
	if len(r.States) == 0 {
		return StateStart
	}
	return r.States[len(r.States)-1]
}

// Degraded reports whether any step failed or swallowed an error.
func (r *Report) Degraded() bool {
	for _, s := range r.Steps {
		if s.Error != nil {
			return true
		}
	}
	return false
}

// Errors returns every failure recorded during the run, in step order.
func (r *Report) Errors() []error {
	var errs []error
	for _, s := range r.Steps {
		if s.Error != nil {
			errs = append(errs, s.Error)
		}
	}
	return errs
}

func (r *Report) enter(state State) {
	r.States = append(r.States, state)
}

// Summary converts the report for printing.
func (r *Report) Summary() *observability.Summary {
	s := &observability.Summary{
		RunID:    r.RunID.String(),
		Source:   r.Config.SourceURL,
		Branch:   string(r.Branch),
		Records:  len(r.Records),
		RowsRead: len(r.Rows),
	}
	if r.Load != nil {
		s.Table = r.Load.Table
		s.Loaded = r.Load.Rows
	}
	for _, state := range r.States {
		s.States = append(s.States, string(state))
	}
	for _, step := range r.Steps {
		s.Steps = append(s.Steps, observability.StepLine{
			Step:     step.Step,
			Status:   step.Status,
			Duration: step.Duration,
			Error:    step.Error,
		})
	}
	return s
}
