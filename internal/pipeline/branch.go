package pipeline

import (
	"github.com/jonathan/catalog-etl/internal/pipeline/steps"
	"github.com/jonathan/catalog-etl/internal/storage"
)

// Branch is the read-back path chosen for a run
type Branch string

const (
	// BranchCSV reads {filename}.csv
	BranchCSV Branch = "csv"
	// BranchJSON reads {filename}.json
	BranchJSON Branch = "json"
)

// SelectReader maps a file format to a read-back branch. Only the exact value
// "csv" selects the CSV reader; every other value, including "" and unknown
// formats, selects the JSON reader.
func SelectReader(fileFormat string) Branch {
	if fileFormat == "csv" {
		return BranchCSV
	}
	return BranchJSON
}

// Step returns the name of the read step this branch runs.
func (b Branch) Step() string {
	if b == BranchCSV {
		return steps.StepReadCSV
	}
	return steps.StepReadJSON
}

// Skipped returns the name of the read step this branch does not run.
func (b Branch) Skipped() string {
	if b == BranchCSV {
		return steps.StepReadJSON
	}
	return steps.StepReadCSV
}

// Format returns the storage format the branch reads.
func (b Branch) Format() storage.Format {
	if b == BranchCSV {
		return storage.FormatCSV
	}
	return storage.FormatJSON
}

// State returns the pipeline state entered when the branch is taken.
func (b Branch) State() State {
	if b == BranchCSV {
		return StateBranchCSV
	}
	return StateBranchJSON
}
