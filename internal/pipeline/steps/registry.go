// Package steps provides step definitions and trigger-rule evaluation for the
// extract-and-load pipeline.
package steps

import (
	"fmt"

	dbpkg "github.com/jonathan/catalog-etl/internal/db"
)

// Step names, matching the DAG task IDs
const (
	StepExtractData    = "extract_data"
	StepChooseFileType = "choose_file_type"
	StepReadCSV        = "read_csv_task"
	StepReadJSON       = "read_json_task"
	StepLoadToSQLite   = "load_to_sqlite"
)

// TriggerRule decides when a step may run given its upstream statuses
type TriggerRule string

const (
	// TriggerAllSuccess runs a step only when every dependency completed
	TriggerAllSuccess TriggerRule = "all_success"
	// TriggerOneSuccess runs a step when at least one dependency completed
	TriggerOneSuccess TriggerRule = "one_success"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Dependencies []string
	TriggerRule  TriggerRule
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepExtractData: {
		Name:         StepExtractData,
		Dependencies: []string{},
		TriggerRule:  TriggerAllSuccess,
	},
	StepChooseFileType: {
		Name:         StepChooseFileType,
		Dependencies: []string{StepExtractData},
		TriggerRule:  TriggerAllSuccess,
	},
	StepReadCSV: {
		Name:         StepReadCSV,
		Dependencies: []string{StepChooseFileType},
		TriggerRule:  TriggerAllSuccess,
	},
	StepReadJSON: {
		Name:         StepReadJSON,
		Dependencies: []string{StepChooseFileType},
		TriggerRule:  TriggerAllSuccess,
	},
	StepLoadToSQLite: {
		Name:         StepLoadToSQLite,
		Dependencies: []string{StepReadCSV, StepReadJSON},
		TriggerRule:  TriggerOneSuccess,
	},
}

// DependencyError represents a step whose trigger rule is not satisfied
type DependencyError struct {
	Step                string
	Rule                TriggerRule
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s (%s) blocked by dependencies: %v", e.Step, e.Rule, e.MissingDependencies)
}

// ValidateDependencies checks a step's trigger rule against the statuses of the
// steps that ran so far. A dependency absent from statuses has not run.
func ValidateDependencies(stepName string, statuses map[string]string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	completed := 0
	for _, dep := range def.Dependencies {
		if statuses[dep] == dbpkg.StepStatusCompleted {
			completed++
			continue
		}
		missing = append(missing, dep)
	}

	satisfied := false
	switch def.TriggerRule {
	case TriggerOneSuccess:
		satisfied = completed > 0 || len(def.Dependencies) == 0
	default:
		satisfied = len(missing) == 0
	}

	if !satisfied {
		return &DependencyError{
			Step:                stepName,
			Rule:                def.TriggerRule,
			MissingDependencies: missing,
		}
	}
	return nil
}

// CanRun reports whether stepName's trigger rule is satisfied.
// Only an unknown step name is an error.
func CanRun(stepName string, statuses map[string]string) (bool, error) {
	err := ValidateDependencies(stepName, statuses)
	if err == nil {
		return true, nil
	}
	if _, ok := err.(*DependencyError); ok {
		return false, nil
	}
	return false, err
}
