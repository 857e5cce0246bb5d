// Package loader bulk-loads a CSV record file into a SQLite table with
// create-or-replace semantics.
package loader

import "fmt"

// LoadError represents a failure moving a CSV file into the database
type LoadError struct {
	Path    string
	Table   string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load error for %s into %q: %s: %v", e.Path, e.Table, e.Message, e.Cause)
	}
	return fmt.Sprintf("load error for %s into %q: %s", e.Path, e.Table, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
