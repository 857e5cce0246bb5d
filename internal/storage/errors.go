// Package storage writes record sets to CSV or JSON files and reads them back.
package storage

import "fmt"

// Format is the encoding of a stored record file.
type Format string

const (
	// FormatCSV is a comma-delimited file with a header row
	FormatCSV Format = "csv"
	// FormatJSON is a top-level array of objects
	FormatJSON Format = "json"
)

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// WriteError represents a failure writing a record file
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("write error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("write error for %s: %s", e.Path, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// ReadError represents a missing or malformed record file
type ReadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ReadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("read error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("read error for %s: %s", e.Path, e.Message)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}
