package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/catalog-etl/internal/types"
)

// Write stores records at path in the given format, replacing any existing file.
func Write(records types.RecordSet, path string, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(records, path)
	case FormatJSON:
		return WriteJSON(records, path)
	default:
		return &WriteError{Path: path, Message: fmt.Sprintf("unsupported format %q", format)}
	}
}

// WriteCSV writes a header row followed by one row per record.
// Nil fields are written as empty cells.
func WriteCSV(records types.RecordSet, path string) error {
	return writeFile(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(types.Fields); err != nil {
			return err
		}
		for _, record := range records {
			if err := cw.Write(record.Values()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// WriteJSON writes records as an indented JSON array. An empty set is written as [].
func WriteJSON(records types.RecordSet, path string) error {
	if records == nil {
		records = types.RecordSet{}
	}
	return writeFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(records)
	})
}

// writeFile creates the parent directory, truncates path and hands the file to fill.
func writeFile(path string, fill func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &WriteError{Path: path, Message: "failed to create directory", Cause: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Message: "failed to create file", Cause: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = &WriteError{Path: path, Message: "failed to close file", Cause: closeErr}
		}
	}()

	if err := fill(f); err != nil {
		return &WriteError{Path: path, Message: "failed to encode records", Cause: err}
	}
	return nil
}
