package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/catalog-etl/internal/schemas"
	"github.com/jonathan/catalog-etl/internal/types"
)

// PathFor returns {dir}/{baseName}.{ext} for the format.
func PathFor(dir, baseName string, format Format) string {
	return filepath.Join(dir, baseName+format.Ext())
}

// Read reads {dir}/{baseName} in the given format.
func Read(dir, baseName string, format Format) ([]types.Row, error) {
	path := PathFor(dir, baseName, format)
	if format == FormatCSV {
		return ReadCSV(path)
	}
	return ReadJSON(path)
}

// ReadCSV reads a delimited file with a header row, one Row per data row.
// Every value is a string. A file with only a header yields no rows.
func ReadCSV(path string) ([]types.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Message: "failed to open file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ReadError{Path: path, Message: "file has no header row"}
	}
	if err != nil {
		return nil, &ReadError{Path: path, Message: "failed to parse CSV header", Cause: err}
	}

	rows := make([]types.Row, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ReadError{Path: path, Message: "failed to parse CSV", Cause: err}
		}

		row := make(types.Row, len(header))
		for i, key := range header {
			row[key] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadJSON reads a JSON array of objects. The document must satisfy the
// product record schema; values are strings or nil.
func ReadJSON(path string) ([]types.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Message: "failed to read file", Cause: err}
	}

	if err := schemas.ValidateProducts(data); err != nil {
		return nil, &ReadError{Path: path, Message: "invalid record file", Cause: err}
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ReadError{Path: path, Message: "failed to parse JSON", Cause: err}
	}

	rows := make([]types.Row, 0, len(raw))
	for _, obj := range raw {
		rows = append(rows, types.Row(obj))
	}
	return rows, nil
}
