package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
)

// Result describes a completed load
type Result struct {
	Table    string
	Database string
	Columns  []string
	Rows     int
}

// LoadCSV reads the CSV file at csvPath and replaces table in the SQLite
// database at dbPath with its contents. Columns come from the header row and
// are all TEXT; empty cells become NULL. Running it twice gives the same table.
func LoadCSV(ctx context.Context, csvPath, dbPath, table string) (*Result, error) {
	columns, rows, err := readCSV(csvPath)
	if err != nil {
		return nil, &LoadError{Path: csvPath, Table: table, Message: "failed to read CSV", Cause: err}
	}

	store, err := Open(ctx, dbPath)
	if err != nil {
		return nil, &LoadError{Path: csvPath, Table: table, Message: "failed to open database", Cause: err}
	}
	defer func() { _ = store.Close() }()

	if err := store.ReplaceTable(ctx, table, columns, rows); err != nil {
		return nil, &LoadError{Path: csvPath, Table: table, Message: "failed to write table", Cause: err}
	}

	return &Result{
		Table:    table,
		Database: dbPath,
		Columns:  columns,
		Rows:     len(rows),
	}, nil
}

func readCSV(path string) ([]string, [][]*string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, errors.New("no columns to parse from file")
	}
	if err != nil {
		return nil, nil, err
	}

	var rows [][]*string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		row := make([]*string, len(record))
		for i, cell := range record {
			if cell != "" {
				v := cell
				row[i] = &v
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}
