// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/catalog-etl/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 10
)

// StepLine is one row of a run summary
type StepLine struct {
	Step     string
	Status   string
	Duration time.Duration
	Error    error
}

// Summary is the data PrintSummary renders; the pipeline report converts to it.
type Summary struct {
	RunID    string
	Source   string
	Branch   string
	Records  int
	RowsRead int
	Table    string
	Loaded   int
	States   []string
	Steps    []StepLine
}

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRecords outputs the extracted product records.
func (p *Printer) PrintRecords(records types.RecordSet) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Products: %d\n", len(records)))

	for i, r := range records {
		if i >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(records)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("  %d. %s | %s | %s\n", i+1,
			orDash(r.ProductName), orDash(r.Price), orDash(r.URL)))
	}

	p.printBox("EXTRACTED PRODUCTS", strings.TrimRight(sb.String(), "\n"))
}

// PrintRows outputs rows read back from a stored file.
func (p *Printer) PrintRows(source string, rows []types.Row) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source: %s\n", source))
	sb.WriteString(fmt.Sprintf("Rows:   %d\n", len(rows)))

	for i, row := range rows {
		if i >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(rows)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, formatRow(row)))
	}

	p.printBox("RECORDS READ", strings.TrimRight(sb.String(), "\n"))
}

// PrintSummary outputs the outcome of a run.
func (p *Printer) PrintSummary(s *Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", s.RunID))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", s.Source))
	sb.WriteString(fmt.Sprintf("Products: %d\n", s.Records))
	sb.WriteString(fmt.Sprintf("Branch:   %s (%d rows read)\n", s.Branch, s.RowsRead))
	if s.Table != "" {
		sb.WriteString(fmt.Sprintf("Table:    %s (%d rows)\n", s.Table, s.Loaded))
	}
	sb.WriteString(fmt.Sprintf("States:   %s\n", strings.Join(s.States, " → ")))
	sb.WriteString("\nSteps:\n")
	for _, step := range s.Steps {
		line := fmt.Sprintf("  • %-17s %-9s %s", step.Step, step.Status, step.Duration.Round(time.Millisecond))
		if step.Error != nil {
			line += fmt.Sprintf(" (%v)", step.Error)
		}
		sb.WriteString(line + "\n")
	}

	p.printBox("PIPELINE RUN", strings.TrimRight(sb.String(), "\n"))
}

// formatRow renders a row with keys in column order, then any extra keys sorted.
func formatRow(row types.Row) string {
	var parts []string
	seen := make(map[string]bool, len(row))
	for _, key := range types.Fields {
		if v, ok := row[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", key, displayValue(v)))
			seen[key] = true
		}
	}

	var extra []string
	for key := range row {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		parts = append(parts, fmt.Sprintf("%s=%v", key, displayValue(row[key])))
	}

	return strings.Join(parts, " ")
}

func displayValue(v any) any {
	if v == nil {
		return "null"
	}
	return v
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
