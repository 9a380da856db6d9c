package output

import (
	"encoding/json"
	"fmt"
	"io"

	"billing-scraper/models"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Formats accepted by Print
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// Print writes records to w. columns fixes the column order for table
// output; columns missing from it are appended.
func Print(w io.Writer, format string, records []models.Record, columns []string) error {
	switch format {
	case FormatJSON, "":
		return printJSON(w, records)
	case FormatTable:
		printTable(w, records, models.Columns(records, columns...))
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printJSON(w io.Writer, records []models.Record) error {
	if records == nil {
		records = []models.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}

func printTable(w io.Writer, records []models.Record, columns []string) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)

	header := table.Row{"#"}
	for _, col := range columns {
		header = append(header, col)
	}
	t.AppendHeader(header)

	for i, record := range records {
		row := table.Row{i + 1}
		for _, col := range columns {
			row = append(row, record[col])
		}
		t.AppendRow(row)
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("%d records", len(records))})
	t.Render()
}
