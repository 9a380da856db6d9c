package export

import (
	"fmt"
	"log"

	"billing-scraper/models"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet records are written to
const SheetName = "Billing"

// WriteXLSX writes records to a new workbook at path: a header row of column
// ids, then one row per record. Missing cells are left blank.
func WriteXLSX(path string, records []models.Record, columns []string) error {
	columns = models.Columns(records, columns...)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close workbook: %v\n", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if len(columns) > 0 {
		header := make([]interface{}, len(columns))
		for i, col := range columns {
			header[i] = col
		}
		if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, record := range records {
		row := make([]interface{}, len(columns))
		for j, col := range columns {
			row[j] = record[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(columns), len(records)+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(SheetName, "A1:"+last, nil); err != nil {
			log.Printf("Warning: failed to add filter to sheet: %v\n", err)
		}
		if err := f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			log.Printf("Warning: failed to freeze header row: %v\n", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	log.Printf("Successfully wrote %d records to %s\n", len(records), path)
	return nil
}
