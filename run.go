package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"billing-scraper/config"
	"billing-scraper/export"
	"billing-scraper/filter"
	"billing-scraper/models"
	"billing-scraper/output"
	"billing-scraper/sheets"

	"github.com/spf13/cobra"
)

// runFlags are the pagination and output flags shared by scrape and snapshot.
// They override the config file only when given.
type runFlags struct {
	maxPages      int
	nextDelay     time.Duration
	firstDelay    time.Duration
	settle        string
	settleTimeout time.Duration
	format        string
	where         []string
	xlsx          string
	spreadsheet   string
	credentials   string
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVar(&f.maxPages, "max-pages", 0, "Maximum number of pages to read (0 = no limit)")
	flags.DurationVar(&f.nextDelay, "delay", time.Second, "Wait after clicking next page")
	flags.DurationVar(&f.firstDelay, "first-delay", 500*time.Millisecond, "Wait after going to the first page")
	flags.StringVar(&f.settle, "settle", config.SettleFixed, "How to wait for the grid after a click: fixed or change")
	flags.DurationVar(&f.settleTimeout, "settle-timeout", 10*time.Second, "Longest wait for the grid to change (settle=change)")
	flags.StringVar(&f.format, "format", output.FormatJSON, "Output format: json or table")
	flags.StringArrayVar(&f.where, "where", nil, "Keep only rows where column=value (repeatable)")
	flags.StringVar(&f.xlsx, "xlsx", "", "Also write the rows to this .xlsx file")
	flags.StringVar(&f.spreadsheet, "spreadsheet", "", "Also write the rows to a new sheet in this Google Sheets URL")
	flags.StringVar(&f.credentials, "credentials", "", "Google service account credentials JSON (or GOOGLE_SHEETS_CREDENTIALS)")
}

func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("max-pages") {
		cfg.Pagination.MaxPages = f.maxPages
	}
	if flags.Changed("delay") {
		cfg.Pagination.NextDelay = f.nextDelay
	}
	if flags.Changed("first-delay") {
		cfg.Pagination.FirstDelay = f.firstDelay
	}
	if flags.Changed("settle") {
		cfg.Pagination.Settle = f.settle
	}
	if flags.Changed("settle-timeout") {
		cfg.Pagination.SettleTimeout = f.settleTimeout
	}
	if flags.Changed("format") {
		cfg.Output.Format = f.format
	}
	if flags.Changed("xlsx") {
		cfg.Output.XLSXPath = f.xlsx
	}
	if flags.Changed("spreadsheet") {
		cfg.Output.SpreadsheetURL = f.spreadsheet
	}
	if flags.Changed("credentials") {
		cfg.Output.Credentials = f.credentials
	}
	if len(f.where) > 0 {
		where, err := filter.ParseWhere(f.where)
		if err != nil {
			return err
		}
		if cfg.Filters == nil {
			cfg.Filters = map[string]string{}
		}
		for col, value := range where {
			cfg.Filters[col] = value
		}
	}
	return nil
}

// loadConfig reads the config file, applies flags and validates the result
func loadConfig(cmd *cobra.Command, f *runFlags) (*config.Config, error) {
	cfg, err := config.LoadConfigOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if f != nil {
		if err := f.apply(cmd, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// columnOrder accumulates column ids in the order pages render them
type columnOrder struct {
	seen    map[string]bool
	columns []string
}

func (c *columnOrder) add(page models.Page) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	for _, col := range page.Columns {
		if !c.seen[col] {
			c.seen[col] = true
			c.columns = append(c.columns, col)
		}
	}
}

// deliver filters records, prints them and runs the configured exports.
// Export failures are logged and do not fail the run.
func deliver(ctx context.Context, cmd *cobra.Command, cfg *config.Config, records []models.Record, columns []string, source string) error {
	total := len(records)
	records = filter.NewFilter(cfg.Filters).ApplyFilters(records)
	if len(cfg.Filters) > 0 {
		log.Printf("Found %d records before filtering, %d after\n", total, len(records))
	}

	if err := output.Print(cmd.OutOrStdout(), cfg.Output.Format, records, columns); err != nil {
		return err
	}

	if cfg.Output.XLSXPath != "" {
		if err := export.WriteXLSX(cfg.Output.XLSXPath, records, columns); err != nil {
			log.Printf("Warning: Failed to write %s: %v\n", cfg.Output.XLSXPath, err)
		}
	}

	if cfg.Output.SpreadsheetURL != "" {
		writeSpreadsheet(ctx, cfg, records, columns, source)
	}
	return nil
}

func writeSpreadsheet(ctx context.Context, cfg *config.Config, records []models.Record, columns []string, source string) {
	spreadsheetID := sheets.ExtractSpreadsheetID(cfg.Output.SpreadsheetURL)
	if spreadsheetID == "" {
		log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", cfg.Output.SpreadsheetURL)
		return
	}

	writer, err := sheets.NewWriter(ctx, spreadsheetID, cfg.Output.Credentials)
	if err != nil {
		log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		return
	}

	sheetName := fmt.Sprintf("billing_%s", time.Now().Format("20060102_150405"))
	if _, _, err := writer.CreateSheetAndWriteRecords(ctx, sheetName, records, columns, source); err != nil {
		log.Printf("Warning: Failed to write to Google Sheets: %v\n", err)
	}
}
