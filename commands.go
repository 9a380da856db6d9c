package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"billing-scraper/config"
	"billing-scraper/fetcher"
	"billing-scraper/grid"
	"billing-scraper/models"
	"billing-scraper/parser"
	"billing-scraper/scraper"

	"github.com/spf13/cobra"
)

var (
	scrapeFlags   runFlags
	snapshotFlags runFlags

	scrapeURL        string
	scrapeHeadless   bool
	scrapeControlURL string
	scrapeBrowserBin string
)

func init() {
	scrapeFlags.register(scrapeCmd)
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "Billing page URL (overrides config url)")
	scrapeCmd.Flags().BoolVar(&scrapeHeadless, "headless", true, "Run the browser without a window")
	scrapeCmd.Flags().StringVar(&scrapeControlURL, "control-url", "", "Attach to a running browser (DevTools URL or port) instead of launching one")
	scrapeCmd.Flags().StringVar(&scrapeBrowserBin, "browser", "", "Path to a Chrome/Chromium binary")

	snapshotFlags.register(snapshotCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--url <billing page>]",
	Short: "Opens the billing page in a browser and reads every page of the grid.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, &scrapeFlags)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("url") {
			cfg.URL = scrapeURL
		}
		if flags.Changed("headless") {
			cfg.Browser.Headless = scrapeHeadless
		}
		if flags.Changed("control-url") {
			cfg.Browser.ControlURL = scrapeControlURL
		}
		if flags.Changed("browser") {
			cfg.Browser.Bin = scrapeBrowserBin
		}

		var columns columnOrder
		records, err := scraper.Scrape(cmd.Context(), cfg, columns.add)
		if err != nil {
			return fmt.Errorf("scraping failed: %w", err)
		}

		return deliver(cmd.Context(), cmd, cfg, records, columns.columns, cfg.URL)
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <page> [page...]",
	Short: "Reads saved grid pages (files or URLs, one per page) as if paging through the live grid.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, &snapshotFlags)
		if err != nil {
			return err
		}

		pages, err := fetcher.NewCollyFetcher(0).Fetch(args)
		if err != nil {
			return err
		}

		surface, err := grid.NewDocumentSurface(cfg.Selectors, pages...)
		if err != nil {
			return err
		}

		// nothing re-renders between saved pages
		cfg.Pagination.FirstDelay = 0
		cfg.Pagination.NextDelay = 0
		cfg.Pagination.Settle = config.SettleFixed

		driver, err := grid.NewDriver(surface, cfg)
		if err != nil {
			return err
		}
		var columns columnOrder
		driver.OnPage = columns.add

		records, err := driver.Gather(cmd.Context())
		if err != nil {
			return err
		}

		return deliver(cmd.Context(), cmd, cfg, records, columns.columns, strings.Join(args, ", "))
	},
}

var rowCmd = &cobra.Command{
	Use:   "row [markup]",
	Short: "Extracts one grid row from its HTML (argument or stdin) and prints it as JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}

		var markup string
		if len(args) == 1 {
			markup = args[0]
		} else {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read row markup: %w", err)
			}
			markup = string(data)
		}

		record := parser.NewRowExtractor(cfg.Selectors).Extract(markup)
		if record == nil {
			log.Println("Warning: input is not a grid row")
		}
		return printRecord(cmd.OutOrStdout(), record)
	},
}

func printRecord(w io.Writer, record models.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(record)
}
