package grid

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"billing-scraper/config"
	"billing-scraper/models"
	"billing-scraper/parser"
)

// ErrInvalidMaxPages is returned for a negative page limit
var ErrInvalidMaxPages = errors.New("max pages must be 0 (no limit) or positive")

// Driver pages through the grid and collects every row
type Driver struct {
	surface      Surface
	controls     *Controls
	extractor    *parser.RowExtractor
	maxPages     int
	initialDelay time.Duration // waited once after going to the first page, clicked or not

	// OnPage, if set, is called after each page has been read
	OnPage func(page models.Page)
}

// NewDriver creates a Driver for surface using the selectors and pagination
// settings in cfg
func NewDriver(surface Surface, cfg *config.Config) (*Driver, error) {
	if cfg.Pagination.MaxPages < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxPages, cfg.Pagination.MaxPages)
	}

	extractor := parser.NewRowExtractor(cfg.Selectors)
	settler := NewSettler(cfg.Pagination, surface, extractor)

	return &Driver{
		surface:      surface,
		controls:     NewControls(surface, cfg.Selectors, cfg.Pagination, settler),
		extractor:    extractor,
		maxPages:     cfg.Pagination.MaxPages,
		initialDelay: cfg.Pagination.FirstDelay,
	}, nil
}

// Gather goes to the first page and reads pages until the next button is
// missing or disabled, or the page limit is reached. Any page that cannot be
// read aborts the run; no partial result is returned.
func (d *Driver) Gather(ctx context.Context) ([]models.Record, error) {
	if d.maxPages > 0 {
		log.Printf("Starting gather with maxPages: %d\n", d.maxPages)
	} else {
		log.Println("Starting gather with no page limit")
	}

	if _, err := d.controls.GoToFirst(ctx); err != nil {
		return nil, fmt.Errorf("failed to go to first page: %w", err)
	}
	if err := sleep(ctx, d.initialDelay); err != nil {
		return nil, err
	}

	var records []models.Record
	var previous string
	pageCount := 0

	for {
		page, err := d.readPage(ctx, pageCount)
		if err != nil {
			return nil, err
		}

		if pageCount > 0 && page.Signature == previous {
			log.Printf("Warning: page %d shows the same rows as the previous page, might be duplicate content\n", pageCount+1)
		}
		previous = page.Signature

		records = append(records, page.Records...)
		pageCount++
		log.Printf("Extracted page %d (%d rows, %d total)\n", pageCount, len(page.Records), len(records))

		if d.OnPage != nil {
			d.OnPage(page)
		}

		if d.maxPages > 0 && pageCount >= d.maxPages {
			log.Printf("Reached page limit of %d\n", d.maxPages)
			break
		}

		clicked, err := d.controls.GoToNext(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to go to page %d: %w", pageCount+1, err)
		}
		if !clicked {
			log.Printf("No more pages found after page %d\n", pageCount)
			break
		}
	}

	log.Printf("Gathering completed. Total pages: %d, records: %d\n", pageCount, len(records))
	return records, nil
}

func (d *Driver) readPage(ctx context.Context, number int) (models.Page, error) {
	doc, err := d.surface.Snapshot(ctx)
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to read page %d: %w", number+1, err)
	}

	page, err := d.extractor.ExtractPage(doc.Selection)
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to extract page %d: %w", number+1, err)
	}
	page.Number = number
	return page, nil
}
