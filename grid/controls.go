package grid

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"billing-scraper/config"
	"billing-scraper/parser"
)

// Controls drives the grid's pagination buttons
type Controls struct {
	surface    Surface
	extractor  *parser.RowExtractor
	settler    Settler
	sel        config.Selectors
	firstDelay time.Duration
	nextDelay  time.Duration
}

// NewControls creates Controls for surface
func NewControls(surface Surface, sel config.Selectors, pagination config.PaginationConfig, settler Settler) *Controls {
	return &Controls{
		surface:    surface,
		extractor:  parser.NewRowExtractor(sel),
		settler:    settler,
		sel:        sel,
		firstDelay: pagination.FirstDelay,
		nextDelay:  pagination.NextDelay,
	}
}

// State reports whether the control matching selector is absent, disabled or enabled
func (c *Controls) State(ctx context.Context, selector string) (ControlState, error) {
	doc, err := c.surface.Snapshot(ctx)
	if err != nil {
		return ControlAbsent, fmt.Errorf("failed to read pagination controls: %w", err)
	}
	return controlState(doc, selector, c.sel.DisabledClass), nil
}

// GoToFirst clicks the "first page" button if it is there and enabled, then
// waits for the grid to settle. It reports whether a click happened.
func (c *Controls) GoToFirst(ctx context.Context) (bool, error) {
	return c.activate(ctx, c.sel.FirstButton, c.firstDelay)
}

// GoToNext clicks the "next page" button if it is there and enabled, then
// waits for the grid to settle. It reports whether a click happened.
func (c *Controls) GoToNext(ctx context.Context) (bool, error) {
	return c.activate(ctx, c.sel.NextButton, c.nextDelay)
}

func (c *Controls) activate(ctx context.Context, selector string, delay time.Duration) (bool, error) {
	doc, err := c.surface.Snapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read pagination controls: %w", err)
	}

	state := controlState(doc, selector, c.sel.DisabledClass)
	if state != ControlEnabled {
		return false, nil
	}

	// an absent container just means nothing to compare against
	before, err := c.extractor.Signature(doc.Selection)
	if err != nil && !errors.Is(err, parser.ErrNoRowContainer) {
		return false, err
	}

	if err := c.surface.Click(ctx, selector); err != nil {
		if errors.Is(err, ErrControlUnavailable) {
			log.Printf("Warning: %s could not be clicked: %v\n", selector, err)
			return false, nil
		}
		return false, fmt.Errorf("failed to click %s: %w", selector, err)
	}

	if err := c.settler.Settle(ctx, before, delay); err != nil {
		return true, fmt.Errorf("failed to wait for grid after clicking %s: %w", selector, err)
	}
	return true, nil
}
