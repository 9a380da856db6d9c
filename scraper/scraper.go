package scraper

import (
	"context"
	"fmt"

	"billing-scraper/config"
	"billing-scraper/grid"
	"billing-scraper/models"
)

// Scrape opens cfg.URL in a browser and gathers every page of the grid
func Scrape(ctx context.Context, cfg *config.Config, onPage func(models.Page)) ([]models.Record, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("no URL to scrape")
	}

	surface, err := NewRodSurface(cfg.Browser)
	if err != nil {
		return nil, err
	}
	defer surface.Close()

	if err := surface.Open(ctx, cfg.URL, cfg.Selectors.RowContainer); err != nil {
		return nil, err
	}

	driver, err := grid.NewDriver(surface, cfg)
	if err != nil {
		return nil, err
	}
	driver.OnPage = onPage

	return driver.Gather(ctx)
}
