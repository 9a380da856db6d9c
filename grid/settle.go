package grid

import (
	"context"
	"errors"
	"log"
	"time"

	"billing-scraper/config"
	"billing-scraper/parser"
)

// Settler waits for the grid to finish re-rendering after a click.
// before is the row container signature taken just before the click and
// delay the fixed wait configured for that control.
type Settler interface {
	Settle(ctx context.Context, before string, delay time.Duration) error
}

// FixedSettler waits for the configured delay and nothing else
type FixedSettler struct{}

// Settle implements Settler
func (FixedSettler) Settle(ctx context.Context, before string, delay time.Duration) error {
	return sleep(ctx, delay)
}

// ChangeSettler polls the surface until the row container shows different
// rows than before the click, or until Timeout passes. Timing out is not an
// error: the driver carries on with whatever is rendered.
type ChangeSettler struct {
	Surface   Surface
	Extractor *parser.RowExtractor
	Interval  time.Duration
	Timeout   time.Duration
}

// Settle implements Settler. delay is ignored.
func (s *ChangeSettler) Settle(ctx context.Context, before string, delay time.Duration) error {
	deadline := time.Now().Add(s.Timeout)

	for {
		if err := sleep(ctx, s.Interval); err != nil {
			return err
		}

		doc, err := s.Surface.Snapshot(ctx)
		if err != nil {
			return err
		}

		sig, err := s.Extractor.Signature(doc.Selection)
		switch {
		case errors.Is(err, parser.ErrNoRowContainer):
			// grid body is being rebuilt
		case err != nil:
			return err
		case sig != before:
			return nil
		}

		if !time.Now().Before(deadline) {
			log.Printf("Warning: grid did not change within %s, continuing anyway\n", s.Timeout)
			return nil
		}
	}
}

// NewSettler builds the settler selected by the pagination config
func NewSettler(cfg config.PaginationConfig, surface Surface, extractor *parser.RowExtractor) Settler {
	if cfg.Settle == config.SettleChange {
		return &ChangeSettler{
			Surface:   surface,
			Extractor: extractor,
			Interval:  cfg.PollInterval,
			Timeout:   cfg.SettleTimeout,
		}
	}
	return FixedSettler{}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
