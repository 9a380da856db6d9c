package grid

import (
	"context"
	"fmt"
	"strings"
	"time"

	"billing-scraper/config"

	"github.com/PuerkitoBio/goquery"
)

// testConfig returns the default config with all waits removed
func testConfig(maxPages int) *config.Config {
	cfg := config.GetDefaultConfig()
	cfg.Pagination.MaxPages = maxPages
	cfg.Pagination.FirstDelay = 0
	cfg.Pagination.NextDelay = 0
	cfg.Pagination.PollInterval = time.Millisecond
	cfg.Pagination.SettleTimeout = 50 * time.Millisecond
	return cfg
}

// pageHTML renders one grid page with rows rows, numbered from page*rows.
// first and next are the pagination button states.
func pageHTML(page, rows int, first, next ControlState) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="ag-root-wrapper"><div class="ag-center-cols-container">`)
	for r := 0; r < rows; r++ {
		id := page*rows + r
		fmt.Fprintf(&b, `<div class="ag-row" row-index="%d" row-id="%d">`, id, id)
		fmt.Fprintf(&b, `<div class="ag-cell" col-id="page"><span class="ag-cell-value">%d</span></div>`, page)
		fmt.Fprintf(&b, `<div class="ag-cell" col-id="row"><span class="ag-cell-value">%d</span></div>`, r)
		fmt.Fprintf(&b, `<div class="ag-cell" col-id="action"><span class="ag-cell-value"><div class="MuiTypography-root">create</div></span></div>`)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div></div><div class="ag-paging-panel">`)
	b.WriteString(buttonHTML("btFirst", first))
	b.WriteString(buttonHTML("btNext", next))
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func buttonHTML(ref string, state ControlState) string {
	switch state {
	case ControlEnabled:
		return `<div ref="` + ref + `" class="ag-button ag-paging-button"></div>`
	case ControlDisabled:
		return `<div ref="` + ref + `" class="ag-button ag-paging-button ag-disabled"></div>`
	default:
		return ""
	}
}

// scriptedSurface is a Surface whose pages, and the buttons on them, are
// spelled out by the test
type scriptedSurface struct {
	pages     []string
	current   int
	snapshots int
	clicked   []string

	// startAt is the page shown before the first click
	startAt int
	// stale makes this many snapshots after a click still show the old page
	stale     int
	staleLeft int
	previous  int
	// clickErr is returned by every click when set
	clickErr error
}

func newScriptedSurface(pages ...string) *scriptedSurface {
	return &scriptedSurface{pages: pages}
}

func (s *scriptedSurface) start() *scriptedSurface {
	s.current = s.startAt
	s.previous = s.startAt
	return s
}

func (s *scriptedSurface) Snapshot(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.snapshots++

	index := s.current
	if s.staleLeft > 0 {
		s.staleLeft--
		index = s.previous
	}
	return goquery.NewDocumentFromReader(strings.NewReader(s.pages[index]))
}

func (s *scriptedSurface) Click(ctx context.Context, selector string) error {
	if s.clickErr != nil {
		return s.clickErr
	}
	s.clicked = append(s.clicked, selector)
	s.previous = s.current
	s.staleLeft = s.stale

	switch selector {
	case `[ref="btFirst"]`:
		s.current = 0
	case `[ref="btNext"]`:
		if s.current+1 >= len(s.pages) {
			return ErrControlUnavailable
		}
		s.current++
	default:
		return fmt.Errorf("unexpected click on %s", selector)
	}
	return nil
}

// paginated builds n pages of rows rows with buttons enabled as on a live grid
func paginated(n, rows int) []string {
	pages := make([]string, n)
	for p := 0; p < n; p++ {
		first, next := ControlEnabled, ControlEnabled
		if p == 0 {
			first = ControlDisabled
		}
		if p == n-1 {
			next = ControlDisabled
		}
		pages[p] = pageHTML(p, rows, first, next)
	}
	return pages
}
