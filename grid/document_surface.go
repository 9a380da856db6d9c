package grid

import (
	"context"
	"fmt"
	"strings"

	"billing-scraper/config"

	"github.com/PuerkitoBio/goquery"
)

// DocumentSurface serves a fixed list of rendered pages as if they were one
// paginated grid. The pagination buttons in each page are replaced by a
// paging panel that reflects the page's position in the list, so "first"
// and "next" behave like they do on the live grid.
type DocumentSurface struct {
	pages   []*goquery.Document
	sel     config.Selectors
	current int
	clicks  int
}

// NewDocumentSurface parses pages in order. The surface starts on the first page.
func NewDocumentSurface(sel config.Selectors, pages ...string) (*DocumentSurface, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to serve")
	}

	s := &DocumentSurface{sel: sel}
	for i, markup := range pages {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %d: %w", i+1, err)
		}
		s.pages = append(s.pages, doc)
	}

	for i, doc := range s.pages {
		s.installPagingPanel(doc, i)
	}

	return s, nil
}

// Snapshot implements Surface
func (s *DocumentSurface) Snapshot(ctx context.Context) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.pages[s.current], nil
}

// Click implements Surface. Only the first and next buttons are understood.
func (s *DocumentSurface) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch selector {
	case s.sel.FirstButton:
		if s.current == 0 {
			return fmt.Errorf("%w: already on the first page", ErrControlUnavailable)
		}
		s.current = 0
	case s.sel.NextButton:
		if s.current >= len(s.pages)-1 {
			return fmt.Errorf("%w: already on the last page", ErrControlUnavailable)
		}
		s.current++
	default:
		return fmt.Errorf("%w: %s", ErrControlUnavailable, selector)
	}

	s.clicks++
	return nil
}

// Current returns the zero-based index of the page being shown
func (s *DocumentSurface) Current() int {
	return s.current
}

// Clicks returns how many clicks changed the page
func (s *DocumentSurface) Clicks() int {
	return s.clicks
}

// Len returns the number of pages served
func (s *DocumentSurface) Len() int {
	return len(s.pages)
}

func (s *DocumentSurface) installPagingPanel(doc *goquery.Document, index int) {
	doc.Find(s.sel.FirstButton).Remove()
	doc.Find(s.sel.NextButton).Remove()

	first := pagingButton(s.sel.FirstButton, "First Page", s.sel.DisabledClass, index == 0)
	next := pagingButton(s.sel.NextButton, "Next Page", s.sel.DisabledClass, index == len(s.pages)-1)
	panel := `<div class="ag-paging-panel">` + first + next + `</div>`

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	body.AppendHtml(panel)
}

// pagingButton renders a button matched by selector. Only [attr="value"] and
// .class selectors can be rendered; anything else gets no button, which
// reads as an absent control.
func pagingButton(selector, label, disabledClass string, disabled bool) string {
	class := "ag-button ag-paging-button"
	if disabled && disabledClass != "" {
		class += " " + disabledClass
	}

	switch {
	case strings.HasPrefix(selector, "[") && strings.HasSuffix(selector, "]"):
		attr, value, ok := strings.Cut(strings.Trim(selector, "[]"), "=")
		if !ok {
			return fmt.Sprintf(`<div %s class="%s" aria-label="%s"></div>`, attr, class, label)
		}
		value = strings.Trim(value, `"'`)
		return fmt.Sprintf(`<div %s="%s" class="%s" aria-label="%s"></div>`, attr, value, class, label)
	case strings.HasPrefix(selector, ".") && !strings.ContainsAny(selector[1:], " .[#:>"):
		return fmt.Sprintf(`<div class="%s %s" aria-label="%s"></div>`, class, selector[1:], label)
	default:
		return ""
	}
}
