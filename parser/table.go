package parser

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"billing-scraper/models"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoRowContainer is returned when the page has no rendered grid body
var ErrNoRowContainer = errors.New("grid row container not found")

// ParseHTML parses a rendered page into a document
func ParseHTML(htmlContent string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ExtractTable reads every visible row of the grid using the default selectors
func ExtractTable(doc *goquery.Document) ([]models.Record, error) {
	page, err := defaultExtractor.ExtractPage(doc.Selection)
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

// ExtractPage reads every row inside the row container of root, in document
// order. The page number is left for the caller to fill in.
func (e *RowExtractor) ExtractPage(root *goquery.Selection) (models.Page, error) {
	container, err := e.rowContainer(root)
	if err != nil {
		return models.Page{}, err
	}

	page := models.Page{
		Records:   []models.Record{},
		Signature: signature(container),
	}
	seen := make(map[string]bool)

	container.Find(e.sel.Row).Each(func(i int, row *goquery.Selection) {
		record := e.Extract(row)
		if record == nil {
			return
		}
		page.Records = append(page.Records, record)

		for _, col := range e.columns(row) {
			if !seen[col] {
				seen[col] = true
				page.Columns = append(page.Columns, col)
			}
		}
	})

	return page, nil
}

// Signature identifies the rendered content of the row container of root.
// Two snapshots showing the same rows give the same signature.
func (e *RowExtractor) Signature(root *goquery.Selection) (string, error) {
	container, err := e.rowContainer(root)
	if err != nil {
		return "", err
	}
	return signature(container), nil
}

func (e *RowExtractor) rowContainer(root *goquery.Selection) (*goquery.Selection, error) {
	if root == nil {
		return nil, ErrNoRowContainer
	}
	container := root.Find(e.sel.RowContainer).First()
	if container.Length() == 0 {
		return nil, ErrNoRowContainer
	}
	return container, nil
}

func signature(container *goquery.Selection) string {
	h := fnv.New64a()
	// row text and ids only; AG Grid rewrites inline styles and focus classes on every render
	container.Find("[row-id], [row-index]").Each(func(i int, row *goquery.Selection) {
		h.Write([]byte(row.AttrOr("row-id", "")))
		h.Write([]byte{0})
		h.Write([]byte(row.AttrOr("row-index", "")))
		h.Write([]byte{0})
	})
	h.Write([]byte(container.Text()))
	return fmt.Sprintf("%016x", h.Sum64())
}
