package parser

import (
	"strings"

	"billing-scraper/config"
	"billing-scraper/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RowExtractor turns rendered grid rows into records
type RowExtractor struct {
	sel config.Selectors
}

// NewRowExtractor creates a RowExtractor for the given selectors
func NewRowExtractor(sel config.Selectors) *RowExtractor {
	return &RowExtractor{sel: sel}
}

var defaultExtractor = NewRowExtractor(config.DefaultSelectors())

// ExtractRow reads one AG Grid row using the default selectors.
// See RowExtractor.Extract.
func ExtractRow(row any) models.Record {
	return defaultExtractor.Extract(row)
}

// Extract reads one row into a record. row may be a *goquery.Selection, an
// *html.Node or the row's markup as a string. Anything else, or input with no
// element in it, gives nil.
//
// Cells without a column id are skipped. A cell whose value element renders
// no text falls back to the text of its first nested element; a cell with no
// value element at all maps to "".
func (e *RowExtractor) Extract(row any) models.Record {
	s := e.selection(row)
	if s == nil || s.Length() == 0 {
		return nil
	}
	s = s.First()

	record := models.Record{}
	s.Find(e.sel.Cell).Each(func(i int, cell *goquery.Selection) {
		col, ok := cell.Attr(e.sel.ColumnAttr)
		if !ok || col == "" {
			return
		}
		record[col] = e.cellValue(cell)
	})

	return record
}

// cellValue extracts the display text of one cell
func (e *RowExtractor) cellValue(cell *goquery.Selection) string {
	if e.sel.Value == "" {
		return strings.TrimSpace(cell.Text())
	}

	valueElement := cell.Find(e.sel.Value).First()
	if valueElement.Length() == 0 {
		return ""
	}

	value := strings.TrimSpace(valueElement.Text())
	if value == "" && e.sel.NestedValue != "" {
		// composite cells (action labels etc.) wrap their text one level down
		nested := valueElement.Find(e.sel.NestedValue).First()
		if nested.Length() > 0 {
			value = strings.TrimSpace(nested.Text())
		}
	}
	return value
}

// columns returns the column ids of a row's cells in document order
func (e *RowExtractor) columns(row *goquery.Selection) []string {
	var cols []string
	row.Find(e.sel.Cell).Each(func(i int, cell *goquery.Selection) {
		if col, ok := cell.Attr(e.sel.ColumnAttr); ok && col != "" {
			cols = append(cols, col)
		}
	})
	return cols
}

func (e *RowExtractor) selection(row any) *goquery.Selection {
	switch v := row.(type) {
	case *goquery.Selection:
		return v
	case *html.Node:
		if v == nil || v.Type != html.ElementNode {
			return nil
		}
		return goquery.NewDocumentFromNode(v).Selection
	case string:
		node := parseFragment(v)
		if node == nil {
			return nil
		}
		return goquery.NewDocumentFromNode(node).Selection
	default:
		return nil
	}
}

// parseFragment parses markup as the children of a <div> and returns the
// first element it contains
func parseFragment(markup string) *html.Node {
	if strings.TrimSpace(markup) == "" {
		return nil
	}

	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil
	}

	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n
		}
	}
	return nil
}
