package grid

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"
)

// ErrControlUnavailable is returned by a Surface asked to click a control it cannot activate
var ErrControlUnavailable = errors.New("control not available")

// Surface is the rendered grid the driver reads and clicks.
// Implementations: scraper.RodSurface (live browser) and DocumentSurface (static pages).
type Surface interface {
	// Snapshot returns the document as currently rendered
	Snapshot(ctx context.Context) (*goquery.Document, error)
	// Click activates the first element matching selector
	Click(ctx context.Context, selector string) error
}

// ControlState describes a pagination button as rendered
type ControlState int

const (
	ControlAbsent ControlState = iota
	ControlDisabled
	ControlEnabled
)

func (s ControlState) String() string {
	switch s {
	case ControlDisabled:
		return "disabled"
	case ControlEnabled:
		return "enabled"
	default:
		return "absent"
	}
}

// controlState reads the state of the control matching selector from a snapshot
func controlState(doc *goquery.Document, selector, disabledClass string) ControlState {
	if doc == nil {
		return ControlAbsent
	}
	button := doc.Find(selector).First()
	if button.Length() == 0 {
		return ControlAbsent
	}
	if disabledClass != "" && button.HasClass(disabledClass) {
		return ControlDisabled
	}
	return ControlEnabled
}
