package grid

import (
	"context"
	"testing"
	"time"

	"billing-scraper/config"
	"billing-scraper/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestControls(surface Surface) *Controls {
	cfg := testConfig(0)
	return NewControls(surface, cfg.Selectors, cfg.Pagination, FixedSettler{})
}

func TestControls_State(t *testing.T) {
	cfg := config.GetDefaultConfig()
	tests := []struct {
		name  string
		first ControlState
		next  ControlState
	}{
		{"both enabled", ControlEnabled, ControlEnabled},
		{"first disabled", ControlDisabled, ControlEnabled},
		{"next disabled", ControlEnabled, ControlDisabled},
		{"both absent", ControlAbsent, ControlAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestControls(newScriptedSurface(pageHTML(0, 1, tt.first, tt.next)))

			first, err := c.State(context.Background(), cfg.Selectors.FirstButton)
			require.NoError(t, err)
			next, err := c.State(context.Background(), cfg.Selectors.NextButton)
			require.NoError(t, err)

			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.next, next)
		})
	}
}

func TestControls_GoToNext(t *testing.T) {
	tests := []struct {
		name        string
		next        ControlState
		wantClicked bool
	}{
		{"enabled", ControlEnabled, true},
		{"disabled", ControlDisabled, false},
		{"absent", ControlAbsent, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surface := newScriptedSurface(
				pageHTML(0, 1, ControlDisabled, tt.next),
				pageHTML(1, 1, ControlEnabled, ControlDisabled),
			)
			c := newTestControls(surface)

			clicked, err := c.GoToNext(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantClicked, clicked)
			assert.Equal(t, tt.wantClicked, len(surface.clicked) == 1)
		})
	}
}

func TestControls_GoToFirst(t *testing.T) {
	surface := newScriptedSurface(paginated(3, 1)...)
	surface.startAt = 1
	surface.start()
	c := newTestControls(surface)

	clicked, err := c.GoToFirst(context.Background())
	require.NoError(t, err)
	assert.True(t, clicked)
	assert.Equal(t, 0, surface.current)

	// already there: first is disabled, nothing happens
	clicked, err = c.GoToFirst(context.Background())
	require.NoError(t, err)
	assert.False(t, clicked)
	assert.Len(t, surface.clicked, 1)
}

func TestControls_UnavailableClickIsNotAnError(t *testing.T) {
	// the last page claims next is enabled but the surface has nowhere to go
	surface := newScriptedSurface(pageHTML(0, 1, ControlDisabled, ControlEnabled))
	c := newTestControls(surface)

	clicked, err := c.GoToNext(context.Background())
	require.NoError(t, err)
	assert.False(t, clicked)
}

func TestControls_WaitsSettleDelay(t *testing.T) {
	cfg := testConfig(0)
	cfg.Pagination.NextDelay = 30 * time.Millisecond
	surface := newScriptedSurface(paginated(2, 1)...)
	c := NewControls(surface, cfg.Selectors, cfg.Pagination, FixedSettler{})

	start := time.Now()
	clicked, err := c.GoToNext(context.Background())
	require.NoError(t, err)
	assert.True(t, clicked)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestChangeSettler_TimesOut(t *testing.T) {
	// same page before and after: the settler gives up without an error
	surface := newScriptedSurface(pageHTML(0, 1, ControlDisabled, ControlDisabled))
	s := &ChangeSettler{
		Surface:   surface,
		Extractor: parser.NewRowExtractor(config.DefaultSelectors()),
		Interval:  time.Millisecond,
		Timeout:   20 * time.Millisecond,
	}

	doc, err := surface.Snapshot(context.Background())
	require.NoError(t, err)
	before, err := s.Extractor.Signature(doc.Selection)
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, s.Settle(context.Background(), before, 0))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	assert.Greater(t, surface.snapshots, 2)
}

func TestChangeSettler_Cancelled(t *testing.T) {
	surface := newScriptedSurface(pageHTML(0, 1, ControlDisabled, ControlDisabled))
	s := &ChangeSettler{
		Surface:   surface,
		Extractor: parser.NewRowExtractor(config.DefaultSelectors()),
		Interval:  time.Millisecond,
		Timeout:   time.Minute,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := s.Settle(ctx, "unchanged", 0)
	// "unchanged" never matches a real signature, so the first poll returns
	assert.NoError(t, err)

	doc, _ := surface.Snapshot(context.Background())
	before, _ := s.Extractor.Signature(doc.Selection)
	err = s.Settle(ctx, before, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewSettler(t *testing.T) {
	cfg := testConfig(0)
	surface := newScriptedSurface(paginated(1, 1)...)
	extractor := parser.NewRowExtractor(cfg.Selectors)

	assert.IsType(t, FixedSettler{}, NewSettler(cfg.Pagination, surface, extractor))

	cfg.Pagination.Settle = config.SettleChange
	assert.IsType(t, &ChangeSettler{}, NewSettler(cfg.Pagination, surface, extractor))
}
