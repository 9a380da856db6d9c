package scraper

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"billing-scraper/config"
	"billing-scraper/parser"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// clickTimeout bounds the lookup of a pagination button before clicking it
const clickTimeout = 5 * time.Second

// RodSurface is a live grid in a browser page driven by rod
type RodSurface struct {
	browser  *rod.Browser
	page     *rod.Page
	attached bool
	cfg      config.BrowserConfig
}

// NewRodSurface starts a browser, or attaches to a running one when
// cfg.ControlURL is set
func NewRodSurface(cfg config.BrowserConfig) (*RodSurface, error) {
	controlURL := cfg.ControlURL
	attached := controlURL != ""

	if attached {
		resolved, err := launcher.ResolveURL(controlURL)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve browser control URL %s: %w", controlURL, err)
		}
		controlURL = resolved
	} else {
		launched, err := newLauncher(cfg).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w\n\nNote: On Linux, you may need to install Chromium dependencies:\n  apt-get update && apt-get install -y chromium chromium-sandbox || yum install -y chromium", err)
		}
		controlURL = launched
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &RodSurface{
		browser:  browser,
		attached: attached,
		cfg:      cfg,
	}, nil
}

func newLauncher(cfg config.BrowserConfig) *launcher.Launcher {
	// A persistent profile keeps the dashboard login between runs
	userDataDir := cfg.UserDataDir
	if userDataDir == "" {
		userDataDir = os.Getenv("BOT_DATA_DIR")
	}
	if userDataDir == "" {
		userDataDir = "/tmp/billing-scraper-data"
	}
	if err := os.MkdirAll(userDataDir, 0755); err != nil {
		log.Printf("Warning: Failed to create browser data directory %s: %v\n", userDataDir, err)
		userDataDir = ""
	}

	l := launcher.New().
		Headless(cfg.Headless).
		Set("disable-blink-features", "AutomationControlled").
		NoSandbox(true).
		Leakless(false). // leakless trips some antivirus tools
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("disable-background-timer-throttling").
		Set("disable-renderer-backgrounding").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-popup-blocking").
		Set("disable-sync").
		Set("disable-translate").
		Set("mute-audio").
		Set("use-mock-keychain").
		Set("disable-features", "TranslateUI")
	if userDataDir != "" {
		l = l.UserDataDir(userDataDir)
	}

	if bin := findBrowser(cfg.Bin); bin != "" {
		l = l.Bin(bin)
	}
	return l
}

// findBrowser returns the configured browser binary, or the first system
// Chrome/Chromium found. Empty means let rod download one.
func findBrowser(configured string) string {
	candidates := []string{configured, os.Getenv("CHROME_BIN")}
	candidates = append(candidates,
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/snap/bin/chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	)

	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	if path, ok := launcher.LookPath(); ok {
		return path
	}
	return ""
}

// Open navigates to url and waits until the grid's row container is rendered
func (rs *RodSurface) Open(ctx context.Context, url, rowContainer string) error {
	page, err := rs.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	rs.page = page

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}

	timeout := rs.cfg.LoadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if _, err := page.Timeout(timeout).Element(rowContainer); err != nil {
		return fmt.Errorf("grid did not render within %s (is the session logged in?): %w", timeout, err)
	}

	if err := page.Timeout(10*time.Second).WaitStable(500*time.Millisecond); err != nil {
		log.Printf("Warning: page did not stabilize within timeout, continuing anyway: %v\n", err)
	}
	return nil
}

// Snapshot implements grid.Surface
func (rs *RodSurface) Snapshot(ctx context.Context) (*goquery.Document, error) {
	if rs.page == nil {
		return nil, fmt.Errorf("no page open")
	}

	html, err := rs.page.Context(ctx).HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML: %w", err)
	}
	return parser.ParseHTML(html)
}

// Click implements grid.Surface
func (rs *RodSurface) Click(ctx context.Context, selector string) error {
	if rs.page == nil {
		return fmt.Errorf("no page open")
	}

	el, err := rs.page.Context(ctx).Timeout(clickTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("failed to find %s: %w", selector, err)
	}
	el = el.CancelTimeout()

	if err := el.ScrollIntoView(); err != nil {
		log.Printf("Warning: failed to scroll %s into view: %v\n", selector, err)
	}

	mouse := func() error {
		// rod waits for a covered element to become interactable until its context ends
		bounded := el.Timeout(clickTimeout)
		defer bounded.CancelTimeout()
		return bounded.Click(proto.InputMouseButtonLeft, 1)
	}
	dom := func() error {
		_, err := el.Eval(`() => this.click()`)
		return err
	}
	return clickWithFallback(selector, mouse, dom)
}

// clickWithFallback tries a mouse click and falls back to a DOM click.
// AG Grid buttons are plain divs, so a DOM click works even when an overlay
// covers the pointer target.
func clickWithFallback(selector string, mouse, dom func() error) error {
	err := mouse()
	if err == nil {
		return nil
	}
	log.Printf("Warning: mouse click on %s failed, using DOM click: %v\n", selector, err)
	if err := dom(); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

// Close closes the page, and the browser unless it was attached to
func (rs *RodSurface) Close() error {
	if rs.page != nil {
		if err := rs.page.Close(); err != nil {
			log.Printf("Warning: failed to close page: %v\n", err)
		}
	}
	if rs.browser == nil || rs.attached {
		return nil
	}
	return rs.browser.Close()
}
