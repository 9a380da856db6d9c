package fetcher

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher downloads saved grid pages, one URL per page.
// http(s) URLs, file:// URLs and plain file paths are accepted.
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher creates a new CollyFetcher. delay spaces out requests to
// the same host; 0 disables it.
func NewCollyFetcher(delay time.Duration) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		colly.AllowURLRevisit(),
	)

	t := &http.Transport{}
	t.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	c.WithTransport(t)

	if delay > 0 {
		c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Parallelism: 1,
			Delay:       delay,
		})
	}

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Error fetching %s: %v\n", r.Request.URL, err)
	})

	return &CollyFetcher{
		collector: c,
	}
}

// Fetch returns the HTML of each target, in order
func (cf *CollyFetcher) Fetch(targets []string) ([]string, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no pages to fetch")
	}

	htmlPages := make([]string, 0, len(targets))
	var current string

	// clones share the transport and limits but not callbacks
	c := cf.collector.Clone()
	c.OnResponse(func(r *colly.Response) {
		current = string(r.Body)
	})

	for i, target := range targets {
		u, err := ToURL(target)
		if err != nil {
			return nil, err
		}

		current = ""
		if err := c.Visit(u); err != nil {
			return nil, fmt.Errorf("failed to fetch page %d (%s): %w", i+1, target, err)
		}
		if current == "" {
			return nil, fmt.Errorf("page %d (%s) is empty", i+1, target)
		}

		if len(htmlPages) > 0 && current == htmlPages[len(htmlPages)-1] {
			log.Printf("Warning: page %d has the same content as page %d\n", i+1, i)
		}
		htmlPages = append(htmlPages, current)
		log.Printf("Fetched page %d/%d: %s (%d bytes)\n", i+1, len(targets), target, len(current))
	}

	return htmlPages, nil
}

// ToURL turns a plain file path into a file:// URL and leaves URLs alone
func ToURL(target string) (string, error) {
	if strings.Contains(target, "://") {
		return target, nil
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %s: %w", target, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
