package fetcher

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollyFetcher_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<html><body>%s</body></html>", r.URL.Path)
	}))
	defer server.Close()

	f := NewCollyFetcher(0)

	pages, err := f.Fetch([]string{server.URL + "/page1", server.URL + "/page2", server.URL + "/page1"})
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Contains(t, pages[0], "/page1")
	assert.Contains(t, pages[1], "/page2")
	assert.Equal(t, pages[0], pages[2])

	// fetching again reuses the collector without doubling callbacks
	pages, err = f.Fetch([]string{server.URL + "/page2"})
	require.NoError(t, err)
	assert.Len(t, pages, 1)

	_, err = f.Fetch([]string{server.URL + "/page1", server.URL + "/missing"})
	assert.Error(t, err)
}

func TestCollyFetcher_Files(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 1; i <= 2; i++ {
		path := filepath.Join(dir, fmt.Sprintf("page%d.html", i))
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("<html><body>page %d</body></html>", i)), 0644))
		paths = append(paths, path)
	}

	fileURL, err := ToURL(paths[1])
	require.NoError(t, err)

	pages, err := NewCollyFetcher(0).Fetch([]string{paths[0], fileURL})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "page 1")
	assert.Contains(t, pages[1], "page 2")
}

func TestCollyFetcher_NoTargets(t *testing.T) {
	_, err := NewCollyFetcher(0).Fetch(nil)
	assert.Error(t, err)
}

func TestToURL(t *testing.T) {
	u, err := ToURL("https://console.example.com/billing?page=2")
	require.NoError(t, err)
	assert.Equal(t, "https://console.example.com/billing?page=2", u)

	u, err = ToURL("testdata/page.html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file:///"), u)
	assert.True(t, strings.HasSuffix(u, "/testdata/page.html"), u)
}
