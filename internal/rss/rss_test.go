package rss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Example</title>
<item>
  <title>New model released</title>
  <link>https://www.example.com/model</link>
  <description>&lt;p&gt;A &lt;b&gt;bold&lt;/b&gt; claim.&lt;/p&gt;</description>
  <pubDate>Tue, 16 Jan 2024 08:00:00 GMT</pubDate>
</item>
<item>
  <title>No date here</title>
  <link>https://example.com/nodate</link>
</item>
</channel></rss>`

func TestLoadFeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`feeds:
  - https://a.example/rss
  - "  "
  - https://b.example/feed
  - https://a.example/rss
`), 0o644))

	urls, err := LoadFeeds(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/rss", "https://b.example/feed"}, urls)

	_, err = LoadFeeds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFetchAllSkipsBrokenFeeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(sampleRSS))
		case "/garbage":
			_, _ = w.Write([]byte("this is not a feed"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(2*time.Second, nil)
	res := f.FetchAll(context.Background(), []string{srv.URL + "/missing", srv.URL + "/ok", srv.URL + "/garbage"})

	assert.Equal(t, 1, res.OK)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "New model released", res.Items[0].Title)
}

func TestToEntries(t *testing.T) {
	now := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)
	pub := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	upd := time.Date(2024, 1, 15, 8, 0, 0, 0, time.FixedZone("CET", 3600))

	items := []*gofeed.Item{
		{Title: " Published ", Link: "https://www.example.com/a", PublishedParsed: &pub, UpdatedParsed: &upd, Description: "<p>desc</p>"},
		{Title: "Updated only", Link: "https://example.org/b", UpdatedParsed: &upd, Content: "<p>body</p>"},
		{Title: "Undated", Link: "https://example.net/c"},
		{Title: "", Link: "https://example.net/no-title"},
		{Title: "No link"},
		nil,
	}

	entries := ToEntries(items, now)
	require.Len(t, entries, 3)

	assert.Equal(t, "Published", entries[0].Title)
	assert.Equal(t, pub, entries[0].Published)
	assert.Equal(t, "example.com", entries[0].Source)
	assert.Equal(t, "<p>desc</p>", entries[0].Description)

	assert.True(t, upd.Equal(entries[1].Published))
	assert.Equal(t, time.UTC, entries[1].Published.Location())
	assert.Equal(t, "<p>body</p>", entries[1].Description, "content stands in for a missing description")

	assert.Equal(t, now, entries[2].Published)
}

func TestRSSToEntries(t *testing.T) {
	feed, err := gofeed.NewParser().ParseString(sampleRSS)
	require.NoError(t, err)

	now := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)
	entries := ToEntries(feed.Items, now)
	require.Len(t, entries, 2)
	assert.Equal(t, time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC), entries[0].Published)
	assert.Equal(t, "example.com", entries[0].Source)
	assert.Equal(t, now, entries[1].Published)
}
