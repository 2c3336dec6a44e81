package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := New(2*time.Second, time.Hour, nil)
	t.Cleanup(c.Close)
	return c
}

func TestFetchText(t *testing.T) {
	ua := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua <- r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<html><head><style>p{}</style><script>var x;</script></head>
<body><h1>Title</h1><p>First   paragraph.</p><noscript>enable js</noscript><p>Second.</p></body></html>`))
	}))
	defer srv.Close()

	text := newTestClient(t).FetchText(context.Background(), srv.URL)
	assert.Equal(t, "Title First paragraph. Second.", text)
	assert.Equal(t, "Mozilla/5.0", <-ua)
}

func TestFetchTextCapsLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>" + strings.Repeat("ñ", MaxTextRunes+500) + "</p>"))
	}))
	defer srv.Close()

	text := newTestClient(t).FetchText(context.Background(), srv.URL)
	assert.Equal(t, MaxTextRunes, utf8.RuneCountInString(text))
}

func TestFetchTextFailuresAreEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t)
	assert.Empty(t, c.FetchText(context.Background(), srv.URL))
	assert.Empty(t, c.FetchText(context.Background(), "http://127.0.0.1:1/unreachable"))
	assert.Empty(t, c.FetchText(context.Background(), "::not a url"))
	assert.Equal(t, 3, c.Failures())
}

func TestFetchTextEmptyPageIsNotAFailure(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<html><body><script>render()</script></body></html>"))
	}))
	defer srv.Close()

	c := newTestClient(t)
	assert.Empty(t, c.FetchText(context.Background(), srv.URL))
	assert.Equal(t, 0, c.Failures())

	// Empty results are not cached.
	assert.Empty(t, c.FetchText(context.Background(), srv.URL))
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchTextLimitsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>start</p>"))
		_, _ = w.Write([]byte(strings.Repeat(" ", MaxBodyBytes)))
		_, _ = w.Write([]byte("<p>tail</p>"))
	}))
	defer srv.Close()

	text := newTestClient(t).FetchText(context.Background(), srv.URL)
	assert.Contains(t, text, "start")
	assert.NotContains(t, text, "tail")
}

func TestFetchTextIsCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<p>cached body</p>"))
	}))
	defer srv.Close()

	c := newTestClient(t)
	for i := 0; i < 3; i++ {
		assert.Equal(t, "cached body", c.FetchText(context.Background(), srv.URL))
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestCacheSurvivesClients(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("<p>kept body</p>"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "article_cache.json")

	first := newTestClient(t)
	require.NoError(t, first.LoadCache(path))
	assert.Equal(t, "kept body", first.FetchText(context.Background(), srv.URL))
	require.NoError(t, first.SaveCache(path))

	second := newTestClient(t)
	require.NoError(t, second.LoadCache(path))
	assert.Equal(t, "kept body", second.FetchText(context.Background(), srv.URL))
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("<p>page " + r.URL.Path + "</p>"))
	}))
	defer srv.Close()

	urls := []string{srv.URL + "/a", srv.URL + "/b", srv.URL + "/missing", srv.URL + "/c"}
	c := newTestClient(t)
	got := c.FetchAll(context.Background(), urls, 2)

	require.Len(t, got, 3)
	assert.Equal(t, 1, c.Failures())
	assert.Equal(t, "page /a", got[srv.URL+"/a"])
	assert.Equal(t, "page /c", got[srv.URL+"/c"])
	assert.NotContains(t, got, srv.URL+"/missing")
}
