// Package scraper downloads article pages and extracts their readable text.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/deusflow/weeklydigest/internal/cache"
	"github.com/deusflow/weeklydigest/internal/news"
	"github.com/deusflow/weeklydigest/internal/textclean"
)

// MaxTextRunes caps the extracted text of one article.
const MaxTextRunes = 12000

// MaxBodyBytes caps how much of a response body is read and parsed.
const MaxBodyBytes = 5 << 20

const userAgent = "Mozilla/5.0"

// Client fetches article text. Non-empty results are remembered per URL for
// the cache TTL, and the cache can be saved and reloaded so later runs skip
// pages they already have.
type Client struct {
	http     *http.Client
	cache    *cache.Cache[string]
	failures atomic.Int64
	log      *slog.Logger
}

// New returns a Client with the given request timeout and cache TTL.
func New(timeout, cacheTTL time.Duration, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		http:  &http.Client{Timeout: timeout},
		cache: cache.New[string](cacheTTL, time.Hour),
		log:   log,
	}
}

// Close releases the result cache.
func (c *Client) Close() {
	c.cache.Close()
}

// LoadCache merges texts saved by an earlier run.
func (c *Client) LoadCache(path string) error {
	return c.cache.Load(path)
}

// SaveCache persists the cached texts for the next run.
func (c *Client) SaveCache(path string) error {
	return c.cache.Save(path)
}

// Failures returns how many requests failed. Pages that loaded but held no
// readable text are not failures.
func (c *Client) Failures() int {
	return int(c.failures.Load())
}

// FetchText returns the cleaned text of the page at url, or "" on any
// failure. It does not retry.
func (c *Client) FetchText(ctx context.Context, url string) string {
	if text, ok := c.cache.Get(url); ok {
		return text
	}

	text, err := c.fetch(ctx, url)
	if err != nil {
		c.failures.Add(1)
		c.log.Debug("article fetch failed", "url", url, "error", err)
		return ""
	}
	if text != "" {
		c.cache.Set(url, text)
	}
	return text
}

func (c *Client) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	return news.TruncateRunes(textclean.FromDocument(doc), MaxTextRunes), nil
}

// FetchAll fetches every url with at most concurrency requests in flight
// and returns the non-empty texts keyed by url.
func (c *Client) FetchAll(ctx context.Context, urls []string, concurrency int) map[string]string {
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = make(map[string]string, len(urls))
		sem    = make(chan struct{}, concurrency)
	)

	for _, url := range urls {
		select {
		case <-ctx.Done():
			wg.Wait()
			return result
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			defer func() { <-sem }()

			text := c.FetchText(ctx, url)
			if text == "" {
				return
			}
			mu.Lock()
			result[url] = text
			mu.Unlock()
		}(url)
	}

	wg.Wait()
	c.log.Info("article text fetched", "requested", len(urls), "ok", len(result))
	return result
}
